package devblog

import "github.com/goliatone/go-devblog/internal/runtimeconfig"

var (
	ErrConfigInvalid          = runtimeconfig.ErrConfigInvalid
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	ServerConfig   = runtimeconfig.ServerConfig
	ContentConfig  = runtimeconfig.ContentConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	QueryConfig    = runtimeconfig.QueryConfig
	SiteConfig     = runtimeconfig.SiteConfig
	PostConfig     = runtimeconfig.PostConfig
	LoadedConfig   = runtimeconfig.Loaded
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig merges defaults, the TOML file at path (or devblog.toml when
// path is empty) and DEVBLOG_* environment overrides.
func LoadConfig(path string) (*LoadedConfig, error) {
	return runtimeconfig.Load(path)
}
