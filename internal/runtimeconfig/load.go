package runtimeconfig

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultFile is looked up in the working directory when Load is called
// without an explicit path.
const DefaultFile = "devblog.toml"

// Environment overrides, applied after the file.
const (
	EnvContentDir = "DEVBLOG_CONTENT_DIR"
	EnvAddr       = "DEVBLOG_ADDR"
	EnvLogLevel   = "DEVBLOG_LOG_LEVEL"
	EnvBaseURL    = "DEVBLOG_BASE_URL"
)

// Loaded is the outcome of Load.
type Loaded struct {
	Config Config
	// Path is the file that was decoded, empty when only defaults applied.
	Path string
	// UnknownKeys lists keys present in the file that no field consumed.
	UnknownKeys []string
}

// Load merges defaults < TOML file < environment. An explicit path must
// exist; with an empty path DefaultFile is used when present. The merged
// configuration is validated.
func Load(filePath string) (*Loaded, error) {
	cfg := DefaultConfig()
	loaded := &Loaded{}

	explicit := strings.TrimSpace(filePath) != ""
	if !explicit {
		filePath = DefaultFile
	}
	if _, err := os.Stat(filePath); err == nil {
		// Decoding into a populated slice would merge file posts into the
		// defaults element by element.
		defaultPosts := cfg.Posts
		cfg.Posts = nil
		meta, err := toml.DecodeFile(filePath, &cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", filePath, err)
		}
		if !meta.IsDefined("posts") {
			cfg.Posts = defaultPosts
		}
		loaded.Path = filePath
		for _, key := range meta.Undecoded() {
			loaded.UnknownKeys = append(loaded.UnknownKeys, key.String())
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config %s: %w", filePath, err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loaded.Config = cfg
	return loaded, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvContentDir)); v != "" {
		cfg.Content.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.Site.BaseURL = v
	}
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
