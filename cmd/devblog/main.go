// Command devblog serves and inspects a markdown developer blog.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	devblog "github.com/goliatone/go-devblog"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	contentDir string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "devblog",
		Short: "Markdown developer blog",
		Long: `devblog serves a developer blog/portfolio from markdown files.

Content lives under <content.dir>/articles and <content.dir>/projects, one
file per entry with a YAML, TOML or JSON frontmatter block.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to devblog.toml")
	root.PersistentFlags().StringVar(&flags.contentDir, "content-dir", "", "content directory (overrides config)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (overrides config)")

	root.AddCommand(serveCmd(flags))
	root.AddCommand(listCmd(flags))
	root.AddCommand(showCmd(flags))
	root.AddCommand(searchCmd(flags))
	root.AddCommand(tagsCmd(flags))
	root.AddCommand(checkCmd(flags))
	root.AddCommand(feedCmd(flags))
	root.AddCommand(configCmd(flags))

	return root
}

// loadConfig resolves the effective configuration with flag overrides
// applied last.
func (f *globalFlags) loadConfig(cmd *cobra.Command) (devblog.Config, error) {
	loaded, err := devblog.LoadConfig(f.configPath)
	if err != nil {
		return devblog.Config{}, err
	}
	for _, key := range loaded.UnknownKeys {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: unknown config key %q in %s\n", key, loaded.Path)
	}
	cfg := loaded.Config
	if dir := strings.TrimSpace(f.contentDir); dir != "" {
		cfg.Content.Dir = dir
	}
	if level := strings.TrimSpace(f.logLevel); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return devblog.Config{}, err
	}
	return cfg, nil
}

func (f *globalFlags) loadModule(cmd *cobra.Command) (*devblog.Module, error) {
	cfg, err := f.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return devblog.New(cfg, devblog.WithLogOutput(cmd.ErrOrStderr()))
}

// categoriesArg resolves an optional category argument. No argument means
// every category.
func categoriesArg(args []string) ([]devblog.Category, error) {
	if len(args) == 0 {
		return devblog.Categories(), nil
	}
	category, err := devblog.ParseCategory(args[0])
	if err != nil {
		return nil, err
	}
	return []devblog.Category{category}, nil
}
