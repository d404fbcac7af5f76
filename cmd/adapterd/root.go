package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"adapterd/internal/config"
)

// options collects persistent flags shared by every subcommand.
type options struct {
	configPath  string
	logLevel    string
	model       string
	adaptersDir string
	maxAdapters int
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "adapterd",
		Short:         "Text generation over a base model with swappable LoRA adapters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", os.Getenv("ADAPTERD_CONFIG"), "Config file (.yaml|.yml|.json|.toml); defaults to ADAPTERD_CONFIG")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config log_level)")
	pf.StringVar(&opts.model, "model", "", "Base model path (overrides gguf_model_path)")
	pf.StringVar(&opts.adaptersDir, "adapters-dir", "", "Directory scanned for adapter checkpoints")
	pf.IntVar(&opts.maxAdapters, "max-adapters", 0, "Maximum adapters kept loaded (0=unbounded)")

	root.AddCommand(newServeCmd(opts), newGenerateCmd(opts), newAdaptersCmd(opts))

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	root.AddCommand(completionCmd)
	return root
}

// loadConfig merges, in increasing precedence: the config file, the
// environment, then explicitly set flags.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return cfg, err
		}
	}
	cfg = config.ApplyEnv(cfg, os.Getenv)
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.ModelPath = opts.model
	}
	if flags.Changed("adapters-dir") {
		cfg.AdaptersDir = opts.adaptersDir
	}
	if flags.Changed("max-adapters") {
		cfg.MaxAdapters = opts.maxAdapters
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, nil
}

// newLogger returns a leveled zerolog logger writing to stderr, either as
// JSON lines or in human-readable console form.
func newLogger(level string, console bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	var w io.Writer = os.Stderr
	if console {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
