package cmd

import (
	"fmt"

	"github.com/bnema/mouseswipe/internal/config"
	"github.com/bnema/mouseswipe/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:   "mouseswipe",
		Short: "mouseswipe - mouse button swipe gestures",
		Long: `mouseswipe grabs your mice and turns "hold a button and drag" into
keyboard shortcuts or scrolling. Everything else passes through unchanged
via a uinput virtual device, so it works on X11, Wayland and the console.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.SetConfigPath(configPath)
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: search /etc/mouseswipe, ~/.config/mouseswipe, .)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config and LOG_LEVEL)")
}

// loadConfig reads and validates the configuration, then applies the log
// level: --log-level, then logging.log_level, then LOG_LEVEL.
func loadConfig() (*config.Config, error) {
	if err := config.Init(); err != nil {
		return nil, err
	}
	cfg := config.Get()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", config.GetConfigPath(), err)
	}

	level := cfg.Logging.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if level != "" {
		if err := logger.SetLevel(level); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
