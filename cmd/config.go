package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bnema/mouseswipe/internal/config"
	"github.com/bnema/mouseswipe/internal/input"
	"github.com/bnema/mouseswipe/internal/keys"
	"github.com/bnema/mouseswipe/internal/logger"
	"github.com/bnema/mouseswipe/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mouseswipe configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration with resolved key codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return showConfig(cmd.OutOrStdout(), cfg)
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration file and uinput access",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.FormatHeader("CONFIG CHECK"))

		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintln(out, ui.FormatResult(false, config.GetConfigPath(), err.Error()))
			return err
		}
		fmt.Fprintln(out, ui.FormatResult(true, config.GetConfigPath(), fmt.Sprintf("%d button(s)", len(cfg.Buttons))))

		// uinput is only a warning here, check runs unprivileged
		if err := input.CheckUinputAccess(); err != nil {
			fmt.Fprintln(out, ui.FormatResult(false, "/dev/uinput", err.Error()))
		} else {
			fmt.Fprintln(out, ui.FormatResult(true, "/dev/uinput", "writable"))
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check if config already exists
		configPath := config.GetConfigPath()
		if _, err := os.Stat(configPath); err == nil {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				logger.Infof("Configuration file already exists at: %s", configPath)
				logger.Info("Use --force to overwrite")
				return nil
			}
		}

		defaults := config.DefaultConfig
		if err := config.Save(&defaults); err != nil {
			return err
		}

		logger.Infof("Configuration initialized at: %s", configPath)
		logger.Info("Use 'mouseswipe config check' after editing it")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().Bool("force", false, "Force overwrite existing configuration")
}

func showConfig(w io.Writer, cfg *config.Config) error {
	templates, err := cfg.Templates()
	if err != nil {
		return err
	}

	var output strings.Builder
	output.WriteString(ui.FormatHeader("CONFIGURATION"))
	output.WriteString("\n")
	output.WriteString(ui.FormatKeyValue("file", config.GetConfigPath()) + "\n")
	level := cfg.Logging.LogLevel
	if level == "" {
		level = "(LOG_LEVEL)"
	}
	output.WriteString(ui.FormatKeyValue("log_level", level) + "\n")
	output.WriteString(ui.FormatKeyValue("input_dir", cfg.Devices.InputDir) + "\n")
	output.WriteString(ui.FormatKeyValue("virtual_name", cfg.Devices.VirtualName) + "\n")
	output.WriteString(ui.FormatKeyValue("poll_interval", cfg.Devices.PollInterval.String()) + "\n")
	output.WriteString(ui.FormatKeyValue("restart_delay", cfg.Devices.RestartDelay.String()) + "\n\n")

	rows := make([][]string, 0, len(templates))
	for _, t := range templates {
		mode := "swipe"
		if t.Scroll {
			mode = "scroll"
		}
		if t.Freeze {
			mode += "+freeze"
		}
		rows = append(rows, []string{
			keys.Name(t.Button),
			fmt.Sprintf("%d", t.Delta),
			mode,
			keys.Names(t.Click),
			keys.Names(t.SwipeUp),
			keys.Names(t.SwipeDown),
			keys.Names(t.SwipeLeft),
			keys.Names(t.SwipeRight),
		})
	}
	output.WriteString(ui.Table(
		[]string{"BUTTON", "DELTA", "MODE", "CLICK", "UP", "DOWN", "LEFT", "RIGHT"},
		rows, nil))

	fmt.Fprintln(w, output.String())
	return nil
}
