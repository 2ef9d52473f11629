package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/mouseswipe/internal/config"
	"github.com/bnema/mouseswipe/internal/input"
	"github.com/bnema/mouseswipe/internal/keys"
	"github.com/bnema/mouseswipe/internal/logger"
	"github.com/bnema/mouseswipe/internal/session"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Grab mice and run the gesture engine",
	Long: `Create the virtual device, grab every mouse and translate button gestures
until interrupted. New mice are picked up automatically. Needs access to
/dev/uinput and /dev/input/event*, usually root.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEngine()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runEngine() error {
	// Config errors abort before any device is touched
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	templates, err := cfg.Templates()
	if err != nil {
		return err
	}

	if err := input.CheckUinputAccess(); err != nil {
		return err
	}

	for _, t := range templates {
		logger.Info("Gesture button",
			"button", keys.Name(t.Button),
			"delta", t.Delta,
			"scroll", t.Scroll,
			"freeze", t.Freeze)
	}

	vd, err := input.NewVirtualDevice(cfg.Devices.VirtualName)
	if err != nil {
		return err
	}
	defer func() {
		if err := vd.Close(); err != nil {
			logger.Errorf("Failed to remove virtual device: %v", err)
		}
	}()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// A second signal kills the process if cleanup hangs
	context.AfterFunc(ctx, stop)

	source := input.NewSource(cfg.Devices.InputDir, cfg.Devices.VirtualName)
	supervisor := session.NewSupervisor(source, templates, input.NewEmitter(vd), session.Options{
		PollInterval: cfg.Devices.PollInterval,
		RestartDelay: cfg.Devices.RestartDelay,
	})

	logger.Info("mouseswipe started, press Ctrl+C to exit", "config", config.GetConfigPath())
	if err := supervisor.Run(ctx); err != nil {
		return fmt.Errorf("gesture engine failed: %w", err)
	}
	logger.Info("Exiting")
	return nil
}
