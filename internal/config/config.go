// Package config handles configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/mouseswipe/internal/gesture"
	"github.com/bnema/mouseswipe/internal/keys"
	"github.com/bnema/mouseswipe/internal/logger"
	"github.com/holoplot/go-evdev"
	"github.com/spf13/viper"
)

const (
	configName = "mouseswipe"
	systemDir  = "/etc/mouseswipe"
)

var (
	// ErrNoButtons is returned when no gesture button is configured
	ErrNoButtons = errors.New("no gesture buttons configured")
	// ErrDuplicateTrigger is returned when two buttons share a trigger code
	ErrDuplicateTrigger = errors.New("duplicate trigger button")
	// ErrInvalid wraps every other validation failure
	ErrInvalid = errors.New("invalid configuration")
)

// Config represents the application configuration
type Config struct {
	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`

	// Input devices and restart loop
	Devices DevicesConfig `mapstructure:"devices"`

	// Gesture buttons, in trigger precedence order
	Buttons []ButtonConfig `mapstructure:"buttons"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

// DevicesConfig contains device discovery settings
type DevicesConfig struct {
	InputDir     string        `mapstructure:"input_dir"`
	VirtualName  string        `mapstructure:"virtual_name"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	RestartDelay time.Duration `mapstructure:"restart_delay"` // 0 restarts immediately
}

// ButtonConfig is one gesture button. Key sequences are key names such as
// "KEY_LEFTCTRL" or decimal codes.
type ButtonConfig struct {
	Button     string   `mapstructure:"button"`
	Delta      int32    `mapstructure:"delta"`
	Scroll     bool     `mapstructure:"scroll"`
	Freeze     bool     `mapstructure:"freeze"`
	Click      []string `mapstructure:"click"`
	SwipeUp    []string `mapstructure:"swipe_up"`
	SwipeDown  []string `mapstructure:"swipe_down"`
	SwipeLeft  []string `mapstructure:"swipe_left"`
	SwipeRight []string `mapstructure:"swipe_right"`
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Logging: LoggingConfig{
			LogLevel: "", // Empty means use LOG_LEVEL env var
		},
		Devices: DevicesConfig{
			InputDir:     "/dev/input",
			VirtualName:  "mouse-swipe-virtual-device",
			PollInterval: 5 * time.Second,
			RestartDelay: 0,
		},
		Buttons: []ButtonConfig{
			{
				// Back button: swipe to switch workspaces, click still goes back
				Button:     "BTN_SIDE",
				Delta:      50,
				Freeze:     true,
				Click:      []string{"BTN_SIDE"},
				SwipeUp:    []string{"KEY_LEFTMETA"},
				SwipeDown:  []string{"KEY_LEFTMETA", "KEY_D"},
				SwipeLeft:  []string{"KEY_LEFTCTRL", "KEY_LEFTALT", "KEY_LEFT"},
				SwipeRight: []string{"KEY_LEFTCTRL", "KEY_LEFTALT", "KEY_RIGHT"},
			},
			{
				// Forward button: hold and move to scroll
				Button: "BTN_EXTRA",
				Delta:  10,
				Scroll: true,
				Freeze: true,
				Click:  []string{"BTN_EXTRA"},
			},
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	// Set config name and type
	viper.SetConfigName(configName)
	viper.SetConfigType("toml")

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		// Add config paths in order of precedence
		viper.AddConfigPath(systemDir) // System config directory (primary)

		// If running with sudo, try the real user's config
		if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
			viper.AddConfigPath(filepath.Join("/home", sudoUser, ".config", configName))
		} else if home := os.Getenv("HOME"); home != "" && home != "/root" {
			viper.AddConfigPath(filepath.Join(home, ".config", configName))
		}

		viper.AddConfigPath(".") // Current directory (lowest priority)
	}

	viper.SetEnvPrefix("MOUSESWIPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		logger.Debug("No config file found, using defaults")
	} else {
		logger.Debug("Loaded config", "path", viper.ConfigFileUsed())
	}

	// Unmarshal config
	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// setDefaults sets individual fields for proper merging
func setDefaults() {
	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	viper.SetDefault("devices.input_dir", DefaultConfig.Devices.InputDir)
	viper.SetDefault("devices.virtual_name", DefaultConfig.Devices.VirtualName)
	viper.SetDefault("devices.poll_interval", DefaultConfig.Devices.PollInterval.String())
	viper.SetDefault("devices.restart_delay", DefaultConfig.Devices.RestartDelay.String())

	viper.SetDefault("buttons", buttonMaps(DefaultConfig.Buttons))
}

// buttonMaps converts buttons to the TOML table layout
func buttonMaps(buttons []ButtonConfig) []map[string]interface{} {
	maps := make([]map[string]interface{}, 0, len(buttons))
	for _, b := range buttons {
		m := map[string]interface{}{
			"button": b.Button,
			"delta":  b.Delta,
			"scroll": b.Scroll,
			"freeze": b.Freeze,
		}
		for key, seq := range map[string][]string{
			"click":       b.Click,
			"swipe_up":    b.SwipeUp,
			"swipe_down":  b.SwipeDown,
			"swipe_left":  b.SwipeLeft,
			"swipe_right": b.SwipeRight,
		} {
			if seq == nil {
				seq = []string{}
			}
			m[key] = seq
		}
		maps = append(maps, m)
	}
	return maps
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save writes c to the config file
func Save(c *Config) error {
	configPath := GetConfigPath()

	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		// If we can't create it (e.g., /etc/mouseswipe needs sudo), provide helpful message
		if os.IsPermission(err) && strings.HasPrefix(configPath, "/etc/") {
			return fmt.Errorf("failed to create config directory %s: permission denied. Try running with sudo", dir)
		}
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set("logging.log_level", c.Logging.LogLevel)
	viper.Set("devices.input_dir", c.Devices.InputDir)
	viper.Set("devices.virtual_name", c.Devices.VirtualName)
	viper.Set("devices.poll_interval", c.Devices.PollInterval.String())
	viper.Set("devices.restart_delay", c.Devices.RestartDelay.String())
	viper.Set("buttons", buttonMaps(c.Buttons))

	// Write config
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	// If override is set, use that
	if configPathOverride != "" {
		return configPathOverride
	}

	// Check if config file is already loaded
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	// Grabbing devices needs root, so root and sudo use the system config
	if os.Getuid() == 0 || os.Getenv("SUDO_USER") != "" {
		return filepath.Join(systemDir, configName+".toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(systemDir, configName+".toml")
	}

	return filepath.Join(home, ".config", configName, configName+".toml")
}

// Validate checks the whole configuration, including every key name
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.Logging.LogLevel); err != nil {
		return fmt.Errorf("%w: logging.log_level: %w", ErrInvalid, err)
	}
	if c.Devices.PollInterval <= 0 {
		return fmt.Errorf("%w: devices.poll_interval must be positive, got %s", ErrInvalid, c.Devices.PollInterval)
	}
	if c.Devices.RestartDelay < 0 {
		return fmt.Errorf("%w: devices.restart_delay must not be negative, got %s", ErrInvalid, c.Devices.RestartDelay)
	}
	_, err := c.Templates()
	return err
}

// Templates resolves the configured buttons into gesture templates
func (c *Config) Templates() ([]gesture.Template, error) {
	if len(c.Buttons) == 0 {
		return nil, ErrNoButtons
	}

	templates := make([]gesture.Template, 0, len(c.Buttons))
	seen := make(map[evdev.EvCode]int, len(c.Buttons))
	for i, b := range c.Buttons {
		t, err := b.Template()
		if err != nil {
			return nil, fmt.Errorf("buttons[%d]: %w", i, err)
		}
		if prev, ok := seen[t.Button]; ok {
			return nil, fmt.Errorf("buttons[%d]: %w: %s already used by buttons[%d]", i, ErrDuplicateTrigger, b.Button, prev)
		}
		seen[t.Button] = i
		templates = append(templates, t)
	}
	return templates, nil
}

// Template resolves one button's key names
func (b ButtonConfig) Template() (gesture.Template, error) {
	var t gesture.Template

	if b.Button == "" {
		return t, fmt.Errorf("%w: button is required", ErrInvalid)
	}
	button, err := keys.Lookup(b.Button)
	if err != nil {
		return t, fmt.Errorf("button: %w", err)
	}
	if b.Delta < 0 {
		return t, fmt.Errorf("%w: delta must not be negative, got %d", ErrInvalid, b.Delta)
	}

	t = gesture.Template{
		Button: button,
		Delta:  b.Delta,
		Scroll: b.Scroll,
		Freeze: b.Freeze,
	}

	if t.Click, err = lookup("click", b.Click); err != nil {
		return t, err
	}
	if t.SwipeUp, err = lookup("swipe_up", b.SwipeUp); err != nil {
		return t, err
	}
	if t.SwipeDown, err = lookup("swipe_down", b.SwipeDown); err != nil {
		return t, err
	}
	if t.SwipeLeft, err = lookup("swipe_left", b.SwipeLeft); err != nil {
		return t, err
	}
	if t.SwipeRight, err = lookup("swipe_right", b.SwipeRight); err != nil {
		return t, err
	}
	return t, nil
}

func lookup(field string, names []string) ([]evdev.EvCode, error) {
	codes, err := keys.LookupAll(names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return codes, nil
}
