// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Shell configuration (panel, background, locking)
	Shell ShellConfig `mapstructure:"shell"`

	// Per-user chrome overrides, keyed by username
	Users map[string]UserChrome `mapstructure:"users"`

	// Panel launcher entries
	Launchers []LauncherConfig `mapstructure:"launchers"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// ShellConfig contains the desktop-shell settings
type ShellConfig struct {
	// Locking enables the screen-lock flow. When false a prepare-lock
	// request from the compositor is acknowledged immediately.
	Locking bool `mapstructure:"locking"`

	PanelColor      string `mapstructure:"panel_color"`      // 0xAARRGGBB
	BackgroundImage string `mapstructure:"background_image"` // path, empty for none
	BackgroundColor string `mapstructure:"background_color"` // 0xAARRGGBB
	BackgroundType  string `mapstructure:"background_type"`  // scale, scale-crop, tile

	// DefaultUser is the user whose chrome is shown before the first
	// user-switched event arrives.
	DefaultUser string `mapstructure:"default_user"`

	// PamService enables credential checks in the unlock dialog when
	// non-empty. Empty means submit without verification.
	PamService string `mapstructure:"pam_service"`
}

// UserChrome overrides background settings for one user
type UserChrome struct {
	BackgroundImage string `mapstructure:"background_image"`
	BackgroundColor string `mapstructure:"background_color"`
}

// LauncherConfig describes one panel launcher button
type LauncherConfig struct {
	Icon string `mapstructure:"icon"`
	Path string `mapstructure:"path"`
	// User restricts the launcher to one user's panel; empty means all users.
	User string `mapstructure:"user"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Shell: ShellConfig{
			Locking:         true,
			PanelColor:      "0xaa000000",
			BackgroundImage: "",
			BackgroundColor: "0xff002244",
			BackgroundType:  "tile",
			DefaultUser:     "Guest",
			PamService:      "",
		},
		Users:     map[string]UserChrome{},
		Launchers: []LauncherConfig{},
		Logging:   LoggingConfig{LogLevel: ""},
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
	viper.SetConfigName("waydesk")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if home := os.Getenv("HOME"); home != "" {
			viper.AddConfigPath(filepath.Join(home, ".config", "waydesk"))
		}
		viper.AddConfigPath("/etc/waydesk")
		viper.AddConfigPath(".")
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("shell.locking", DefaultConfig.Shell.Locking)
	viper.SetDefault("shell.panel_color", DefaultConfig.Shell.PanelColor)
	viper.SetDefault("shell.background_image", DefaultConfig.Shell.BackgroundImage)
	viper.SetDefault("shell.background_color", DefaultConfig.Shell.BackgroundColor)
	viper.SetDefault("shell.background_type", DefaultConfig.Shell.BackgroundType)
	viper.SetDefault("shell.default_user", DefaultConfig.Shell.DefaultUser)
	viper.SetDefault("shell.pam_service", DefaultConfig.Shell.PamService)
	viper.SetDefault("launchers", DefaultConfig.Launchers)
	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/waydesk/waydesk.toml"
	}
	return filepath.Join(home, ".config", "waydesk", "waydesk.toml")
}

// BackgroundFor resolves the background image and color for a user,
// falling back to the shell-wide settings when the user has no override.
func (c *Config) BackgroundFor(username string) (image, color string) {
	image = c.Shell.BackgroundImage
	color = c.Shell.BackgroundColor
	if u, ok := c.Users[username]; ok {
		if u.BackgroundImage != "" {
			image = u.BackgroundImage
		}
		if u.BackgroundColor != "" {
			color = u.BackgroundColor
		}
	}
	return image, color
}

// LaunchersFor returns the launcher entries visible on a user's panel:
// the unrestricted ones plus the ones bound to that user.
func (c *Config) LaunchersFor(username string) []LauncherConfig {
	var out []LauncherConfig
	for _, l := range c.Launchers {
		if l.User == "" || l.User == username {
			out = append(out, l)
		}
	}
	return out
}
