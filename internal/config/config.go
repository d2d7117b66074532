// Package config loads the application configuration from a config file,
// environment variables, and flags, in increasing order of precedence.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config carries everything main needs to wire the application together.
type Config struct {
	// APIBaseURL is the root of the passage API, including any path prefix.
	APIBaseURL string
	// PrefsDir is where consent-gated preferences are stored. Empty means
	// the platform default under the user config directory.
	PrefsDir string
	// Locale overrides environment-based language detection when set, e.g.
	// "fr" or "en-GB".
	Locale string
	// LogFile receives structured logs; logging is off when empty. The TUI
	// owns the terminal, so logs never go to stderr while it runs.
	LogFile string
	// Theme selects the color scheme, "dark" or "light".
	Theme string
}

// Load reads an optional .biblescope config file (current directory, then the
// user config directory) and BIBLESCOPE_* environment variables.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("api_base_url", "http://localhost/api")
	v.SetDefault("theme", "dark")

	v.SetConfigName(".biblescope") // .yaml is implicit
	v.SetEnvPrefix("BIBLESCOPE")
	v.AutomaticEnv()

	v.AddConfigPath("./")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "biblescope"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	return Config{
		APIBaseURL: v.GetString("api_base_url"),
		PrefsDir:   v.GetString("prefs_dir"),
		Locale:     v.GetString("locale"),
		LogFile:    v.GetString("log_file"),
		Theme:      v.GetString("theme"),
	}, nil
}
