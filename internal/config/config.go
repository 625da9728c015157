package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Supabase SupabaseConfig `mapstructure:"supabase"`
	UI       UIConfig       `mapstructure:"ui"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SupabaseConfig holds the hosted backend configuration
type SupabaseConfig struct {
	URL     string `mapstructure:"url"`      // Project URL, e.g. https://xyz.supabase.co
	AnonKey string `mapstructure:"anon_key"` // Public anon key
	Email   string `mapstructure:"email"`    // Owner account email (optional)
}

// UIConfig holds UI configuration
type UIConfig struct {
	Theme string `mapstructure:"theme"` // "dark" or "light"
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			Theme: "dark",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "shuzhai", "shuzhai.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "shuzhai", "shuzhai.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "shuzhai")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "shuzhai")
	}
}

// DefaultDataPath returns the directory holding the local like ledger db
func DefaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "shuzhai")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "shuzhai")
	}
}

// LoadConfig loads configuration from file and environment.
// Environment variables use the SHUZHAI_ prefix, e.g. SHUZHAI_SUPABASE_URL.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("SHUZHAI")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// Bare SUPABASE_* vars take precedence for local development.
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Supabase.URL = v
	}
	if v := os.Getenv("SUPABASE_ANON_KEY"); v != "" {
		cfg.Supabase.AnonKey = v
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("supabase.url", cfg.Supabase.URL)
	viper.Set("supabase.anon_key", cfg.Supabase.AnonKey)
	viper.Set("supabase.email", cfg.Supabase.Email)
	viper.Set("ui.theme", cfg.UI.Theme)
	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the backend URL and anon key are set
func (c *Config) IsConfigured() bool {
	return c.Supabase.URL != "" && c.Supabase.AnonKey != ""
}
