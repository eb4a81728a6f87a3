package config

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "repodeck.db"
	DefaultTokenEnv       = "GITHUB_TOKEN"
)

type Keymap struct {
	Quit       string `toml:"quit"`
	Search     string `toml:"search"`
	Refresh    string `toml:"refresh"`
	Up         string `toml:"up"`
	Down       string `toml:"down"`
	NextFilter string `toml:"next_filter"`
	PrevFilter string `toml:"prev_filter"`
	Toggle     string `toml:"toggle"`
	Detail     string `toml:"detail"`
	Confirm    string `toml:"confirm"`
	Cancel     string `toml:"cancel"`
}

type Config struct {
	Username string `toml:"username"`
	DBPath   string `toml:"db_path"`
	TokenEnv string `toml:"token_env"`
	LogLevel string `toml:"log_level"`
	Keys     Keymap `toml:"keys"`
}

// ResolveConfigPath returns $REPODECK_CONFIG when set, otherwise
// config.toml under the user config dir.
func ResolveConfigPath() string {
	if path := os.Getenv("REPODECK_CONFIG"); path != "" {
		return path
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(base, "repodeck", DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing one with defaults first
// if it does not exist yet.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		cfg.applyDefaults(path)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults(path)
	return cfg, nil
}

func (c *Config) applyDefaults(path string) {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(filepath.Dir(path), DefaultDBName)
	}
	if c.TokenEnv == "" {
		c.TokenEnv = DefaultTokenEnv
	}
	defaults := defaultConfig().Keys
	if c.Keys.Quit == "" {
		c.Keys.Quit = defaults.Quit
	}
	if c.Keys.Search == "" {
		c.Keys.Search = defaults.Search
	}
	if c.Keys.Refresh == "" {
		c.Keys.Refresh = defaults.Refresh
	}
	if c.Keys.Up == "" {
		c.Keys.Up = defaults.Up
	}
	if c.Keys.Down == "" {
		c.Keys.Down = defaults.Down
	}
	if c.Keys.NextFilter == "" {
		c.Keys.NextFilter = defaults.NextFilter
	}
	if c.Keys.PrevFilter == "" {
		c.Keys.PrevFilter = defaults.PrevFilter
	}
	if c.Keys.Toggle == "" {
		c.Keys.Toggle = defaults.Toggle
	}
	if c.Keys.Detail == "" {
		c.Keys.Detail = defaults.Detail
	}
	if c.Keys.Confirm == "" {
		c.Keys.Confirm = defaults.Confirm
	}
	if c.Keys.Cancel == "" {
		c.Keys.Cancel = defaults.Cancel
	}
}

// Token reads the API token from the configured environment variable.
func (c Config) Token() string {
	return os.Getenv(c.TokenEnv)
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		Username: os.Getenv("GITHUB_USERNAME"),
		TokenEnv: DefaultTokenEnv,
		LogLevel: "info",
		Keys: Keymap{
			Quit:       "q",
			Search:     "/",
			Refresh:    "r",
			Up:         "k",
			Down:       "j",
			NextFilter: "tab",
			PrevFilter: "shift+tab",
			Toggle:     " ",
			Detail:     "enter",
			Confirm:    "enter",
			Cancel:     "esc",
		},
	}
}
