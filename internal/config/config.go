package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Diff    DiffConfig    `toml:"diff"`
	Rebase  RebaseConfig  `toml:"rebase"`
	Journal JournalConfig `toml:"journal"`
	Log     LogConfig     `toml:"log"`
}

type DiffConfig struct {
	// Context is the number of unchanged lines around each hunk. Context
	// lines count towards a hunk's owners.
	Context int `toml:"context"`
}

type RebaseConfig struct {
	Auto        bool `toml:"auto"`
	Interactive bool `toml:"interactive"`
}

type JournalConfig struct {
	Enabled bool `toml:"enabled"`
}

type LogConfig struct {
	Debug bool `toml:"debug"`
}

func DefaultConfig() *Config {
	return &Config{
		Diff:    DiffConfig{Context: 3},
		Rebase:  RebaseConfig{Auto: false, Interactive: true},
		Journal: JournalConfig{Enabled: true},
	}
}

// UserPath returns the per-user config file location.
func UserPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "git-autofixup", "config.toml"), nil
}

// Load reads the user config and then the repository config, each
// overriding the defaults and the file before it. Missing files are skipped.
func Load(repoPath string) (*Config, error) {
	cfg := DefaultConfig()

	var paths []string
	if p, err := UserPath(); err == nil {
		paths = append(paths, p)
	}
	if repoPath != "" {
		paths = append(paths, repoPath)
	}

	for _, p := range paths {
		if err := cfg.mergeFile(p); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Validate rejects values no run could use.
func (c *Config) Validate() error {
	if c.Diff.Context < 0 {
		return fmt.Errorf("diff.context must be >= 0, got %d", c.Diff.Context)
	}
	return nil
}
