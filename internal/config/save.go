package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SavePath returns the file settings are written to: the -config path, else
// the file Load found, else config.yaml in ConfigDir.
func SavePath() string {
	if path := ConfigPath(); path != "" {
		return path
	}
	if path := findConfigFile(); path != "" {
		return path
	}
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Save writes the config to SavePath.
func (c *Config) Save() error {
	return c.SaveTo(SavePath())
}

// SaveTo writes the config to a specific path. The file is replaced
// by rename.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Update applies fn to the settings stored on disk and writes them back.
// It starts from defaults plus the file, never from a loaded Config, so
// one-off flag overrides such as -seed are not persisted.
func Update(fn func(*Config)) error {
	path := SavePath()
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := loadFromFile(cfg, path); err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
	}
	fn(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
