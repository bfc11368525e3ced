package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options for hugevec.
type Config struct {
	// TempDir overrides where backing files are created.
	// Empty means the system temp directory.
	TempDir string `json:"temp_dir,omitempty"`

	// HistoryFile is where the repl persists its input history.
	// Empty disables history persistence.
	HistoryFile string `json:"history_file,omitempty"`
}

// ConfigFileName is the default config file name, looked up in the
// working directory.
const ConfigFileName = ".hugevec.json"

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigInvalid      = errors.New("invalid config file")
	errTempDirNotDir      = errors.New("temp_dir is not a directory")
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{}
}

// LoadConfig loads configuration with the following precedence (highest
// wins):
//  1. Defaults
//  2. Config file at workDir/.hugevec.json (if it exists)
//  3. Explicit config file via configPath (must exist if non-empty)
//  4. CLI overrides
func LoadConfig(workDir, configPath string, overrides Config) (Config, error) {
	cfg := DefaultConfig()

	defaultPath := filepath.Join(workDir, ConfigFileName)
	if fileCfg, err := loadConfigFile(defaultPath); err == nil {
		cfg = mergeConfig(cfg, fileCfg)
	} else if !errors.Is(err, errConfigFileNotFound) {
		return Config{}, err
	}

	if configPath != "" {
		fileCfg, err := loadConfigFile(configPath)
		if err != nil {
			return Config{}, err
		}

		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg = mergeConfig(cfg, overrides)

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// loadConfigFile parses one config file. The format is HuJSON, so comments
// and trailing commas are allowed.
func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
		}

		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", errConfigInvalid, path, err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", errConfigInvalid, path, err)
	}

	return cfg, nil
}

// mergeConfig overlays non-empty fields of overlay onto base.
func mergeConfig(base, overlay Config) Config {
	if overlay.TempDir != "" {
		base.TempDir = overlay.TempDir
	}

	if overlay.HistoryFile != "" {
		base.HistoryFile = overlay.HistoryFile
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.TempDir == "" {
		return nil
	}

	info, err := os.Stat(cfg.TempDir)
	if err != nil {
		return fmt.Errorf("temp_dir: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s", errTempDirNotDir, cfg.TempDir)
	}

	return nil
}
