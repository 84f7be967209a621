package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const configFilename = "dbmint.toml"

// EnvironmentConfig describes a single named environment from dbmint.toml.
type EnvironmentConfig struct {
	Description     string `toml:"description"`
	MySQLHost       string `toml:"mysql_host"`
	AdminUser       string `toml:"admin_user"`
	AdminPass       string `toml:"admin_pass"`
	DockerContainer string `toml:"docker_container"`
}

type Config struct {
	DefaultEnvironment string                       `toml:"default_environment"`
	Environments       map[string]EnvironmentConfig `toml:"environments"`
	ConfigFilePath     string                       `toml:"-"`
}

// LoadConfig finds and parses dbmint.toml, walking up from the working
// directory to the nearest project root. A missing file is not an error;
// resolution falls through to dotenv files, process env, and defaults.
func LoadConfig() (*Config, error) {
	startDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return loadConfigFrom(startDir)
}

func loadConfigFrom(startDir string) (*Config, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, configFilename)
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, err
			}

			var config Config
			if err := toml.Unmarshal(data, &config); err != nil {
				return nil, err
			}

			config.ConfigFilePath = configPath
			return &config, nil
		}

		// Stop at a project boundary
		if isProjectRoot(dir) {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return &Config{}, nil
}

// ConfigDir returns the directory holding dbmint.toml, or "" when no config
// file was found.
func (c *Config) ConfigDir() string {
	if c == nil || c.ConfigFilePath == "" {
		return ""
	}
	return filepath.Dir(c.ConfigFilePath)
}

// isProjectRoot checks if the directory is a project root based on common markers
func isProjectRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
		return true
	}
	return false
}
