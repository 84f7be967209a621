package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment is a named deployment tier.
type Environment string

const (
	EnvLocal Environment = "local"
	EnvDev   Environment = "dev"
	EnvProd  Environment = "prod"
)

// Environments lists the supported tiers in selection order.
var Environments = []Environment{EnvLocal, EnvDev, EnvProd}

// Per-environment key suffixes; the full key is the upper-cased environment
// name plus the suffix, e.g. DEV_MYSQL_HOST.
const (
	KeyMySQLHost       = "MYSQL_HOST"
	KeyAdminUser       = "ADMIN_USER"
	KeyAdminPass       = "ADMIN_PASS"
	KeyDockerContainer = "DOCKER_CONTAINER"
)

const (
	defaultHost      = "127.0.0.1"
	defaultAdminUser = "root"
)

// ParseEnvironment maps a user-supplied name onto one of the supported
// tiers.
func ParseEnvironment(name string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(EnvLocal):
		return EnvLocal, nil
	case string(EnvDev):
		return EnvDev, nil
	case string(EnvProd):
		return EnvProd, nil
	}
	return "", fmt.Errorf("unknown environment %q (expected local, dev, or prod)", name)
}

// Key returns the process environment key for this environment and suffix.
func (e Environment) Key(suffix string) string {
	return strings.ToUpper(string(e)) + "_" + suffix
}

// ResolvedEnvironment is the merged credential set for one environment.
// Precedence per key: process env, then .env.<name>, then dbmint.toml, then
// built-in defaults.
type ResolvedEnvironment struct {
	Name          Environment
	Host          string
	AdminUser     string
	AdminPassword string
	ContainerName string
	DotenvPath    string
	FromConfig    bool
	FromDotenv    bool

	// NeedsPassword is set when no layer supplied an admin password. The
	// caller decides whether to prompt; resolution never does.
	NeedsPassword bool
}

// ResolveEnvironment resolves a named environment into concrete connection
// settings. An empty name falls back to the config's default environment,
// then to local.
func ResolveEnvironment(config *Config, name string) (*ResolvedEnvironment, error) {
	envName := strings.TrimSpace(name)
	if envName == "" {
		if config != nil && config.DefaultEnvironment != "" {
			envName = config.DefaultEnvironment
		} else {
			envName = string(EnvLocal)
		}
	}

	env, err := ParseEnvironment(envName)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedEnvironment{Name: env}

	if config != nil && config.Environments != nil {
		if envConfig, ok := config.Environments[string(env)]; ok {
			resolved.Host = envConfig.MySQLHost
			resolved.AdminUser = envConfig.AdminUser
			resolved.AdminPassword = envConfig.AdminPass
			resolved.ContainerName = envConfig.DockerContainer
			resolved.FromConfig = true
		}
	}

	var baseDir string
	if config != nil && config.ConfigDir() != "" {
		baseDir = config.ConfigDir()
	} else if cwd, err := os.Getwd(); err == nil {
		baseDir = cwd
	}

	dotenvFileName := ".env." + string(env)
	if baseDir != "" {
		resolved.DotenvPath = filepath.Join(baseDir, dotenvFileName)
	} else {
		resolved.DotenvPath = dotenvFileName
	}

	if info, err := os.Stat(resolved.DotenvPath); err == nil && !info.IsDir() {
		values, err := godotenv.Read(resolved.DotenvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", resolved.DotenvPath, err)
		}
		resolved.FromDotenv = true

		overlay(&resolved.Host, values[env.Key(KeyMySQLHost)])
		overlay(&resolved.AdminUser, values[env.Key(KeyAdminUser)])
		overlay(&resolved.AdminPassword, values[env.Key(KeyAdminPass)])
		overlay(&resolved.ContainerName, values[env.Key(KeyDockerContainer)])
	} else if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to access %s: %w", resolved.DotenvPath, err)
	}

	overlay(&resolved.Host, os.Getenv(env.Key(KeyMySQLHost)))
	overlay(&resolved.AdminUser, os.Getenv(env.Key(KeyAdminUser)))
	overlay(&resolved.AdminPassword, os.Getenv(env.Key(KeyAdminPass)))
	overlay(&resolved.ContainerName, os.Getenv(env.Key(KeyDockerContainer)))

	if resolved.Host == "" {
		resolved.Host = defaultHost
	}
	if resolved.AdminUser == "" {
		resolved.AdminUser = defaultAdminUser
	}
	resolved.NeedsPassword = resolved.AdminPassword == ""

	return resolved, nil
}

// overlay replaces dst with value when value is non-empty.
func overlay(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
