// Package config provides configuration management for opsdeck
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. OPSDECK_SSH_PASSWORD
const EnvPrefix = "OPSDECK"

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app" yaml:"app"`
	SSH       SSHConfig       `mapstructure:"ssh" yaml:"ssh"`
	Corrector CorrectorConfig `mapstructure:"corrector" yaml:"corrector"`
	Catalog   CatalogConfig   `mapstructure:"catalog" yaml:"catalog"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// AppConfig holds application settings
type AppConfig struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Debug bool   `mapstructure:"debug" yaml:"debug"`
}

// SSHConfig holds the remote host connection
type SSHConfig struct {
	Host                  string        `mapstructure:"host" yaml:"host"`
	Port                  int           `mapstructure:"port" yaml:"port"`
	User                  string        `mapstructure:"user" yaml:"user"`
	Password              string        `mapstructure:"password" yaml:"password"`
	KeyFile               string        `mapstructure:"key_file" yaml:"key_file"`
	KnownHosts            string        `mapstructure:"known_hosts" yaml:"known_hosts"`
	InsecureIgnoreHostKey bool          `mapstructure:"insecure_ignore_host_key" yaml:"insecure_ignore_host_key"`
	Timeout               time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// CorrectorConfig holds command correction settings
type CorrectorConfig struct {
	Enabled    bool     `mapstructure:"enabled" yaml:"enabled"`
	Program    string   `mapstructure:"program" yaml:"program"`
	Threshold  float64  `mapstructure:"threshold" yaml:"threshold"`
	Vocabulary []string `mapstructure:"vocabulary" yaml:"vocabulary"`
}

// CatalogConfig points at an optional catalog file replacing the built-in one
type CatalogConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

var (
	// globalConfig holds the global configuration instance
	globalConfig *Config
	// configPath is the path to the config file
	configPath string
)

// Load loads the configuration from file and environment variables.
// A missing file is created with defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfig), 0600); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read created config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	expandPaths(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configPath = path
	globalConfig = &cfg
	return &cfg, nil
}

// Get returns the global configuration instance
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load("")
		if err != nil {
			return Default()
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}

// Path returns the file the configuration was loaded from
func Path() string {
	if configPath == "" {
		return DefaultPath()
	}
	return configPath
}

// Default returns the built-in configuration without reading any file
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	expandPaths(&cfg)
	return &cfg
}

// Validate rejects settings the rest of the program cannot work with
func (c *Config) Validate() error {
	if c.Corrector.Threshold <= 0 || c.Corrector.Threshold >= 1 {
		return fmt.Errorf("corrector.threshold must be between 0 and 1, got %v", c.Corrector.Threshold)
	}
	if strings.TrimSpace(c.Corrector.Program) == "" {
		return errors.New("corrector.program must not be empty")
	}
	if c.SSH.Port < 1 || c.SSH.Port > 65535 {
		return fmt.Errorf("ssh.port must be between 1 and 65535, got %d", c.SSH.Port)
	}
	if c.SSH.Timeout < 0 {
		return fmt.Errorf("ssh.timeout must not be negative, got %v", c.SSH.Timeout)
	}
	return nil
}

// Redacted returns a copy safe for display
func (c *Config) Redacted() Config {
	out := *c
	if out.SSH.Password != "" {
		out.SSH.Password = "********"
	}
	return out
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "opsdeck")
	v.SetDefault("app.debug", false)

	v.SetDefault("ssh.host", "")
	v.SetDefault("ssh.port", 22)
	v.SetDefault("ssh.user", "root")
	v.SetDefault("ssh.password", "")
	v.SetDefault("ssh.key_file", "")
	v.SetDefault("ssh.known_hosts", "~/.ssh/known_hosts")
	v.SetDefault("ssh.insecure_ignore_host_key", false)
	v.SetDefault("ssh.timeout", "30s")

	v.SetDefault("corrector.enabled", true)
	v.SetDefault("corrector.program", "docker")
	v.SetDefault("corrector.threshold", 0.6)
	v.SetDefault("corrector.vocabulary", []string{})

	v.SetDefault("catalog.file", "")

	v.SetDefault("database.path", filepath.Join(DataDir(), "opsdeck.db"))

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 5)
}

const defaultConfig = `# opsdeck configuration

app:
  name: "opsdeck"
  debug: false

ssh:
  host: ""
  port: 22
  user: "root"
  # prefer OPSDECK_SSH_PASSWORD or key_file over storing a password here
  password: ""
  key_file: ""
  known_hosts: "~/.ssh/known_hosts"
  insecure_ignore_host_key: false
  timeout: "30s"

corrector:
  enabled: true
  program: "docker"
  threshold: 0.6
  # replaces the built-in docker verbs when non-empty
  vocabulary: []

catalog:
  file: ""

database:
  path: "~/.opsdeck/opsdeck.db"

logging:
  level: "warn"
  file: ""
  max_size: 10
  max_backups: 5
`

// expandPaths expands environment variables and home directory in paths
func expandPaths(cfg *Config) {
	homeDir, _ := os.UserHomeDir()
	for _, p := range []*string{
		&cfg.SSH.KeyFile,
		&cfg.SSH.KnownHosts,
		&cfg.Catalog.File,
		&cfg.Database.Path,
		&cfg.Logging.File,
	} {
		if *p != "" {
			*p = expandPath(*p, homeDir)
		}
	}
}

// expandPath expands ~ and environment variables in a path
func expandPath(path, homeDir string) string {
	if len(path) > 0 && path[0] == '~' {
		path = filepath.Join(homeDir, path[1:])
	}
	return os.ExpandEnv(path)
}

// DefaultPath returns the default configuration file path
func DefaultPath() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "opsdeck", "config.yaml")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".opsdeck.yaml"
	}
	return filepath.Join(homeDir, ".config", "opsdeck", "config.yaml")
}

// DataDir returns the data directory path
func DataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".opsdeck"
	}
	return filepath.Join(homeDir, ".opsdeck")
}
