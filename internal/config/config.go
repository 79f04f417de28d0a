// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Notifier modes understood by the supervisor.
const (
	NotifierModeProcess   = "process"
	NotifierModeInProcess = "inprocess"
)

// HostedDataDir is the persistent volume used when running on a hosted platform.
const HostedDataDir = "/data"

// DefaultSeedFile is the bundled progress document copied into a fresh volume.
const DefaultSeedFile = "progress_data_multitask.json"

// Config holds all configuration values for progressr.
type Config struct {
	BotToken           string        `mapstructure:"bot_token"`
	ChannelID          string        `mapstructure:"channel_id"`
	APISecretKey       string        `mapstructure:"api_secret_key"`
	DataDir            string        `mapstructure:"data_dir"`
	Port               int           `mapstructure:"port"`
	PollInterval       time.Duration `mapstructure:"poll_interval"`
	ExternalTimeout    time.Duration `mapstructure:"external_timeout"`
	RestartDelay       time.Duration `mapstructure:"restart_delay"`
	NotifierMode       string        `mapstructure:"notifier_mode"`
	StartNotifier      bool          `mapstructure:"start_notifier"`
	ControlRequiresKey bool          `mapstructure:"control_requires_key"`
	SeedFile           string        `mapstructure:"seed_file"`
	LogLevel           string        `mapstructure:"log_level"`
	LogFile            string        `mapstructure:"log_file"`
}

// envBindings maps config keys to the environment variables that may set them.
// The unprefixed names are the ones the hosted deployment already uses.
var envBindings = map[string][]string{
	"bot_token":            {"PROGRESSR_BOT_TOKEN", "BOT_TOKEN"},
	"channel_id":           {"PROGRESSR_CHANNEL_ID", "PROGRESS_CHANNEL_ID"},
	"api_secret_key":       {"PROGRESSR_API_SECRET_KEY", "API_SECRET_KEY"},
	"data_dir":             {"PROGRESSR_DATA_DIR"},
	"port":                 {"PROGRESSR_PORT", "PORT"},
	"poll_interval":        {"PROGRESSR_POLL_INTERVAL"},
	"external_timeout":     {"PROGRESSR_EXTERNAL_TIMEOUT"},
	"restart_delay":        {"PROGRESSR_RESTART_DELAY"},
	"notifier_mode":        {"PROGRESSR_NOTIFIER_MODE"},
	"start_notifier":       {"PROGRESSR_START_NOTIFIER"},
	"control_requires_key": {"PROGRESSR_CONTROL_REQUIRES_KEY"},
	"seed_file":            {"PROGRESSR_SEED_FILE"},
	"log_level":            {"PROGRESSR_LOG_LEVEL"},
	"log_file":             {"PROGRESSR_LOG_FILE"},
}

// Load loads configuration with full precedence:
// ENV vars > project config > XDG global config > defaults.
// Command flags are applied on top by the caller.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("progressr")

	setDefaults(v)

	v.SetEnvPrefix("PROGRESSR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, names := range envBindings {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	dataDir := "."
	seedFile := ""
	if Hosted() {
		dataDir = HostedDataDir
		seedFile = DefaultSeedFile
	}

	v.SetDefault("bot_token", "")
	v.SetDefault("channel_id", "")
	v.SetDefault("api_secret_key", "")
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("port", 5000)
	v.SetDefault("poll_interval", 5*time.Second)
	v.SetDefault("external_timeout", 10*time.Second)
	v.SetDefault("restart_delay", 2*time.Second)
	v.SetDefault("notifier_mode", NotifierModeProcess)
	v.SetDefault("start_notifier", false)
	v.SetDefault("control_requires_key", false)
	v.SetDefault("seed_file", seedFile)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// Hosted reports whether progressr runs on the hosted platform, where data lives on a volume.
func Hosted() bool {
	return os.Getenv("RAILWAY_PROJECT_ID") != ""
}

// Validate checks values that would otherwise fail much later at runtime.
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive (got %s)", c.PollInterval)
	}
	if c.ExternalTimeout <= 0 {
		return fmt.Errorf("external_timeout must be positive (got %s)", c.ExternalTimeout)
	}
	if c.RestartDelay < 0 {
		return fmt.Errorf("restart_delay must not be negative (got %s)", c.RestartDelay)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	switch c.NotifierMode {
	case NotifierModeProcess, NotifierModeInProcess:
	default:
		return fmt.Errorf("invalid notifier_mode: %s (must be %s or %s)", c.NotifierMode, NotifierModeProcess, NotifierModeInProcess)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/progressr/progressr.yml or $XDG_CONFIG_HOME/progressr/progressr.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "progressr", "progressr.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "progressr", "progressr.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "progressr.yml"
}

// fileConfig is the on-disk shape; durations are written as strings like "5s".
type fileConfig struct {
	BotToken           string `yaml:"bot_token"`
	ChannelID          string `yaml:"channel_id"`
	APISecretKey       string `yaml:"api_secret_key"`
	DataDir            string `yaml:"data_dir"`
	Port               int    `yaml:"port"`
	PollInterval       string `yaml:"poll_interval"`
	ExternalTimeout    string `yaml:"external_timeout"`
	RestartDelay       string `yaml:"restart_delay"`
	NotifierMode       string `yaml:"notifier_mode"`
	StartNotifier      bool   `yaml:"start_notifier"`
	ControlRequiresKey bool   `yaml:"control_requires_key"`
	SeedFile           string `yaml:"seed_file"`
	LogLevel           string `yaml:"log_level"`
	LogFile            string `yaml:"log_file"`
}

func (c *Config) toFile() fileConfig {
	return fileConfig{
		BotToken:           c.BotToken,
		ChannelID:          c.ChannelID,
		APISecretKey:       c.APISecretKey,
		DataDir:            c.DataDir,
		Port:               c.Port,
		PollInterval:       c.PollInterval.String(),
		ExternalTimeout:    c.ExternalTimeout.String(),
		RestartDelay:       c.RestartDelay.String(),
		NotifierMode:       c.NotifierMode,
		StartNotifier:      c.StartNotifier,
		ControlRequiresKey: c.ControlRequiresKey,
		SeedFile:           c.SeedFile,
		LogLevel:           c.LogLevel,
		LogFile:            c.LogFile,
	}
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		DataDir:         ".",
		Port:            5000,
		PollInterval:    5 * time.Second,
		ExternalTimeout: 10 * time.Second,
		RestartDelay:    2 * time.Second,
		NotifierMode:    NotifierModeProcess,
		LogLevel:        "info",
	}
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return writeFile(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return writeFile(ProjectPath(), cfg)
}

func writeFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg.toFile())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// 0600: the file may hold the bot token and API secret.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
