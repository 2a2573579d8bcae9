// Copyright (c) 2026 Keymaster Team
// dbterm - database control terminal
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RuntimeOS is the operating system used to resolve config paths. Tests may
// compare against it to skip platform specific cases.
var RuntimeOS = runtime.GOOS

// Config is the complete dbterm configuration.
type Config struct {
	Database  DatabaseConfig `mapstructure:"database" yaml:"database"`
	Language  string         `mapstructure:"language" yaml:"language"`
	Provision bool           `mapstructure:"provision" yaml:"provision"`
	Verbose   bool           `mapstructure:"verbose" yaml:"verbose"`
	Shell     ShellConfig    `mapstructure:"shell" yaml:"shell"`
	Snapshot  SnapshotConfig `mapstructure:"snapshot" yaml:"snapshot"`
}

// DatabaseConfig selects the backend and how to reach it.
type DatabaseConfig struct {
	Type string `mapstructure:"type" yaml:"type"` // sqlite, mysql or postgres
	Dsn  string `mapstructure:"dsn" yaml:"dsn"`
}

// ShellConfig tunes the interactive shell.
type ShellConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	LoginDelay  time.Duration `mapstructure:"login_delay" yaml:"login_delay"`
	HistoryFile string        `mapstructure:"history_file" yaml:"history_file"`
}

// SnapshotConfig controls dump, backup and restore.
type SnapshotConfig struct {
	// Tool is "external" (mysqldump/mysql) or "builtin". Empty picks
	// external for mysql and builtin for everything else.
	Tool           string `mapstructure:"tool" yaml:"tool"`
	Dir            string `mapstructure:"dir" yaml:"dir"`
	Compress       bool   `mapstructure:"compress" yaml:"compress"`
	DumpCommand    string `mapstructure:"dump_command" yaml:"dump_command"`
	RestoreCommand string `mapstructure:"restore_command" yaml:"restore_command"`
	Host           string `mapstructure:"host" yaml:"host"`
	Port           int    `mapstructure:"port" yaml:"port"`
	User           string `mapstructure:"user" yaml:"user"`
	Password       string `mapstructure:"password" yaml:"password"`
	Database       string `mapstructure:"database" yaml:"database"`
}

// Defaults returns the default values for every known key. Viper only maps
// environment variables onto keys it already knows, so every key is listed.
func Defaults() map[string]any {
	return map[string]any{
		"database.type":            "sqlite",
		"database.dsn":             "./terminal_db.sqlite",
		"language":                 "en",
		"provision":                true,
		"verbose":                  false,
		"shell.max_attempts":       3,
		"shell.login_delay":        "1s",
		"shell.history_file":       "",
		"snapshot.tool":            "",
		"snapshot.dir":             ".",
		"snapshot.compress":        false,
		"snapshot.dump_command":    "mysqldump",
		"snapshot.restore_command": "mysql",
		"snapshot.host":            "",
		"snapshot.port":            0,
		"snapshot.user":            "",
		"snapshot.password":        "",
		"snapshot.database":        "",
	}
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch RuntimeOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "dbterm")
		default: // Linux, macOS, etc.
			configDir = "/etc/dbterm"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "dbterm")
	}

	return filepath.Join(configDir, "dbterm.yaml"), nil
}

// LoadConfig resolves the configuration from defaults, config file,
// environment (DBTERM_*) and the flags of cmd, in increasing precedence.
//
// When no config file was found the returned value is still fully populated
// and the error is a viper.ConfigFileNotFoundError, so callers can decide to
// write a default file.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additionalConfigFilePath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("dbterm")
	v.SetConfigType("yaml")

	// An explicit --config path has the highest precedence for file-based
	// configuration. A zero-length file counts as missing.
	if additionalConfigFilePath != nil {
		if st, err := os.Stat(*additionalConfigFilePath); err == nil && st.Size() == 0 {
			additionalConfigFilePath = nil
		} else {
			v.SetConfigFile(*additionalConfigFilePath)
		}
	}

	if additionalConfigFilePath == nil {
		if userConfigPath, err := GetConfigPath(false); err == nil {
			v.AddConfigPath(filepath.Dir(userConfigPath))
		}
		if systemConfigPath, err := GetConfigPath(true); err == nil {
			v.AddConfigPath(filepath.Dir(systemConfigPath))
		}
		v.AddConfigPath(".")
	}

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
		notFound = err
	} else if used := v.ConfigFileUsed(); used != "" {
		if st, err := os.Stat(used); err == nil && st.Size() == 0 {
			notFound = viper.ConfigFileNotFoundError{}
		}
	}

	v.SetEnvPrefix("dbterm")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)

	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, notFound
}

// WriteConfigFile persists c to the user (or system) config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}
	return writeYAML(path, c)
}

// Save writes the current global viper settings to the user config path.
func Save() error {
	path, err := GetConfigPath(false)
	if err != nil {
		return err
	}
	return writeYAML(path, viper.AllSettings())
}

func writeYAML(path string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the file may carry database credentials.
	return os.WriteFile(path, data, 0600)
}
