package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Tool    ToolConfig    `mapstructure:"tool"`
	Paths   PathsConfig   `mapstructure:"paths"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ToolConfig describes the runtime being provisioned
type ToolConfig struct {
	// Name is the formatter tool and install directory name, e.g. "black".
	Name string `mapstructure:"name"`
	// Version is the pinned toolchain tag written to version.txt.
	Version string `mapstructure:"version"`
	// ArchiveURL is the download URL; "{version}" is substituted.
	ArchiveURL string `mapstructure:"archive_url"`
	// Interpreter optionally overrides the base interpreter used to create
	// the managed environment. Empty means discover python3/python on PATH.
	Interpreter string `mapstructure:"interpreter"`
	// Global uses a system-wide interpreter and tool instead of the
	// managed environment.
	Global bool `mapstructure:"global"`
	// PreferBundled resolves the server script from the install dir
	// (Paths.InstallDir) instead of the storage root.
	PreferBundled bool `mapstructure:"prefer_bundled"`
	// OnlyLSP switches the bundled script tree to the {name}.only_lsp
	// variant of the install directory.
	OnlyLSP bool `mapstructure:"only_lsp"`
	// ScriptName is the server entry point under bundled/tool/.
	ScriptName string `mapstructure:"script_name"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	// StorageRoot holds the archive, the unpacked install and the venv.
	StorageRoot string `mapstructure:"storage_root"`
	// InstallDir is the extension/installation directory used by the
	// bundled script strategy.
	InstallDir string `mapstructure:"install_dir"`
	DBFile     string `mapstructure:"db_file"`
	LogFile    string `mapstructure:"log_file"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".config", "pyruntime"))
	}
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvPrefix("PYRUNTIME")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Paths.StorageRoot = expandPath(cfg.Paths.StorageRoot)
	cfg.Paths.InstallDir = expandPath(cfg.Paths.InstallDir)
	cfg.Paths.DBFile = expandPath(cfg.Paths.DBFile)
	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)
	cfg.Tool.Interpreter = expandPath(cfg.Tool.Interpreter)

	return &cfg, nil
}

// ArchiveURLForVersion renders the archive URL for the configured version.
func (c *Config) ArchiveURLForVersion() string {
	return strings.ReplaceAll(c.Tool.ArchiveURL, "{version}", c.Tool.Version)
}

// setDefaults sets default configuration values
func setDefaults() {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		homeDir = "."
	}

	dataDir := filepath.Join(homeDir, ".local", "share", "pyruntime")

	viper.SetDefault("tool.name", "black")
	viper.SetDefault("tool.version", "24.8.0")
	viper.SetDefault("tool.archive_url", "https://github.com/psf/black/archive/refs/tags/{version}.zip")
	viper.SetDefault("tool.interpreter", "")
	viper.SetDefault("tool.global", false)
	viper.SetDefault("tool.prefer_bundled", false)
	viper.SetDefault("tool.only_lsp", false)
	viper.SetDefault("tool.script_name", "lsp_server.py")

	viper.SetDefault("paths.storage_root", dataDir)
	viper.SetDefault("paths.install_dir", "")
	viper.SetDefault("paths.db_file", filepath.Join(dataDir, "history.db"))
	viper.SetDefault("paths.log_file", filepath.Join(dataDir, "pyruntime.log"))

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.color", "auto")
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	path = os.ExpandEnv(path)

	return path
}
