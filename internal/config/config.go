package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds every setting used by the versioning binaries.
type Config struct {
	// LogLevel is the minimum level for application logs.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error fatal"`
	// Store selects and configures the Version Record storage.
	Store StoreConfig `yaml:"store"`
	// Server configures the status endpoints.
	Server ServerConfig `yaml:"server"`
	// Formats configures the locale format checker and the format registry.
	Formats FormatsConfig `yaml:"formats"`
	// Updater configures the update manager.
	Updater UpdaterConfig `yaml:"updater"`
}

// StoreConfig describes where the Version Record lives.
type StoreConfig struct {
	// Kind is "sql" for a database or "file" for a local JSON file.
	Kind string `yaml:"kind" validate:"oneof=sql file"`
	// Driver is the SQL dialect used when Kind is "sql".
	Driver string `yaml:"driver" validate:"required_if=Kind sql,omitempty,oneof=sqlite postgres mysql sqlserver"`
	// DSN is the data source name passed to the driver.
	DSN string `yaml:"dsn" validate:"required_if=Kind sql"`
	// Path is the JSON file used when Kind is "file".
	Path string `yaml:"path" validate:"required_if=Kind file"`
	// SQLLogLevel is the level at which SQL statements are traced.
	SQLLogLevel string `yaml:"sql_log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// ServerConfig describes the gRPC and HTTP status endpoints.
type ServerConfig struct {
	// GRPCAddress is the listen address of the gRPC VersionService.
	GRPCAddress string `yaml:"grpc_address" validate:"omitempty,hostname_port"`
	// HTTPAddress is the listen address of the HTTP API.
	HTTPAddress string `yaml:"http_address" validate:"omitempty,hostname_port"`
	// Timeout bounds client calls against a running server.
	Timeout time.Duration `yaml:"timeout"`
	// ShutdownTimeout bounds graceful shutdown of the servers.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// FormatsConfig mirrors the global number format settings of the application.
type FormatsConfig struct {
	// Languages are the language codes checked by default.
	Languages []string `yaml:"languages" validate:"dive,required"`
	// Provider selects the CLDR symbol source: "playground" or "text".
	Provider string `yaml:"provider" validate:"oneof=playground text"`
	// DecimalSeparator is the fallback decimal separator.
	DecimalSeparator string `yaml:"decimal_separator"`
	// ThousandSeparator is the fallback digit group separator.
	ThousandSeparator string `yaml:"thousand_separator"`
	// NumberGrouping is the fallback group size; 0 disables grouping.
	NumberGrouping int `yaml:"number_grouping" validate:"gte=0"`
	// UseThousandSeparator enables grouping in formatted numbers.
	UseThousandSeparator bool `yaml:"use_thousand_separator"`
	// ExtraFile is an optional YAML file with additional per-locale formats.
	ExtraFile string `yaml:"extra_file"`
}

// UpdaterConfig configures the update manager.
type UpdaterConfig struct {
	// MarkerFile marks a running update to prevent concurrent runs.
	MarkerFile string `yaml:"marker_file"`
	// ReloadProcesses are executable names signalled after a successful run.
	ReloadProcesses []string `yaml:"reload_processes"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "sweetmoney-settings.yaml"

	// EnvConfigPath overrides the settings path when set.
	EnvConfigPath = "SWEETMONEY_CONFIG"

	// DefaultVersionFilename is the default JSON file for the file store.
	DefaultVersionFilename = "sweetmoney-version.json"

	// DefaultDatabaseFilename is the default SQLite database.
	DefaultDatabaseFilename = "sweetmoney.db"

	// DefaultMarkerFilename is the default update marker file.
	DefaultMarkerFilename = "sweetmoney-update.marker"

	// DefaultGRPCAddress is the default gRPC listen address.
	DefaultGRPCAddress = "127.0.0.1:50061"

	// DefaultHTTPAddress is the default HTTP listen address.
	DefaultHTTPAddress = "127.0.0.1:8061"

	// DefaultTimeout is the default duration for client calls.
	DefaultTimeout = 5 * time.Second

	// DefaultShutdownTimeout is the default graceful shutdown duration.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// validate is shared because validator caches struct metadata.
//
//nolint:gochecknoglobals // validator.Validate is safe for concurrent use and meant to be reused.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := new(Config)
	applyDefaults(cfg)

	return cfg
}

// ResolvePath returns the settings path: explicit value, then environment, then default.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}

	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return env
	}

	return DefaultConfigFilename
}

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	contents, err := os.ReadFile(filepath.Clean(ResolvePath(path)))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions: the DSN may contain credentials.
	if err := os.WriteFile(filepath.Clean(ResolvePath(path)), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the settings.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	return nil
}

// applyDefaults sets every unset field to its default.
//
//nolint:cyclop // A flat list of defaults reads better than helpers.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.Store.Kind == "" {
		cfg.Store.Kind = "sql"
	}

	if cfg.Store.Kind == "sql" && cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}

	if cfg.Store.Kind == "sql" && cfg.Store.Driver == "sqlite" && cfg.Store.DSN == "" {
		cfg.Store.DSN = DefaultDatabaseFilename
	}

	if cfg.Store.Kind == "file" && cfg.Store.Path == "" {
		cfg.Store.Path = DefaultVersionFilename
	}

	if cfg.Store.SQLLogLevel == "" {
		cfg.Store.SQLLogLevel = "warn"
	}

	if cfg.Server.GRPCAddress == "" {
		cfg.Server.GRPCAddress = DefaultGRPCAddress
	}

	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = DefaultHTTPAddress
	}

	if cfg.Server.Timeout <= 0 {
		cfg.Server.Timeout = DefaultTimeout
	}

	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if len(cfg.Formats.Languages) == 0 {
		cfg.Formats.Languages = []string{"en-us", "pt-br"}
	}

	if cfg.Formats.Provider == "" {
		cfg.Formats.Provider = "playground"
	}

	if cfg.Formats.DecimalSeparator == "" {
		cfg.Formats.DecimalSeparator = "."
	}

	if cfg.Formats.ThousandSeparator == "" {
		cfg.Formats.ThousandSeparator = ","
	}

	if cfg.Updater.MarkerFile == "" {
		cfg.Updater.MarkerFile = DefaultMarkerFilename
	}
}
