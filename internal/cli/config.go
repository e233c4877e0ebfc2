// Loads CLI defaults from an optional YAML file.

package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/maruel/jsondb"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by every command.
//
// Values come from the YAML file named by --config, then flags explicitly
// set on the command line override them.
type Config struct {
	// DB is the path of the database file.
	DB string `yaml:"db"`
	// Format is the output format: json or yaml.
	Format string `yaml:"format"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
	// ID names the identifier generator: ksid or uuid.
	ID string `yaml:"id"`
	// HistoryDir is the git repository holding snapshots. Empty means the
	// database file's directory.
	HistoryDir string `yaml:"history_dir"`
}

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{"json", "yaml"}

var errDBRequired = errors.New("db path is required")

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DB:       "./data/db.json",
		Format:   "json",
		LogLevel: "info",
		ID:       "ksid",
	}
}

// LoadConfig reads path over the defaults. Fields absent from the file keep
// their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the --config flag.
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every field holds a supported value.
func (c *Config) Validate() error {
	if c.DB == "" {
		return errDBRequired
	}
	if !slices.Contains(ValidFormats, c.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, ok := jsondb.IDGeneratorByName(c.ID); !ok {
		return fmt.Errorf("unknown id generator %q: must be ksid or uuid", c.ID)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", s)
	}
}
