// Package cli implements the jsondb command line.
package cli

import (
	"log/slog"

	"github.com/maruel/jsondb"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config
	// ConfigPath is the optional YAML file loaded before flags apply.
	ConfigPath string

	level *slog.LevelVar
}

// NewRootCommand creates the root command. level, when not nil, is set from
// the resolved log level before any subcommand runs.
func NewRootCommand(level *slog.LevelVar) *cobra.Command {
	opts := &RootOptions{Config: DefaultConfig(), level: level}

	cmd := &cobra.Command{
		Use:   "jsondb",
		Short: "Query and edit a JSON document database file",
		Long: `jsondb reads and writes a single-file JSON document database.

Filters, patches and records are JSON objects. A filter matches records
whose top-level fields strictly equal every value it lists.

Examples:
  jsondb --db ./data/db.json insert '{"name":"a","age":1}'
  jsondb --db ./data/db.json find '{"name":"a"}'
  jsondb --db ./data/db.json update '{"name":"a"}' '{"age":2}'`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	pf.StringVar(&opts.DB, "db", opts.DB, "database file")
	pf.StringVar(&opts.Format, "format", opts.Format, "output format (json|yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&opts.ID, "id-gen", opts.ID, "identifier generator for inserts (ksid|uuid)")
	pf.StringVar(&opts.HistoryDir, "history-dir", "", "git repository for snapshots (default: the database directory)")

	cmd.AddCommand(newInsertCommand(opts))
	cmd.AddCommand(newFindCommand(opts))
	cmd.AddCommand(newFindOneCommand(opts))
	cmd.AddCommand(newGetCommand(opts))
	cmd.AddCommand(newUpdateCommand(opts))
	cmd.AddCommand(newReplaceCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newCountCommand(opts))
	cmd.AddCommand(newSizeCommand(opts))
	cmd.AddCommand(newSchemaCommand(opts))
	cmd.AddCommand(newWatchCommand(opts))
	cmd.AddCommand(newSnapshotCommand(opts))
	cmd.AddCommand(newHistoryCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

// resolve merges the config file under explicitly set flags and validates.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if o.ConfigPath != "" {
		cfg, err := LoadConfig(o.ConfigPath)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if !flags.Changed("db") {
			o.DB = cfg.DB
		}
		if !flags.Changed("format") {
			o.Format = cfg.Format
		}
		if !flags.Changed("log-level") {
			o.LogLevel = cfg.LogLevel
		}
		if !flags.Changed("id-gen") {
			o.ID = cfg.ID
		}
		if !flags.Changed("history-dir") {
			o.HistoryDir = cfg.HistoryDir
		}
	}
	if err := o.Validate(); err != nil {
		return err
	}
	if o.level != nil {
		lvl, _ := parseLevel(o.LogLevel)
		o.level.Set(lvl)
	}
	return nil
}

// open connects to the database. Read-only commands never create the file.
func (o *RootOptions) open(cmd *cobra.Command, readOnly bool) (*jsondb.Store, error) {
	ids, _ := jsondb.IDGeneratorByName(o.ID)
	opts := []jsondb.Option{jsondb.WithIDGenerator(ids)}
	if readOnly {
		opts = append(opts, jsondb.WithReadOnly())
	}
	s, status, err := jsondb.Connect(o.DB, opts...)
	if err != nil {
		return nil, err
	}
	if status == jsondb.StatusCreated {
		slog.InfoContext(cmd.Context(), "Created database", "db", o.DB)
	}
	return s, nil
}

func (o *RootOptions) print(cmd *cobra.Command, v any) error {
	return write(cmd.OutOrStdout(), o.Format, v)
}
