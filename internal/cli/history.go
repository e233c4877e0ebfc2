// Commands for git-backed snapshots of the database file.

package cli

import (
	"path/filepath"

	"github.com/maruel/jsondb/internal/history"
	"github.com/spf13/cobra"
)

func (o *RootOptions) historyRepo() (*history.Repo, error) {
	dir := o.HistoryDir
	if dir == "" {
		dir = filepath.Dir(o.DB)
	}
	return history.Open(dir)
}

func newSnapshotCommand(opts *RootOptions) *cobra.Command {
	var msg string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Commit the current database file to the history repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Loading first refuses to snapshot a corrupt file.
			if _, err := opts.open(cmd, true); err != nil {
				return err
			}
			repo, err := opts.historyRepo()
			if err != nil {
				return err
			}
			hash, err := repo.Snapshot(cmd.Context(), opts.DB, msg)
			if err != nil {
				return err
			}
			return opts.print(cmd, map[string]any{"hash": hash, "changed": hash != ""})
		},
	}
	cmd.Flags().StringVarP(&msg, "message", "m", "", "commit message")
	return cmd
}

func newHistoryCommand(opts *RootOptions) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List snapshots of the database file, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := opts.historyRepo()
			if err != nil {
				return err
			}
			commits, err := repo.Log(cmd.Context(), opts.DB, n)
			if err != nil {
				return err
			}
			if commits == nil {
				commits = []*history.Commit{}
			}
			return opts.print(cmd, commits)
		},
	}
	cmd.Flags().IntVarP(&n, "limit", "n", 20, "maximum number of snapshots")
	return cmd
}

func newShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <hash|HEAD>",
		Short: "Print the database file as of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := opts.historyRepo()
			if err != nil {
				return err
			}
			data, err := repo.Show(cmd.Context(), args[0], opts.DB)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
