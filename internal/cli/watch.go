package cli

import (
	"context"
	"errors"
	"time"

	"github.com/maruel/jsondb"
	"github.com/spf13/cobra"
)

func newWatchCommand(opts *RootOptions) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the record count and size whenever the database file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := jsondb.Watch(cmd.Context(), opts.DB, func(s *jsondb.Store) error {
				size, err := s.Size()
				if err != nil {
					// The file may have been replaced again since the snapshot.
					size = -1
				}
				return opts.print(cmd, map[string]any{
					"time":  time.Now().Format(time.RFC3339),
					"count": s.Count(),
					"bytes": size,
				})
			}, jsondb.WithReloadInterval(interval))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 100*time.Millisecond, "minimum delay between two reports")
	return cmd
}
