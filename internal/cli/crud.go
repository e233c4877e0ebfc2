// Commands mapping to the store's record operations.

package cli

import (
	"errors"
	"io"

	"github.com/maruel/jsondb"
	"github.com/spf13/cobra"
)

var errFilterOrID = errors.New("pass either a filter or --id, not both")

func newInsertCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <json|->",
		Short: "Insert a record or an array of records",
		Long: `Insert a JSON object, or every object of a JSON array. Use - to read
from stdin. Each record is assigned a new _id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := []byte(args[0])
			if args[0] == "-" {
				var err error
				if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			s, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			recs, err := s.Insert(data)
			if err != nil {
				return err
			}
			return opts.print(cmd, recs)
		},
	}
}

func newFindCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find [filter]",
		Short: "List records matching a filter, or all records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter map[string]any
			if len(args) == 1 {
				var err error
				if filter, err = parseObject("filter", args[0]); err != nil {
					return err
				}
			}
			s, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			recs, err := s.Find(filter)
			if err != nil {
				return err
			}
			return opts.print(cmd, recs)
		},
	}
}

func newFindOneCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find-one <filter>",
		Short: "Print the first record matching a filter, or null",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseObject("filter", args[0])
			if err != nil {
				return err
			}
			s, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			rec, err := s.FindOne(filter)
			if err != nil {
				return err
			}
			return opts.print(cmd, rec)
		},
	}
}

func newGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print the record with the given _id, or null",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			return opts.print(cmd, s.FindByID(args[0]))
		},
	}
}

// targetFlags selects records either by filter argument or by --id.
type targetFlags struct {
	id   string
	many bool
}

func (t *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.id, "id", "", "select the record with this _id instead of a filter")
	cmd.Flags().BoolVar(&t.many, "many", false, "apply to every matching record instead of the first")
}

// split returns the filter and the payload from the arguments.
func (t *targetFlags) split(args []string, payloadName string) (jsondb.Filter, map[string]any, error) {
	if t.id != "" {
		if len(args) != 1 {
			return nil, nil, errFilterOrID
		}
		payload, err := parseObject(payloadName, args[0])
		return nil, payload, err
	}
	if len(args) != 2 {
		return nil, nil, errors.New("expected <filter> <" + payloadName + ">")
	}
	filter, err := parseObject("filter", args[0])
	if err != nil {
		return nil, nil, err
	}
	payload, err := parseObject(payloadName, args[1])
	return filter, payload, err
}

func newUpdateCommand(opts *RootOptions) *cobra.Command {
	t := &targetFlags{}
	cmd := &cobra.Command{
		Use:   "update [filter] <patch>",
		Short: "Merge a patch into matching records",
		Long: `Merge the fields of a patch into the first record matching the filter,
into every matching record with --many, or into the record selected with
--id. Prints the updated records.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, patch, err := t.split(args, "patch")
			if err != nil {
				return err
			}
			s, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			var out any
			switch {
			case t.id != "":
				out, err = s.FindByIDAndUpdate(t.id, patch)
			case t.many:
				out, err = s.FindManyAndUpdate(filter, patch)
			default:
				out, err = s.FindOneAndUpdate(filter, patch)
			}
			if err != nil {
				return err
			}
			return opts.print(cmd, out)
		},
	}
	t.register(cmd)
	return cmd
}

func newReplaceCommand(opts *RootOptions) *cobra.Command {
	t := &targetFlags{}
	cmd := &cobra.Command{
		Use:   "replace [filter] <record>",
		Short: "Overwrite matching records, keeping their _id",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, rec, err := t.split(args, "record")
			if err != nil {
				return err
			}
			s, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			var out any
			switch {
			case t.id != "":
				out, err = s.FindByIDAndReplace(t.id, rec)
			case t.many:
				out, err = s.FindManyAndReplace(filter, rec)
			default:
				out, err = s.FindOneAndReplace(filter, rec)
			}
			if err != nil {
				return err
			}
			return opts.print(cmd, out)
		},
	}
	t.register(cmd)
	return cmd
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	t := &targetFlags{}
	cmd := &cobra.Command{
		Use:   "delete [filter]",
		Short: "Delete matching records and print them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (t.id != "") == (len(args) == 1) {
				return errFilterOrID
			}
			s, err := opts.open(cmd, false)
			if err != nil {
				return err
			}
			var out any
			if t.id != "" {
				out, err = s.FindByIDAndDelete(t.id)
			} else {
				filter, perr := parseObject("filter", args[0])
				if perr != nil {
					return perr
				}
				if t.many {
					out, err = s.FindManyAndDelete(filter)
				} else {
					out, err = s.FindOneAndDelete(filter)
				}
			}
			if err != nil {
				return err
			}
			return opts.print(cmd, out)
		},
	}
	t.register(cmd)
	return cmd
}

func newCountCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			return opts.print(cmd, map[string]int{"count": s.Count()})
		},
	}
}

func newSizeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Print the size of the database file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			n, err := s.Size()
			if err != nil {
				return err
			}
			human, err := s.DBSize()
			if err != nil {
				return err
			}
			return opts.print(cmd, map[string]any{"bytes": n, "size": human})
		},
	}
}

func newSchemaCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print a JSON Schema inferred from the stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			return opts.print(cmd, s.Schema())
		},
	}
}
