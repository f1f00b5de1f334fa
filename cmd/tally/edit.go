package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/tally"
)

// recordFlags are shared by add and edit.
type recordFlags struct {
	name      string
	status    string
	priority  string
	goals     string
	notes     string
	assigned  string
	completed string
}

func (f *recordFlags) register(fs *pflag.FlagSet, withName bool) {
	if withName {
		fs.StringVar(&f.name, "name", "", "Project name")
	}
	fs.StringVar(&f.status, "status", "", "not_started, in_progress, completed, blocked or on_hold")
	fs.StringVar(&f.priority, "priority", "", "low, medium, high or urgent")
	fs.StringVar(&f.goals, "goals", "", "Goals text")
	fs.StringVar(&f.notes, "notes", "", "Notes text")
	fs.StringVar(&f.assigned, "assigned", "", "Assigned date (YYYY-MM-DD, empty to clear)")
	fs.StringVar(&f.completed, "completed", "", "Completed date (YYYY-MM-DD, empty to clear)")
}

// apply copies every flag the user set onto r.
func (f *recordFlags) apply(fs *pflag.FlagSet, r *core.Record) error {
	if fs.Changed("name") {
		r.Name = f.name
	}
	if fs.Changed("status") {
		r.Status = core.Status(f.status)
	}
	if fs.Changed("priority") {
		r.Priority = core.Priority(f.priority)
	}
	if fs.Changed("goals") {
		r.Goals = f.goals
	}
	if fs.Changed("notes") {
		r.Notes = f.notes
	}
	if fs.Changed("assigned") {
		d, err := optionalDate(f.assigned)
		if err != nil {
			return err
		}
		r.Assigned = d
	}
	if fs.Changed("completed") {
		d, err := optionalDate(f.completed)
		if err != nil {
			return err
		}
		r.Completed = d
	}
	return nil
}

func optionalDate(s string) (*core.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &d, nil
}

var addFlags recordFlags

var addCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := core.NewRecord("", args[0])
		if err := addFlags.apply(cmd.Flags(), &r); err != nil {
			return err
		}

		return withStore(cmd.Context(), func(store *tally.Store) error {
			added, err := store.Add(r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), added.ID)
			return nil
		})
	},
}

var editFlags recordFlags

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change fields of a project",
	Long:  `Edit changes only the fields given as flags. Dates can be cleared with an empty value.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var probe core.Record
		if err := editFlags.apply(cmd.Flags(), &probe); err != nil {
			return err
		}

		return withStore(cmd.Context(), func(store *tally.Store) error {
			return store.Mutate(args[0], func(r *core.Record) {
				// Flags were validated above; dates parse the same way twice.
				_ = editFlags.apply(cmd.Flags(), r)
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addFlags.register(addCmd.Flags(), false)

	rootCmd.AddCommand(editCmd)
	editFlags.register(editCmd.Flags(), true)
}
