package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oaiiae/addressbook/addressbook"
	"github.com/oaiiae/addressbook/client"
	"github.com/oaiiae/addressbook/reconciler"
	"github.com/oaiiae/addressbook/spreadsheet"
	"github.com/oaiiae/addressbook/tui"
)

// recordFlags adds one flag per record field.
func recordFlags(cmd *cobra.Command) {
	for _, name := range addressbook.Fields {
		cmd.Flags().String(name, "", "value of the "+name+" field")
	}
}

// applyFlags copies the field flags that were set into r and reports whether any was.
func applyFlags(cmd *cobra.Command, r *addressbook.Record) bool {
	var set bool
	for _, name := range addressbook.Fields {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*r.Field(name) = f.Value.String()
			set = true
		}
	}
	return set
}

func addCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an entry",
		Long: `Add an entry from the field flags, or from a form when no flag is given
and the terminal is interactive.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := env.bind(cmd); err != nil {
				return err
			}
			var r addressbook.Record
			if !applyFlags(cmd, &r) && env.interactive() {
				if err := tui.Edit(cmd.Context(), "New entry", &r); err != nil {
					return err
				}
			}
			return env.reconciler().Submit(cmd.Context(), r, func() { env.Logger.Debug("add form reset") })
		},
	}
	recordFlags(cmd)
	return cmd
}

func editCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <key>",
		Short: "Change an entry, keeping its key",
		Long: `Change the fields given as flags, or every field through a form when no
flag is given and the terminal is interactive. The entry keeps its key even
when its names change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.bind(cmd); err != nil {
				return err
			}
			key := args[0]
			r, err := env.client().Get(cmd.Context(), key)
			if errors.Is(err, client.ErrNotFound) {
				env.notifier().Alert(fmt.Sprintf("no entry %q", key), nil)
				return err
			} else if err != nil {
				env.notifier().Alert("load failed", err)
				return err
			}
			if !applyFlags(cmd, &r) && env.interactive() {
				if err = tui.Edit(cmd.Context(), "Entry "+key, &r); err != nil {
					return err
				}
			}
			if err = r.Validate(); err != nil {
				env.notifier().Alert("please fill in all required fields", err)
				return err
			}
			return env.reconciler().Update(cmd.Context(), key, r)
		},
	}
	recordFlags(cmd)
	return cmd
}

func deleteCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.bind(cmd); err != nil {
				return err
			}
			err := env.reconciler().Delete(cmd.Context(), args[0])
			if errors.Is(err, reconciler.ErrDeclined) {
				fmt.Fprintln(env.Stderr, "not deleted")
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolP(keyYes, "y", false, "delete without asking")
	return cmd
}

func (env *Env) runImport(cmd *cobra.Command, path string) error {
	rows, err := spreadsheet.Open(path)
	if err != nil {
		env.notifier().Alert("could not read "+path, err)
		return err
	}
	outcome, err := env.reconciler().Import(cmd.Context(), rows)
	fmt.Fprintf(env.Stdout, "imported %d entries, %d errors\n", outcome.Success, outcome.Errors)
	return err
}
