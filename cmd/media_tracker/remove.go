package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/media-workflow/internal/tracker"
)

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a work item",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), appOptions{tracker: true})
	if err != nil {
		return err
	}
	defer a.Close()

	found, err := a.tracker.Remove(cmd.Context(), args[0])
	if err != nil && !tracker.IsAdvisory(err) {
		return err
	}
	if !found {
		fmt.Fprintf(cmd.OutOrStdout(), "No item with id %s\n", args[0])
		return nil
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return nil
}
