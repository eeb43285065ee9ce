package main

import (
	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move <id> <stage>",
	Short: "Move a work item to another stage",
	Long:  `Move a work item to Backlog, "In Production", Reviewing or Approved. Any stage may follow any other.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

var toggleFormatCmd = &cobra.Command{
	Use:   "toggle-format <id> <label>",
	Short: "Add a media format to a work item, or remove it if present",
	Args:  cobra.ExactArgs(2),
	RunE:  runToggleFormat,
}

func init() {
	rootCmd.AddCommand(moveCmd, toggleFormatCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), appOptions{tracker: true})
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.tracker.Transition(cmd.Context(), args[0], args[1])
	return reportCommand(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], result, err)
}

func runToggleFormat(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), appOptions{tracker: true})
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.tracker.ToggleFormat(cmd.Context(), args[0], args[1])
	return reportCommand(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], result, err)
}
