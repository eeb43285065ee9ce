package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/media-workflow/internal/observability"
	"github.com/jonathan/media-workflow/internal/tracker"
)

var (
	listStage string
	listJSON  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List work items, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show work items grouped by stage",
	Args:  cobra.NoArgs,
	RunE:  runBoard,
}

func init() {
	listCmd.Flags().StringVar(&listStage, "stage", string(tracker.StageAll), "Stage to list, or All")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print items as JSON")
	rootCmd.AddCommand(listCmd, boardCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	stage, ok := tracker.ParseFilter(listStage)
	if !ok {
		return fmt.Errorf("unknown stage %q", listStage)
	}

	a, err := openApp(cmd.Context(), appOptions{tracker: true})
	if err != nil {
		return err
	}
	defer a.Close()

	items := a.tracker.ListByStage(stage)
	if listJSON {
		return printJSON(cmd.OutOrStdout(), items)
	}
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No items")
		return nil
	}
	printItems(cmd.OutOrStdout(), items)
	return nil
}

func runBoard(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context(), appOptions{tracker: true})
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if verbose {
		observability.NewPrinter(out).PrintBoard(a.tracker.Board())
		return nil
	}
	for _, column := range a.tracker.Board() {
		fmt.Fprintf(out, "== %s (%d)\n", column.Stage, len(column.Items))
		for _, item := range column.Items {
			fmt.Fprintf(out, "  [%d] %s  %s  %s\n", item.Priority, shortID(item.ID), item.Headline, item.Assignee)
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
