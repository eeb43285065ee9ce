package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/media-workflow/internal/types"
)

var (
	editHeadline string
	editPriority int
	editCategory string
	editAssignee string
	editLink     string
	editFeedback string
	editSummary  string
	editFormats  string
	editComment  string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit fields of a work item",
	Long:  "Edit the fields of one work item. Only the flags given are changed; use move to change the stage.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	f := editCmd.Flags()
	f.StringVar(&editHeadline, "headline", "", "New headline")
	f.IntVar(&editPriority, "priority", 0, "New priority from 1 to 10")
	f.StringVar(&editCategory, "category", "", "New category: Trust, Update or Policy")
	f.StringVar(&editAssignee, "assignee", "", "New assignee")
	f.StringVar(&editLink, "link", "", "Live link of the published piece")
	f.StringVar(&editFeedback, "feedback", "", "Reviewer feedback")
	f.StringVar(&editSummary, "summary", "", "New summary")
	f.StringVar(&editFormats, "formats", "", "Replace media formats (comma-separated)")
	f.StringVar(&editComment, "comment", "", "Append a comment")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	patch := buildPatch(cmd)

	a, err := openApp(cmd.Context(), appOptions{tracker: true})
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.tracker.Edit(cmd.Context(), args[0], patch)
	return reportCommand(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], result, err)
}

// buildPatch sets only the fields whose flags were given
func buildPatch(cmd *cobra.Command) types.Patch {
	var patch types.Patch
	changed := cmd.Flags().Changed
	if changed("headline") {
		patch.Headline = &editHeadline
	}
	if changed("priority") {
		patch.Priority = &editPriority
	}
	if changed("category") {
		category := types.Category(editCategory)
		if c, ok := types.ParseCategory(editCategory); ok {
			category = c
		}
		patch.Category = &category
	}
	if changed("assignee") {
		patch.Assignee = &editAssignee
	}
	if changed("link") {
		patch.LiveLink = &editLink
	}
	if changed("feedback") {
		patch.Feedback = &editFeedback
	}
	if changed("summary") {
		patch.Summary = &editSummary
	}
	if changed("formats") {
		patch.SuggestedFormats = splitList(editFormats)
		if patch.SuggestedFormats == nil {
			patch.SuggestedFormats = []string{}
		}
	}
	if changed("comment") {
		patch.AddComment = &editComment
	}
	return patch
}
