package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/recall-sh/recall/internal/store"
)

var (
	feedbackAccept bool
	feedbackReject bool
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <suggestion-id>",
	Short: "Record feedback on a suggestion",
	Long: `Mark a stored suggestion as accepted or rejected. Feedback shapes
the acceptance rate used in future scoring.

Examples:
  recall feedback 42 --accept
  recall feedback 42 --reject`,
	Args: cobra.ExactArgs(1),
	RunE: runFeedback,
}

func init() {
	feedbackCmd.Flags().BoolVar(&feedbackAccept, "accept", false, "mark the suggestion as accepted")
	feedbackCmd.Flags().BoolVar(&feedbackReject, "reject", false, "mark the suggestion as rejected")
	feedbackCmd.MarkFlagsOneRequired("accept", "reject")
	feedbackCmd.MarkFlagsMutuallyExclusive("accept", "reject")

	rootCmd.AddCommand(feedbackCmd)
}

func runFeedback(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid suggestion id %q", args[0])
	}

	_, _, st, err := setup()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.RecordFeedback(cmd.Context(), id, feedbackAccept); err != nil {
		if errors.Is(err, store.ErrSuggestionNotFound) {
			return fmt.Errorf("no suggestion with id %d", id)
		}
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	sug, err := st.SuggestionByID(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to reload suggestion: %w", err)
	}
	fmt.Printf("Recorded. %s now at %.0f%% acceptance.\n",
		commandStyle.Render(sug.SuggestedCommand), sug.AcceptanceRate()*100)
	return nil
}
