package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	suggestionsJSON  bool
	suggestionsScope string
)

var suggestionsCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "List stored suggestions and their feedback",
	Long: `List previously generated suggestions with their ids, so feedback can
be recorded against them.

Examples:
  recall suggestions              # Suggestions for the current project
  recall suggestions --scope ""   # Suggestions across all projects
  recall feedback 42 --accept     # Then record feedback by id`,
	Args: cobra.NoArgs,
	RunE: runSuggestions,
}

func init() {
	suggestionsCmd.Flags().BoolVar(&suggestionsJSON, "json", false, "output suggestions as JSON")
	suggestionsCmd.Flags().StringVar(&suggestionsScope, "scope", ".", "project path to list (\"\" = all projects)")

	rootCmd.AddCommand(suggestionsCmd)
}

type storedSuggestionOutput struct {
	ID             int64   `json:"id"`
	Command        string  `json:"command"`
	Project        string  `json:"project"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"reason,omitempty"`
	TimesAccepted  int     `json:"times_accepted"`
	TimesRejected  int     `json:"times_rejected"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

type suggestionsResponse struct {
	Suggestions []storedSuggestionOutput `json:"suggestions"`
	Total       int                      `json:"total"`
}

func runSuggestions(cmd *cobra.Command, args []string) error {
	cfg, logger, st, err := setup()
	if err != nil {
		return err
	}
	defer st.Close()

	scope := suggestionsScope
	if scope == "." {
		if scope, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to resolve working directory: %w", err)
		}
	}

	eng := newEngine(cfg, logger, st)
	stored, err := eng.StoredSuggestions(cmd.Context(), scope)
	if err != nil {
		return fmt.Errorf("failed to load suggestions: %w", err)
	}

	if suggestionsJSON {
		resp := suggestionsResponse{
			Suggestions: make([]storedSuggestionOutput, len(stored)),
			Total:       len(stored),
		}
		for i, rec := range stored {
			out := storedSuggestionOutput{
				ID:             rec.ID,
				Command:        rec.SuggestedCommand,
				Project:        rec.ProjectPath,
				Confidence:     rec.Confidence,
				TimesAccepted:  rec.TimesAccepted,
				TimesRejected:  rec.TimesRejected,
				AcceptanceRate: rec.AcceptanceRate(),
			}
			if rec.Reason != nil {
				out.Reason = *rec.Reason
			}
			resp.Suggestions[i] = out
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		return enc.Encode(resp)
	}

	if len(stored) == 0 {
		fmt.Println(dimStyle.Render("No stored suggestions; run 'recall suggest' first."))
		return nil
	}

	for _, rec := range stored {
		fmt.Printf("  %s %s %s\n",
			dimStyle.Render(fmt.Sprintf("#%d", rec.ID)),
			commandStyle.Render(rec.SuggestedCommand),
			dimStyle.Render(fmt.Sprintf("(%.0f%%, %d accepted / %d rejected)",
				rec.Confidence*100, rec.TimesAccepted, rec.TimesRejected)),
		)
		if rec.Reason != nil {
			fmt.Printf("     %s\n", dimStyle.Render(*rec.Reason))
		}
	}
	return nil
}
