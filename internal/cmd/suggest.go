package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recall-sh/recall/internal/engine"
	"github.com/recall-sh/recall/internal/sanitize"
)

var suggestJSON bool

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest the next command for the current context",
	Long: `Generate ranked command suggestions from detected patterns, the
project type, the git branch, and the time of day.

Examples:
  recall suggest          # Human-readable suggestions
  recall suggest --json   # Machine-readable output`,
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output suggestions as JSON")

	rootCmd.AddCommand(suggestCmd)
}

type suggestResponse struct {
	Suggestions []suggestionOutput `json:"suggestions"`
	Warnings    []string           `json:"warnings,omitempty"`
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg, logger, st, err := setup()
	if err != nil {
		return err
	}
	defer st.Close()

	eng := newEngine(cfg, logger, st)
	suggestions, diags, err := eng.Generate(cmd.Context())
	if err != nil {
		return fmt.Errorf("suggestion generation failed: %w", err)
	}

	if suggestJSON {
		resp := suggestResponse{Suggestions: make([]suggestionOutput, len(suggestions))}
		for i, s := range suggestions {
			resp.Suggestions[i] = suggestionOutput{Command: s.Command, Reason: s.Reason, Confidence: s.Confidence}
		}
		for _, d := range diags {
			resp.Warnings = append(resp.Warnings, d.String())
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		return enc.Encode(resp)
	}

	if len(suggestions) == 0 {
		fmt.Println(dimStyle.Render("No suggestions yet; keep recording commands."))
		return nil
	}

	renderSuggestions(suggestions, cfg.Suggestions.ShowRiskWarning)
	for _, d := range diags {
		fmt.Println(warnStyle.Render("  warning: " + d.String()))
	}
	return nil
}

func renderSuggestions(suggestions []engine.SmartSuggestion, showRisk bool) {
	for _, s := range suggestions {
		line := fmt.Sprintf("  %s %s\n    %s",
			commandStyle.Render(s.Command),
			dimStyle.Render(fmt.Sprintf("(%.0f%%)", s.Confidence*100)),
			dimStyle.Render(s.Reason),
		)
		if showRisk && sanitize.IsDestructive(s.Command) {
			line += " " + riskStyle.Render("[destructive]")
		}
		fmt.Println(line)
	}
}
