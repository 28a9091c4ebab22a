package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recall-sh/recall/internal/engine"
	"github.com/recall-sh/recall/internal/shellctx"
)

var (
	analyzeJSON  bool
	analyzeScope string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Detect patterns and generate suggestions",
	Long: `Analyze recorded history: mine repeated command sequences and
frequently used tools, then generate suggestions for the current context.

Examples:
  recall analyze                  # Analyze current project
  recall analyze --scope ""       # Analyze across all projects
  recall analyze --json           # Machine-readable output`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output report as JSON")
	analyzeCmd.Flags().StringVar(&analyzeScope, "scope", ".", "project path to analyze (\"\" = all projects)")

	rootCmd.AddCommand(analyzeCmd)
}

type patternOutput struct {
	Kind        string   `json:"kind"`
	Commands    []string `json:"commands"`
	Confidence  float64  `json:"confidence"`
	Occurrences int      `json:"occurrences"`
}

type suggestionOutput struct {
	Command    string  `json:"command"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

type analyzeResponse struct {
	PatternCount    int                `json:"pattern_count"`
	SuggestionCount int                `json:"suggestion_count"`
	Patterns        []patternOutput    `json:"patterns"`
	Suggestions     []suggestionOutput `json:"suggestions"`
	Warnings        []string           `json:"warnings,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, st, err := setup()
	if err != nil {
		return err
	}
	defer st.Close()

	scope := analyzeScope
	if scope == "." {
		if scope, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to resolve working directory: %w", err)
		}
	}

	analyzer := engine.NewAnalyzerWithOptions(st, shellctx.NewDetector(), logger,
		minerOptions(cfg), engineOptions(cfg))
	report, err := analyzer.Analyze(cmd.Context(), scope)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		return writeAnalyzeJSON(report)
	}

	renderReport(report, cfg.Suggestions.ShowRiskWarning)
	return nil
}

func writeAnalyzeJSON(report *engine.AnalysisReport) error {
	resp := analyzeResponse{
		PatternCount:    report.PatternCount,
		SuggestionCount: report.SuggestionCount,
		Patterns:        make([]patternOutput, len(report.Patterns)),
		Suggestions:     make([]suggestionOutput, len(report.Suggestions)),
	}
	for i, p := range report.Patterns {
		resp.Patterns[i] = patternOutput{
			Kind:        string(p.Kind),
			Commands:    p.Commands,
			Confidence:  p.Confidence,
			Occurrences: p.Occurrences,
		}
	}
	for i, s := range report.Suggestions {
		resp.Suggestions[i] = suggestionOutput{
			Command:    s.Command,
			Reason:     s.Reason,
			Confidence: s.Confidence,
		}
	}
	for _, d := range report.Diagnostics {
		resp.Warnings = append(resp.Warnings, d.String())
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}

func renderReport(report *engine.AnalysisReport, showRisk bool) {
	fmt.Println(headingStyle.Render(fmt.Sprintf("Patterns (%d)", report.PatternCount)))
	if len(report.Patterns) == 0 {
		fmt.Println(dimStyle.Render("  none detected yet; keep recording"))
	}
	for _, p := range report.Patterns {
		fmt.Printf("  %s %s %s\n",
			dimStyle.Render(fmt.Sprintf("[%s]", p.Kind)),
			commandStyle.Render(strings.Join(p.Commands, " → ")),
			dimStyle.Render(fmt.Sprintf("(%.0f%%, seen %d times)", p.Confidence*100, p.Occurrences)),
		)
	}

	fmt.Println()
	fmt.Println(headingStyle.Render(fmt.Sprintf("Suggestions (%d)", report.SuggestionCount)))
	renderSuggestions(report.Suggestions, showRisk)

	for _, d := range report.Diagnostics {
		fmt.Println(warnStyle.Render("  warning: " + d.String()))
	}
}
