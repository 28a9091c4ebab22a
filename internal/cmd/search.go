package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recall-sh/recall/internal/store"
)

var (
	searchJSON  bool
	searchScope string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search recorded command history",
	Long: `Search recorded commands by substring, most used first.

Examples:
  recall search "docker run"        # Search for docker commands
  recall search --json git          # Output as JSON
  recall search --limit 50 make     # Return up to 50 results`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchScope, "scope", "", "restrict to a project path (\"\" = all projects)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum number of results")

	rootCmd.AddCommand(searchCmd)
}

type searchOutput struct {
	Command    string `json:"command"`
	Project    string `json:"project"`
	UsageCount int64  `json:"usage_count"`
	LastUsedMs int64  `json:"last_used_ms"`
}

type searchResponse struct {
	Results []searchOutput `json:"results"`
	Total   int            `json:"total"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	_, _, st, err := setup()
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := st.SearchCommands(cmd.Context(), args[0], searchScope, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return writeSearchJSON(results)
	}

	if len(results) == 0 {
		fmt.Println(dimStyle.Render("No results found."))
		return nil
	}

	for _, r := range results {
		fmt.Printf("  %s %s\n",
			commandStyle.Render(r.Command),
			dimStyle.Render(fmt.Sprintf("(used %d times)", r.UsageCount)),
		)
	}
	return nil
}

func writeSearchJSON(results []store.Command) error {
	output := make([]searchOutput, len(results))
	for i, r := range results {
		output[i] = searchOutput{
			Command:    r.Command,
			Project:    r.ProjectPath,
			UsageCount: r.UsageCount,
			LastUsedMs: r.TsUnixMs,
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(searchResponse{Results: output, Total: len(output)})
}
