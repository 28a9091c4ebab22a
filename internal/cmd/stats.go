package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history store statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output stats as JSON")

	rootCmd.AddCommand(statsCmd)
}

type statsResponse struct {
	Commands    int64 `json:"commands"`
	Patterns    int64 `json:"patterns"`
	Suggestions int64 `json:"suggestions"`
}

func runStats(cmd *cobra.Command, args []string) error {
	_, _, st, err := setup()
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	if statsJSON {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(statsResponse{
			Commands:    stats.TotalCommands,
			Patterns:    stats.TotalPatterns,
			Suggestions: stats.TotalSuggestions,
		})
	}

	fmt.Println(headingStyle.Render("recall store"))
	fmt.Printf("  commands:    %d\n", stats.TotalCommands)
	fmt.Printf("  patterns:    %d\n", stats.TotalPatterns)
	fmt.Printf("  suggestions: %d\n", stats.TotalSuggestions)
	return nil
}
