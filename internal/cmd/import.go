package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recall-sh/recall/internal/record"
	"github.com/recall-sh/recall/internal/shellctx"
)

var importShell string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import existing shell history",
	Long: `Seed the store from the shell's history file. Secrets and noise
commands are filtered the same way live recording filters them.

Examples:
  recall import               # Detect shell from $SHELL
  recall import --shell zsh`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importShell, "shell", "auto", "shell history format: auto, bash, or zsh")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	_, logger, st, err := setup()
	if err != nil {
		return err
	}
	defer st.Close()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	projectPath := shellctx.DetectProjectRoot(cwd)

	recorder := record.NewRecorder(st, logger)
	n, err := recorder.ImportHistory(cmd.Context(), importShell, projectPath)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Imported %d commands.\n", n)
	return nil
}
