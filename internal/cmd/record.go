package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recall-sh/recall/internal/record"
	"github.com/recall-sh/recall/internal/shellctx"
)

var (
	recordProject    bool
	recordExitCode   int
	recordDurationMs int64
)

var recordCmd = &cobra.Command{
	Use:   "record <command>",
	Short: "Record a command execution",
	Long: `Record a command into the history store. Commands carrying secrets
are refused; navigation noise (ls, cd, pwd, ...) is silently skipped.

Typically wired into a shell hook:
  recall record -- "$(fc -ln -1)"

Examples:
  recall record "git status"
  recall record --exit-code 1 --duration-ms 230 "go test ./..."`,
	Args: cobra.ExactArgs(1),
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().BoolVar(&recordProject, "project", true, "scope the command to the detected project root")
	recordCmd.Flags().IntVar(&recordExitCode, "exit-code", -1, "exit code of the command (-1 = unknown)")
	recordCmd.Flags().Int64Var(&recordDurationMs, "duration-ms", -1, "execution time in milliseconds (-1 = unknown)")

	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	_, logger, st, err := setup()
	if err != nil {
		return err
	}
	defer st.Close()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	projectPath := cwd
	if recordProject {
		projectPath = shellctx.DetectProjectRoot(cwd)
	}

	ev := record.Event{
		Command:     args[0],
		ProjectPath: projectPath,
	}
	if recordExitCode >= 0 {
		code := recordExitCode
		ev.ExitCode = &code
	}
	if recordDurationMs >= 0 {
		ms := recordDurationMs
		ev.ExecutionTimeMs = &ms
	}

	recorder := record.NewRecorder(st, logger)
	if _, err := recorder.Record(cmd.Context(), ev); err != nil {
		if errors.Is(err, record.ErrIgnored) {
			return nil
		}
		return err
	}
	return nil
}
