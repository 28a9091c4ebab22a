package shellctx

import (
	"bytes"
	"os/exec"
	"strings"
)

// currentBranch returns the checked-out branch for the repo containing cwd,
// or "" when cwd is not inside a git repository.
func currentBranch(cwd string) string {
	out, err := runGit(cwd, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return ""
	}
	return out
}

// runGit runs a git command in the given directory.
func runGit(cwd string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = cwd

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}
