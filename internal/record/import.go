package record

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxImportEntries caps how many history entries one import run will feed
// into the store.
const maxImportEntries = 10000

// ImportEntry is one parsed shell-history line.
type ImportEntry struct {
	Command  string
	TsUnixMs int64 // 0 when the history file carries no timestamps
}

// ParseBashHistory parses bash history: one command per line, optionally
// preceded by a #<unix_ts> marker when HISTTIMEFORMAT is set.
func ParseBashHistory(r io.Reader) ([]ImportEntry, error) {
	scanner := newHistoryScanner(r)

	var entries []ImportEntry
	var pendingTs int64

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if ts, err := strconv.ParseInt(line[1:], 10, 64); err == nil {
				pendingTs = ts * 1000
				continue
			}
		}
		entries = append(entries, ImportEntry{Command: line, TsUnixMs: pendingTs})
		pendingTs = 0
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lastN(entries, maxImportEntries), nil
}

// ParseZshHistory parses zsh history, including the extended format
// `: <timestamp>:<duration>;<command>`. Backslash-continued commands are
// joined into one entry.
func ParseZshHistory(r io.Reader) ([]ImportEntry, error) {
	scanner := newHistoryScanner(r)

	var entries []ImportEntry
	var pendingTs int64
	var partial strings.Builder

	flush := func(cmd string) {
		if cmd == "" {
			return
		}
		entries = append(entries, ImportEntry{Command: cmd, TsUnixMs: pendingTs})
		pendingTs = 0
	}

	for scanner.Scan() {
		line := scanner.Text()

		if partial.Len() > 0 {
			if strings.HasSuffix(line, `\`) {
				partial.WriteString(line[:len(line)-1])
				partial.WriteString("\n")
				continue
			}
			partial.WriteString(line)
			flush(partial.String())
			partial.Reset()
			continue
		}

		cmd := line
		if strings.HasPrefix(line, ": ") {
			if idx := strings.Index(line, ";"); idx != -1 {
				meta := line[2:idx]
				if colon := strings.Index(meta, ":"); colon != -1 {
					if ts, err := strconv.ParseInt(meta[:colon], 10, 64); err == nil {
						pendingTs = ts * 1000
					}
				}
				cmd = line[idx+1:]
			}
		}

		if strings.HasSuffix(cmd, `\`) {
			partial.WriteString(cmd[:len(cmd)-1])
			partial.WriteString("\n")
			continue
		}
		flush(cmd)
	}
	if partial.Len() > 0 {
		flush(strings.TrimSuffix(partial.String(), "\n"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lastN(entries, maxImportEntries), nil
}

// DetectShell resolves the current shell name from $SHELL.
func DetectShell() string {
	switch filepath.Base(os.Getenv("SHELL")) {
	case "bash":
		return "bash"
	case "zsh":
		return "zsh"
	default:
		return ""
	}
}

// historyPath returns the default history file for a shell. HISTFILE
// overrides both.
func historyPath(shell string) string {
	if histFile := os.Getenv("HISTFILE"); histFile != "" {
		return histFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch shell {
	case "bash":
		return filepath.Join(home, ".bash_history")
	case "zsh":
		return filepath.Join(home, ".zsh_history")
	}
	return ""
}

// ImportHistory parses the shell's history file and records every entry
// against projectPath. Shell may be "bash", "zsh", or "auto". Missing
// history files import zero entries. Returns the number recorded.
func (r *Recorder) ImportHistory(ctx context.Context, shell, projectPath string) (int, error) {
	if shell == "auto" || shell == "" {
		shell = DetectShell()
	}

	path := historyPath(shell)
	if path == "" {
		return 0, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer file.Close()

	var entries []ImportEntry
	switch shell {
	case "bash":
		entries, err = ParseBashHistory(file)
	case "zsh":
		entries, err = ParseZshHistory(file)
	default:
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	events := make([]Event, len(entries))
	for i, e := range entries {
		events[i] = Event{Command: e.Command, ProjectPath: projectPath}
	}
	return r.RecordBatch(ctx, events), nil
}

func newHistoryScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}

func lastN(entries []ImportEntry, n int) []ImportEntry {
	if len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}
