package sanitize

import (
	"regexp"
	"strings"
)

// RiskLevel classifies how dangerous a recorded command is. It is stored
// as a tag on the command so reports can mark risky history entries.
type RiskLevel string

const (
	RiskSafe        RiskLevel = "safe"
	RiskDestructive RiskLevel = "destructive"
)

// destructivePatterns flag commands that delete data or alter the system.
var destructivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\brm\s+-[a-zA-Z]*[rf]`),
	regexp.MustCompile(`(?i)\bdrop\s+(table|database)\b`),
	regexp.MustCompile(`(?i)\btruncate\b`),
	regexp.MustCompile(`\bgit\s+push\s+.*(-f|--force)\b`),
	regexp.MustCompile(`\bgit\s+reset\s+--hard\b`),
	regexp.MustCompile(`\bgit\s+clean\s+-[a-zA-Z]*[fd]`),
	regexp.MustCompile(`\bchmod\s+(-R\s+)?777\b`),
	regexp.MustCompile(`\bdd\s+.*of=/dev/`),
	regexp.MustCompile(`\bmkfs\b`),
	regexp.MustCompile(`\bshutdown\b|\breboot\b`),
	regexp.MustCompile(`\bkill\s+-9\b|\bkillall\b`),
	regexp.MustCompile(`\bdocker\s+system\s+prune\b`),
	regexp.MustCompile(`\bkubectl\s+delete\b`),
}

// IsDestructive reports whether a command matches a known destructive
// pattern.
func IsDestructive(command string) bool {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return false
	}
	for _, p := range destructivePatterns {
		if p.MatchString(cmd) {
			return true
		}
	}
	return false
}

// GetRiskLevel returns the risk level for a command.
func GetRiskLevel(command string) RiskLevel {
	if IsDestructive(command) {
		return RiskDestructive
	}
	return RiskSafe
}
