// Package config provides configuration management for recall.
package config

import (
	"os"
	"path/filepath"
)

// Paths holds the filesystem locations recall uses.
type Paths struct {
	// BaseDir is the recall home directory (~/.recall)
	BaseDir string
}

// DefaultPaths returns the default paths. RECALL_HOME overrides the base
// directory.
func DefaultPaths() *Paths {
	if base := os.Getenv("RECALL_HOME"); base != "" {
		return &Paths{BaseDir: base}
	}
	return &Paths{BaseDir: filepath.Join(homeDir(), ".recall")}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir, "config.yaml")
}

// DatabaseFile returns the path to the SQLite database.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.BaseDir, "recall.db")
}

// EnsureDirectories creates the recall home directory.
func (p *Paths) EnsureDirectories() error {
	return os.MkdirAll(p.BaseDir, 0755)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}
