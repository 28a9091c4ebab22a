package shellctx

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectType classifies a project's primary toolchain.
type ProjectType string

const (
	TypeNode   ProjectType = "node"
	TypeRust   ProjectType = "rust"
	TypePython ProjectType = "python"
	TypeGo     ProjectType = "go"
	TypeJava   ProjectType = "java"
	TypeRuby   ProjectType = "ruby"
	TypeOther  ProjectType = "other"
)

// maxScanDepth limits how many parent directories are scanned upward when
// looking for project markers.
const maxScanDepth = 10

// marker maps a filesystem marker file to a project type. Order matters:
// the first marker found at the closest directory level wins.
var markers = []struct {
	name        string
	projectType ProjectType
}{
	{"package.json", TypeNode},
	{"Cargo.toml", TypeRust},
	{"requirements.txt", TypePython},
	{"pyproject.toml", TypePython},
	{"setup.py", TypePython},
	{"go.mod", TypeGo},
	{"pom.xml", TypeJava},
	{"build.gradle", TypeJava},
	{"Gemfile", TypeRuby},
}

// projectMarkers lists marker names that identify a project root, for
// DetectProjectRoot. Broader than the toolchain markers above.
var projectMarkers = []string{
	".git", "Cargo.toml", "package.json", "go.mod", "pom.xml",
	"build.gradle", "requirements.txt", "Gemfile", "composer.json",
}

// overrideConfig represents the .recall/project.yaml override file.
type overrideConfig struct {
	ProjectType string `yaml:"project_type"`
}

// DetectProjectType classifies the project containing dir by scanning for
// marker files, starting at dir and walking upward. A .recall/project.yaml
// override takes precedence over markers. Returns TypeOther when nothing
// matches.
func DetectProjectType(dir string) ProjectType {
	if dir == "" {
		return TypeOther
	}

	current := filepath.Clean(dir)
	for depth := 0; depth < maxScanDepth; depth++ {
		if t, ok := readOverride(current); ok {
			return t
		}
		for _, m := range markers {
			if fileExists(filepath.Join(current, m.name)) {
				return m.projectType
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			break // filesystem root
		}
		current = parent
	}

	return TypeOther
}

// DetectProjectRoot walks up from dir looking for a project marker and
// returns the first directory containing one. Falls back to dir itself when
// no marker is found.
func DetectProjectRoot(dir string) string {
	current := filepath.Clean(dir)
	for depth := 0; depth < maxScanDepth; depth++ {
		for _, name := range projectMarkers {
			if _, err := os.Stat(filepath.Join(current, name)); err == nil {
				return current
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return filepath.Clean(dir)
}

// readOverride reads a .recall/project.yaml file in dir, if present.
func readOverride(dir string) (ProjectType, bool) {
	data, err := os.ReadFile(filepath.Join(dir, ".recall", "project.yaml"))
	if err != nil {
		return "", false
	}

	var cfg overrideConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return "", false
	}

	t := ProjectType(strings.TrimSpace(strings.ToLower(cfg.ProjectType)))
	switch t {
	case TypeNode, TypeRust, TypePython, TypeGo, TypeJava, TypeRuby, TypeOther:
		return t, true
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
