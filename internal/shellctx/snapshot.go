// Package shellctx captures the current shell context for suggestion
// generation: working directory, time of day, day of week, git branch,
// and project type.
package shellctx

import (
	"fmt"
	"os"
	"time"
)

// TimeOfDay buckets the clock hour into coarse periods.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"   // 6am - 12pm
	Afternoon TimeOfDay = "afternoon" // 12pm - 6pm
	Evening   TimeOfDay = "evening"   // 6pm - 10pm
	Night     TimeOfDay = "night"     // 10pm - 6am
)

// Snapshot is an immutable view of the current shell context. It is
// recomputed fresh on every suggestion request and never persisted as-is;
// only derived fields are copied into stored suggestion rows.
type Snapshot struct {
	WorkingDirectory string
	TimeOfDay        TimeOfDay
	Day              time.Weekday
	GitBranch        string      // empty when not in a git repo
	ProjectType      ProjectType // TypeOther when no marker matched
}

// Detector produces context snapshots. The zero value is not usable;
// call NewDetector.
type Detector struct {
	nowFunc func() time.Time
	cwdFunc func() (string, error)
}

// Option configures a Detector.
type Option func(*Detector)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(d *Detector) { d.nowFunc = now }
}

// WithCwd overrides working directory resolution, for tests.
func WithCwd(cwd func() (string, error)) Option {
	return func(d *Detector) { d.cwdFunc = cwd }
}

// NewDetector creates a context detector.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		nowFunc: time.Now,
		cwdFunc: os.Getwd,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Capture resolves a fresh snapshot. It fails only when the working
// directory cannot be resolved; git and project detection are best-effort.
func (d *Detector) Capture() (*Snapshot, error) {
	cwd, err := d.cwdFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	now := d.nowFunc()
	return &Snapshot{
		WorkingDirectory: cwd,
		TimeOfDay:        TimeOfDayAt(now.Hour()),
		Day:              now.Weekday(),
		GitBranch:        currentBranch(cwd),
		ProjectType:      DetectProjectType(cwd),
	}, nil
}

// TimeOfDayAt buckets an hour (0-23) into a TimeOfDay.
func TimeOfDayAt(hour int) TimeOfDay {
	switch {
	case hour >= 6 && hour <= 11:
		return Morning
	case hour >= 12 && hour <= 17:
		return Afternoon
	case hour >= 18 && hour <= 21:
		return Evening
	default:
		return Night
	}
}
