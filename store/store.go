package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned by Load and Delete for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run records one execution of a workflow together with the artifacts it
// produced, keyed by artifact name (for example "sql_v1" or "chart_v2").
type Run struct {
	ID        string            `json:"id"`
	Workflow  string            `json:"workflow"`
	Input     string            `json:"input"`
	Artifacts map[string]string `json:"artifacts"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewRun creates a run with a fresh ID.
func NewRun(workflow, input string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Workflow:  workflow,
		Input:     input,
		Artifacts: map[string]string{},
		CreatedAt: time.Now().UTC(),
	}
}

// Set records an artifact.
func (r *Run) Set(name, value string) {
	if r.Artifacts == nil {
		r.Artifacts = map[string]string{}
	}
	r.Artifacts[name] = value
}

// ArtifactNames returns the artifact names in sorted order.
func (r *Run) ArtifactNames() []string {
	names := make([]string, 0, len(r.Artifacts))
	for name := range r.Artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunStore persists workflow runs.
type RunStore interface {
	// Save inserts or replaces a run.
	Save(ctx context.Context, run *Run) error

	// Load retrieves a run by ID.
	Load(ctx context.Context, id string) (*Run, error)

	// List returns the runs of a workflow, oldest first. An empty workflow
	// lists every run.
	List(ctx context.Context, workflow string) ([]*Run, error)

	// Delete removes a run.
	Delete(ctx context.Context, id string) error
}

// SortRuns orders runs oldest first, breaking ties by ID.
func SortRuns(runs []*Run) {
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAt.Before(runs[j].CreatedAt)
	})
}
