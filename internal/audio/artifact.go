package audio

import (
	"sync"

	"github.com/google/uuid"
)

// ArtifactState tracks an audio file through its lifecycle.
type ArtifactState int

const (
	StatePending ArtifactState = iota
	StatePlaying
	StateFinished
	StatePendingDelete
	StateDeleted
	StateDeleteFailed
)

// String returns the state name for logs.
func (s ArtifactState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	case StatePendingDelete:
		return "pending_delete"
	case StateDeleted:
		return "deleted"
	case StateDeleteFailed:
		return "delete_failed"
	default:
		return "unknown"
	}
}

// Artifact is one transient synthesized audio file. The Sequencer owns
// every artifact exclusively: it creates them, plays them, and deletes
// them (or abandons them as DeleteFailed after retries exhaust).
type Artifact struct {
	ID   string
	Path string

	mu       sync.Mutex
	state    ArtifactState
	attempts int
}

func newArtifact(path string) *Artifact {
	return &Artifact{
		ID:   uuid.NewString(),
		Path: path,
	}
}

// State returns the current lifecycle state.
func (a *Artifact) State() ArtifactState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Artifact) setState(s ArtifactState) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Attempts returns how many delete attempts have been made.
func (a *Artifact) Attempts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attempts
}

func (a *Artifact) recordAttempt() {
	a.mu.Lock()
	a.attempts++
	a.mu.Unlock()
}
