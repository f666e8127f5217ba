package audio

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/zjrosen/aisleguide/internal/log"
	"github.com/zjrosen/aisleguide/internal/tts"
)

// Config holds the sequencer's timing and retry policy.
type Config struct {
	// PlaybackTimeout bounds the busy-poll so a stuck player cannot hang a
	// guidance step.
	PlaybackTimeout time.Duration
	// PollInterval is how often playback is polled for completion.
	PollInterval time.Duration
	// DeleteGrace delays the first delete attempt, giving the OS time to
	// release file handles after playback.
	DeleteGrace time.Duration
	// DeleteBackoff separates delete retries.
	DeleteBackoff time.Duration
	// DeleteRetries bounds delete attempts per cue.
	DeleteRetries int
	// SweepRetries bounds delete attempts during the shutdown sweep.
	SweepRetries int
	// SweepBackoff separates sweep retries; kept short so shutdown never
	// stalls on a stubborn file.
	SweepBackoff time.Duration
}

// DefaultConfig mirrors field-proven values: a 10s playback bound, 1s
// handle-release grace, 3 delete retries with 1s backoff, and a 5-attempt
// shutdown sweep.
func DefaultConfig() Config {
	return Config{
		PlaybackTimeout: 10 * time.Second,
		PollInterval:    100 * time.Millisecond,
		DeleteGrace:     time.Second,
		DeleteBackoff:   time.Second,
		DeleteRetries:   3,
		SweepRetries:    5,
		SweepBackoff:    100 * time.Millisecond,
	}
}

// Sequencer speaks cues one at a time. It synthesizes text through the
// Synthesizer, plays the resulting artifact through the Player, and owns
// the artifact's deletion. Synthesis or playback failures degrade to a
// logged cue: the guidance flow continues even with voice output down.
type Sequencer struct {
	synth  tts.Synthesizer
	player Player
	cfg    Config

	// playMu is the exclusive playback lock: at most one Speak is
	// mid-flight system-wide, so cues are heard in call order and never
	// overlap.
	playMu sync.Mutex

	mu        sync.Mutex
	current   Playback
	artifacts map[string]*Artifact

	deletions sync.WaitGroup

	// removeFile is swapped in tests to simulate busy-file failures.
	removeFile func(string) error
}

// New creates a Sequencer.
func New(synth tts.Synthesizer, player Player, cfg Config) *Sequencer {
	return &Sequencer{
		synth:      synth,
		player:     player,
		cfg:        cfg,
		artifacts:  make(map[string]*Artifact),
		removeFile: os.Remove,
	}
}

// Speak synthesizes and plays text, blocking until the cue finished (or
// was degraded). The only error it returns is ctx.Err when the caller
// cancelled; all synthesis/playback failures are logged and swallowed.
func (s *Sequencer) Speak(ctx context.Context, text string) error {
	s.playMu.Lock()
	defer s.playMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		log.Warn(log.CatAudio, "synthesis failed, cue degraded to log", "error", err)
		log.Info(log.CatAudio, "spoken cue (degraded)", "text", text)
		return nil
	}

	art := newArtifact(path)
	s.track(art)
	log.Debug(log.CatAudio, "artifact created", "id", art.ID, "path", art.Path)

	pb, err := s.player.Start(path)
	if err != nil {
		log.Warn(log.CatAudio, "playback failed, cue degraded to log", "error", err)
		log.Info(log.CatAudio, "spoken cue (degraded)", "text", text)
		art.setState(StatePendingDelete)
		s.scheduleDelete(art)
		return nil
	}

	s.setCurrent(pb)
	art.setState(StatePlaying)

	waitErr := s.waitPlayback(ctx, pb)

	// Stop releases the device resource; required before deletion and
	// harmless if playback already finished.
	pb.Stop()
	s.setCurrent(nil)

	art.setState(StateFinished)
	art.setState(StatePendingDelete)
	s.scheduleDelete(art)

	return waitErr
}

// waitPlayback polls until playback completes, bounded by the configured
// timeout and observable cancellation.
func (s *Sequencer) waitPlayback(ctx context.Context, pb Playback) error {
	deadline := time.NewTimer(s.cfg.PlaybackTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for pb.Busy() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			log.Warn(log.CatAudio, "playback still busy after timeout, forcing stop",
				"timeout", s.cfg.PlaybackTimeout)
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

// scheduleDelete removes the artifact's file in the background after the
// grace delay, retrying a bounded number of times.
func (s *Sequencer) scheduleDelete(art *Artifact) {
	s.deletions.Add(1)
	go func() {
		defer s.deletions.Done()
		if s.cfg.DeleteGrace > 0 {
			time.Sleep(s.cfg.DeleteGrace)
		}
		s.deleteWithRetries(art, s.cfg.DeleteRetries, s.cfg.DeleteBackoff)
	}()
}

// deleteWithRetries attempts removal up to retries times. On success the
// artifact is untracked; on exhaustion it is marked DeleteFailed, logged,
// and abandoned (the shutdown sweep gets one more go at it).
func (s *Sequencer) deleteWithRetries(art *Artifact, retries int, backoff time.Duration) {
	for i := 0; i < retries; i++ {
		art.recordAttempt()
		err := s.removeFile(art.Path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			art.setState(StateDeleted)
			s.untrack(art)
			log.Debug(log.CatAudio, "artifact deleted", "id", art.ID, "attempts", art.Attempts())
			return
		}
		if i < retries-1 {
			time.Sleep(backoff)
		}
	}

	art.setState(StateDeleteFailed)
	log.Warn(log.CatAudio, "artifact delete failed, abandoning",
		"id", art.ID, "path", art.Path, "attempts", art.Attempts())
}

// Shutdown force-stops any in-flight playback, waits briefly for pending
// deletions, then sweeps every still-tracked artifact. Best-effort: it
// never blocks indefinitely on stubborn files.
func (s *Sequencer) Shutdown() {
	s.mu.Lock()
	if s.current != nil {
		s.current.Stop()
		s.current = nil
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.deletions.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		log.Warn(log.CatAudio, "pending deletions still running at shutdown")
	}

	leftovers := s.tracked()
	if len(leftovers) > 0 {
		log.Info(log.CatAudio, "sweeping leftover artifacts", "count", len(leftovers))
	}
	for _, art := range leftovers {
		s.deleteWithRetries(art, s.cfg.SweepRetries, s.cfg.SweepBackoff)
	}
}

// Tracked returns the artifacts the sequencer still owns; exposed for
// tests and diagnostics.
func (s *Sequencer) Tracked() []*Artifact {
	return s.tracked()
}

func (s *Sequencer) tracked() []*Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Artifact, 0, len(s.artifacts))
	for _, a := range s.artifacts {
		out = append(out, a)
	}
	return out
}

func (s *Sequencer) track(art *Artifact) {
	s.mu.Lock()
	s.artifacts[art.ID] = art
	s.mu.Unlock()
}

func (s *Sequencer) untrack(art *Artifact) {
	s.mu.Lock()
	delete(s.artifacts, art.ID)
	s.mu.Unlock()
}

func (s *Sequencer) setCurrent(pb Playback) {
	s.mu.Lock()
	s.current = pb
	s.mu.Unlock()
}
