// Package audio plays synthesized voice cues and manages the transient
// audio files behind them. The Sequencer serializes playback; the Player
// is the playback collaborator it drives.
package audio

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"sync/atomic"
)

// ErrPlayback wraps every playback failure. Callers match it with
// errors.Is and degrade; it is never fatal.
var ErrPlayback = errors.New("audio playback failed")

// Playback is one in-flight play of an audio file.
type Playback interface {
	// Busy reports whether audio is still playing.
	Busy() bool
	// Stop halts playback and releases the file so it can be deleted.
	// Safe to call after playback finished on its own.
	Stop()
}

// Player loads and starts playback of an audio file.
type Player interface {
	Start(path string) (Playback, error)
}

// SystemPlayer plays files via the OS-native audio command
// (afplay/paplay/aplay/PowerShell). The command is resolved from PATH once
// at construction.
type SystemPlayer struct {
	command string
	args    []string
}

// NewSystemPlayer detects the platform audio command. Available reports
// whether one was found; Start fails with ErrPlayback when none is.
func NewSystemPlayer() *SystemPlayer {
	cmd, args := detectAudioCommand()
	return &SystemPlayer{command: cmd, args: args}
}

// Available returns true if an audio player was detected on this platform.
func (p *SystemPlayer) Available() bool {
	return p.command != ""
}

// Start begins playing the file and returns a handle for polling and
// stopping it.
func (p *SystemPlayer) Start(path string) (Playback, error) {
	if p.command == "" {
		return nil, fmt.Errorf("%w: no audio player available", ErrPlayback)
	}

	cmd := exec.Command(p.command, p.buildArgs(path)...) //nolint:gosec // command resolved from PATH at construction
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlayback, err)
	}

	pb := &systemPlayback{cmd: cmd}
	go func() {
		_ = cmd.Wait()
		pb.done.Store(true)
	}()
	return pb, nil
}

// buildArgs constructs player arguments for one file. A fresh slice each
// call; concurrent playbacks must not share backing arrays.
func (p *SystemPlayer) buildArgs(path string) []string {
	if runtime.GOOS == "windows" {
		return []string{"-c", fmt.Sprintf("(New-Object System.Media.SoundPlayer '%s').PlaySync()", path)}
	}

	args := make([]string, len(p.args)+1)
	copy(args, p.args)
	args[len(args)-1] = path
	return args
}

// detectAudioCommand returns the audio command and base arguments for the
// current platform, or empty when no player is installed.
func detectAudioCommand() (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		if path, err := exec.LookPath("afplay"); err == nil {
			return path, nil
		}
	case "linux":
		if path, err := exec.LookPath("paplay"); err == nil {
			return path, nil
		}
		if path, err := exec.LookPath("aplay"); err == nil {
			return path, []string{"-q"}
		}
	case "windows":
		if path, err := exec.LookPath("powershell.exe"); err == nil {
			return path, nil
		}
	}
	return "", nil
}

type systemPlayback struct {
	cmd  *exec.Cmd
	done atomic.Bool
}

func (p *systemPlayback) Busy() bool {
	return !p.done.Load()
}

func (p *systemPlayback) Stop() {
	if p.done.Load() {
		return
	}
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}
