// Package tts is the speech-synthesis collaborator: it turns cue text into
// a transient playable audio file. The guidance engine only depends on the
// Synthesizer interface; the HTTP client here talks to a local synthesis
// server (anything that accepts {text, voice} and answers with audio
// bytes).
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrSynthesis wraps every synthesis failure. Callers match it with
// errors.Is and degrade to silent cues; it is never fatal.
var ErrSynthesis = errors.New("speech synthesis failed")

// Synthesizer produces a playable audio file for the given text and
// returns its path. The caller owns the file and is responsible for
// deleting it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// maxAudioBytes caps a synthesis response; a cue is a short sentence.
const maxAudioBytes = 8 << 20

// HTTPClient synthesizes speech through a REST endpoint.
type HTTPClient struct {
	endpoint string
	voice    string
	dir      string
	http     *http.Client
}

// NewHTTPClient creates a client for the given synthesis endpoint. voice is
// the voice-locale identifier sent with every request; audio files are
// written to dir (the OS temp dir when empty).
func NewHTTPClient(endpoint, voice, dir string) *HTTPClient {
	if dir == "" {
		dir = os.TempDir()
	}
	return &HTTPClient{
		endpoint: endpoint,
		voice:    voice,
		dir:      dir,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// Synthesize posts the text and stores the returned audio in a uniquely
// named temp file. The file name carries a uuid so concurrent cues never
// collide.
func (c *HTTPClient) Synthesize(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(synthesizeRequest{Text: text, Voice: c.voice})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrSynthesis, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrSynthesis, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrSynthesis, resp.StatusCode, msg)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read audio: %v", ErrSynthesis, err)
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio response", ErrSynthesis)
	}

	path := filepath.Join(c.dir, fmt.Sprintf("aisleguide-cue-%s.wav", uuid.NewString()))
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		return "", fmt.Errorf("%w: write audio file: %v", ErrSynthesis, err)
	}
	return path, nil
}

// Noop is a Synthesizer for runs with voice output disabled. Every call
// fails with ErrSynthesis so the sequencer falls back to logged cues.
type Noop struct{}

// Synthesize always reports synthesis as unavailable.
func (Noop) Synthesize(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: voice output disabled", ErrSynthesis)
}
