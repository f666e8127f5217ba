package speech

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/zjrosen/aisleguide/internal/log"
)

const (
	// sampleRate is what the recognition models expect.
	sampleRate = 16000
	// framesPerBuffer is the capture buffer size.
	framesPerBuffer = 1024
	// minSamples pads very short captures; recognizers misbehave below
	// ~200ms of audio.
	minSamples = sampleRate / 5
)

// silenceThreshold is the mean absolute amplitude below which a capture is
// treated as no speech at all.
const silenceThreshold = 0.005

// Recognizer transcribes captured audio samples (float32, 16kHz, mono).
type Recognizer interface {
	Transcribe(samples []float32) (string, error)
	Close()
}

// Mic is a Source that records from the default input device for the
// configured phrase window and transcribes the capture.
type Mic struct {
	recognizer Recognizer
	// phraseLimit is how long one capture runs: the user has this much
	// time to speak after Listen starts.
	phraseLimit time.Duration

	mu      sync.Mutex
	stream  *portaudio.Stream
	buffer  []float32
	samples []float32
	running bool
}

// NewMic initializes the audio subsystem and wraps the recognizer into a
// phrase source.
func NewMic(recognizer Recognizer, phraseLimit time.Duration) (*Mic, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: initializing audio capture: %v", ErrService, err)
	}
	return &Mic{
		recognizer:  recognizer,
		phraseLimit: phraseLimit,
		buffer:      make([]float32, framesPerBuffer),
	}, nil
}

// Listen records one phrase window and transcribes it. Maps silence to
// ErrTimeout, empty transcripts to ErrUnintelligible, and engine failures
// to ErrService.
func (m *Mic) Listen(ctx context.Context) (string, error) {
	if err := m.start(); err != nil {
		return "", err
	}
	log.Debug(log.CatSpeech, "listening", "phrase_limit", m.phraseLimit)

	select {
	case <-ctx.Done():
		m.stop()
		return "", ctx.Err()
	case <-time.After(m.phraseLimit):
	}

	samples := m.stop()
	if len(samples) == 0 || meanAmplitude(samples) < silenceThreshold {
		return "", ErrTimeout
	}

	text, err := m.recognizer.Transcribe(samples)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}
	if normalize(text) == "" {
		return "", ErrUnintelligible
	}

	log.Debug(log.CatSpeech, "phrase recognized", "text", text)
	return normalize(text), nil
}

// start opens the capture stream and launches the read loop.
func (m *Mic) start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	m.samples = make([]float32, 0, sampleRate*int(m.phraseLimit.Seconds()+1))

	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, framesPerBuffer, m.buffer)
	if err != nil {
		return fmt.Errorf("%w: opening capture stream: %v", ErrService, err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("%w: starting capture stream: %v", ErrService, err)
	}

	m.stream = stream
	m.running = true
	go m.recordLoop()
	return nil
}

// recordLoop drains the capture buffer until stop flips running off.
func (m *Mic) recordLoop() {
	for {
		m.mu.Lock()
		if !m.running || m.stream == nil {
			m.mu.Unlock()
			return
		}
		stream := m.stream
		m.mu.Unlock()

		if err := stream.Read(); err != nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		m.mu.Lock()
		if m.running {
			chunk := make([]float32, len(m.buffer))
			copy(chunk, m.buffer)
			m.samples = append(m.samples, chunk...)
		}
		m.mu.Unlock()
	}
}

// stop ends the capture and returns the recorded samples, padded with
// silence when too short for the recognizer.
func (m *Mic) stop() []float32 {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = false
	stream := m.stream
	m.stream = nil
	samples := m.samples
	m.samples = nil
	m.mu.Unlock()

	if stream != nil {
		_ = stream.Stop()
		_ = stream.Close()
	}

	if n := len(samples); n > 0 && n < minSamples {
		samples = append(samples, make([]float32, minSamples-n)...)
	}
	return samples
}

// Close stops any capture and tears down the audio subsystem and the
// recognizer.
func (m *Mic) Close() error {
	m.stop()
	m.recognizer.Close()
	return portaudio.Terminate()
}

func meanAmplitude(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		sum += float64(s)
	}
	return sum / float64(len(samples))
}
