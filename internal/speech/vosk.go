package speech

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"
)

// VoskRecognizer transcribes audio with an on-device vosk model.
type VoskRecognizer struct {
	mu         sync.Mutex
	model      *vosk.VoskModel
	recognizer *vosk.VoskRecognizer
}

type voskResult struct {
	Text string `json:"text"`
}

// NewVosk loads the model at modelPath.
func NewVosk(modelPath string) (*VoskRecognizer, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("vosk model not found: %s", modelPath)
	}

	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading vosk model: %w", err)
	}

	rec, err := vosk.NewRecognizer(model, float64(sampleRate))
	if err != nil {
		model.Free()
		return nil, fmt.Errorf("creating vosk recognizer: %w", err)
	}

	return &VoskRecognizer{model: model, recognizer: rec}, nil
}

// Transcribe feeds the samples to vosk and returns the final transcript.
// Vosk consumes PCM16, so float32 [-1,1] is converted first.
func (v *VoskRecognizer) Transcribe(samples []float32) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	pcm16 := make([]byte, len(samples)*2)
	for i, sample := range samples {
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}
		binary.LittleEndian.PutUint16(pcm16[i*2:], uint16(int16(sample*math.MaxInt16)))
	}

	v.recognizer.AcceptWaveform(pcm16)
	resultJSON := v.recognizer.FinalResult()
	// Reset so the next capture starts clean.
	v.recognizer.Reset()

	var result voskResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return "", fmt.Errorf("parsing vosk result: %w", err)
	}
	return result.Text, nil
}

// Close frees the model and recognizer.
func (v *VoskRecognizer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.recognizer != nil {
		v.recognizer.Free()
		v.recognizer = nil
	}
	if v.model != nil {
		v.model.Free()
		v.model = nil
	}
}
