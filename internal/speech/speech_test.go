package speech

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTyped_SubmitThenListen(t *testing.T) {
	s := NewTyped(time.Second)
	defer s.Close()

	s.Submit("  Milk ")

	phrase, err := s.Listen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "milk", phrase, "phrases are lowercased and trimmed")
}

func TestTyped_WindowTimeout(t *testing.T) {
	s := NewTyped(10 * time.Millisecond)
	defer s.Close()

	_, err := s.Listen(context.Background())
	require.ErrorIs(t, err, ErrTimeout)
}

func TestTyped_ContextCancel(t *testing.T) {
	s := NewTyped(0) // no window: only ctx can end the wait
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := s.Listen(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTyped_DropsWhenFull(t *testing.T) {
	s := NewTyped(time.Second)
	defer s.Close()

	for i := 0; i < 100; i++ {
		s.Submit("noise") // must not block even with no reader
	}

	phrase, err := s.Listen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "noise", phrase)
}

func TestScripted_ReplaysThenTimesOut(t *testing.T) {
	s := NewScripted("RICE", "exit")
	defer s.Close()

	ctx := context.Background()

	phrase, err := s.Listen(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rice", phrase)

	phrase, err = s.Listen(ctx)
	require.NoError(t, err)
	assert.Equal(t, "exit", phrase)

	_, err = s.Listen(ctx)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestMeanAmplitude(t *testing.T) {
	assert.Zero(t, meanAmplitude(nil))
	assert.InDelta(t, 0.5, meanAmplitude([]float32{0.5, -0.5}), 1e-9)
	assert.Less(t, meanAmplitude(make([]float32, 1000)), silenceThreshold,
		"pure silence stays under the threshold")
}
