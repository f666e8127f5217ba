package guide

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/aisleguide/internal/command"
	"github.com/zjrosen/aisleguide/internal/grid"
	"github.com/zjrosen/aisleguide/internal/pubsub"
	"github.com/zjrosen/aisleguide/internal/speech"
)

// recordingSpeaker captures spoken text in order.
type recordingSpeaker struct {
	mu    sync.Mutex
	onSay func(text string)
	texts []string
}

func (r *recordingSpeaker) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.texts = append(r.texts, text)
	r.mu.Unlock()
	if r.onSay != nil {
		r.onSay(text)
	}
	return nil
}

func (r *recordingSpeaker) spoken() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

// fakeSource replays canned Listen outcomes, then times out.
type fakeSource struct {
	outcomes []func() (string, error)
}

func (f *fakeSource) Listen(context.Context) (string, error) {
	if len(f.outcomes) == 0 {
		return "", speech.ErrTimeout
	}
	next := f.outcomes[0]
	f.outcomes = f.outcomes[1:]
	return next()
}

func (f *fakeSource) Close() error { return nil }

// testMap is a 4x3 floor with one shelf cell at (1,1). Milk sits on the
// floor at (3,0); rice sits on the shelf.
func testMap(t require.TestingT) *grid.Map {
	m, err := grid.New(4, 3,
		[]grid.Cell{{X: 1, Y: 1}},
		[]grid.Product{
			{Name: "milk", Cell: grid.Cell{X: 3, Y: 0}, Suggestions: []string{"cookies"}},
			{Name: "rice", Cell: grid.Cell{X: 1, Y: 1}},
		})
	require.NoError(t, err)
	return m
}

func newTestController(m *grid.Map, source speech.Source, speaker Speaker, broker *pubsub.Broker[any]) *Controller {
	interp := command.NewInterpreter(m.ProductNames(), []string{"exit"})
	return New(Config{
		Map:       m,
		StoreName: "Test Market",
		Start:     grid.Cell{X: 0, Y: 0},
		StepPause: 0,
		Phrases:   DefaultPhrases(),
	}, source, interp, speaker, broker)
}

// drain cancels the subscription and collects everything published.
func drain(cancel context.CancelFunc, ch <-chan pubsub.Event[any]) []pubsub.Event[any] {
	cancel()
	var out []pubsub.Event[any]
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestRun_GuidesToProductThenExits(t *testing.T) {
	m := testMap(t)
	speaker := &recordingSpeaker{}
	broker := pubsub.NewBroker[any]()
	subCtx, subCancel := context.WithCancel(context.Background())
	events := broker.Subscribe(subCtx)

	ctrl := newTestController(m, speech.NewScripted("where is the milk", "exit"), speaker, broker)
	require.NoError(t, ctrl.Run(context.Background()))

	assert.Equal(t, []string{
		"Welcome to Test Market. I can guide you through the store.",
		"You can ask for milk and rice, or say exit to leave.",
		"The milk is in aisle D. Follow my directions.",
		"Head right.",
		"Head right.",
		"Head right.",
		"You have arrived.",
		"The milk is right here. You might also want cookies.",
		"Thank you for visiting. Goodbye.",
	}, speaker.spoken())

	assert.Equal(t, grid.Cell{X: 3, Y: 0}, ctrl.Position())
	assert.Equal(t, StateExited, ctrl.State())

	var positions []PositionEvent
	var states []State
	var arrived []ArrivedEvent
	for _, ev := range drain(subCancel, events) {
		switch ev.Type {
		case EventPosition:
			positions = append(positions, ev.Payload.(PositionEvent))
		case EventState:
			states = append(states, ev.Payload.(StateEvent).To)
		case EventArrived:
			arrived = append(arrived, ev.Payload.(ArrivedEvent))
		}
	}

	assert.Equal(t, []PositionEvent{
		{Cell: grid.Cell{X: 0, Y: 0}},
		{Cell: grid.Cell{X: 1, Y: 0}, Step: 1, Total: 3},
		{Cell: grid.Cell{X: 2, Y: 0}, Step: 2, Total: 3},
		{Cell: grid.Cell{X: 3, Y: 0}, Step: 3, Total: 3},
	}, positions)
	assert.Equal(t, []State{
		StateAwaitingCommand, StatePlanning, StateStepping,
		StateArrived, StateAwaitingCommand, StateExited,
	}, states)
	require.Len(t, arrived, 1)
	assert.Equal(t, "milk", arrived[0].Product.Name)
}

func TestRun_ShelfProductStopsAtAccessibleNeighbor(t *testing.T) {
	m := testMap(t)
	speaker := &recordingSpeaker{}
	broker := pubsub.NewBroker[any]()

	ctrl := newTestController(m, speech.NewScripted("rice", "exit"), speaker, broker)
	require.NoError(t, ctrl.Run(context.Background()))

	// Rice is shelved at (1,1); the walk ends on its floor-side neighbor.
	assert.Equal(t, grid.Cell{X: 1, Y: 0}, ctrl.Position())
	assert.Contains(t, speaker.spoken(), "The rice is right here.")
}

func TestRun_UnknownProductApologizes(t *testing.T) {
	m := testMap(t)
	speaker := &recordingSpeaker{}
	broker := pubsub.NewBroker[any]()

	ctrl := newTestController(m, speech.NewScripted("caviar", "exit"), speaker, broker)
	require.NoError(t, ctrl.Run(context.Background()))

	assert.Contains(t, speaker.spoken(), "Sorry, I could not find that product.")
	assert.Equal(t, grid.Cell{X: 0, Y: 0}, ctrl.Position(), "a failed command must not move the user")
}

func TestRun_UnreachableProductApologizes(t *testing.T) {
	// Honey sits on floor at (2,2) but shelving walls it off completely.
	m, err := grid.New(3, 3,
		[]grid.Cell{{X: 1, Y: 2}, {X: 2, Y: 1}},
		[]grid.Product{{Name: "honey", Cell: grid.Cell{X: 2, Y: 2}}})
	require.NoError(t, err)

	speaker := &recordingSpeaker{}
	broker := pubsub.NewBroker[any]()

	ctrl := newTestController(m, speech.NewScripted("honey", "exit"), speaker, broker)
	require.NoError(t, ctrl.Run(context.Background()))

	assert.Contains(t, speaker.spoken(), "Sorry, I cannot find a way to the honey from here.")
	assert.Equal(t, grid.Cell{X: 0, Y: 0}, ctrl.Position())
	assert.Equal(t, StateExited, ctrl.State())
}

func TestRun_UnintelligiblePhraseReprompts(t *testing.T) {
	m := testMap(t)
	speaker := &recordingSpeaker{}
	broker := pubsub.NewBroker[any]()

	source := &fakeSource{outcomes: []func() (string, error){
		func() (string, error) { return "", speech.ErrUnintelligible },
		func() (string, error) { return "exit", nil },
	}}

	ctrl := newTestController(m, source, speaker, broker)
	require.NoError(t, ctrl.Run(context.Background()))

	assert.Contains(t, speaker.spoken(), "Sorry, I did not catch that.")
}

func TestRun_EveryRecognitionFailureSpeaksRetryCue(t *testing.T) {
	m := testMap(t)
	speaker := &recordingSpeaker{}
	broker := pubsub.NewBroker[any]()

	// A timed-out window, a dead engine, and an empty transcript all
	// recover the same way: a spoken retry cue, then listening resumes.
	source := &fakeSource{outcomes: []func() (string, error){
		func() (string, error) { return "", speech.ErrTimeout },
		func() (string, error) { return "", fmt.Errorf("%w: engine gone", speech.ErrService) },
		func() (string, error) { return "", speech.ErrUnintelligible },
		func() (string, error) { return "exit", nil },
	}}

	ctrl := newTestController(m, source, speaker, broker)
	require.NoError(t, ctrl.Run(context.Background()))

	retries := 0
	for _, text := range speaker.spoken() {
		if text == "Sorry, I did not catch that." {
			retries++
		}
	}
	assert.Equal(t, 3, retries, "each recognition failure answers with the retry cue")
	assert.Equal(t, StateExited, ctrl.State())
}

func TestRun_CancelMidRoute(t *testing.T) {
	m := testMap(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	speaker := &recordingSpeaker{}
	speaker.onSay = func(text string) {
		if text == "Head right." {
			cancel()
		}
	}
	broker := pubsub.NewBroker[any]()

	ctrl := newTestController(m, speech.NewScripted("milk"), speaker, broker)
	err := ctrl.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// An external stop lands in the terminal state, but silently: no
	// farewell cue is voiced.
	assert.Equal(t, StateExited, ctrl.State())
	assert.NotContains(t, speaker.spoken(), "Thank you for visiting. Goodbye.")
	assert.NotEqual(t, grid.Cell{X: 3, Y: 0}, ctrl.Position(), "the walk must stop mid-route")
}

func TestRun_CancelBeforeStart(t *testing.T) {
	m := testMap(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl := newTestController(m, speech.NewScripted("milk"), &recordingSpeaker{}, pubsub.NewBroker[any]())
	require.ErrorIs(t, ctrl.Run(ctx), context.Canceled)
	assert.Equal(t, StateExited, ctrl.State())
}

func TestRun_StepPauseIsCancellable(t *testing.T) {
	m := testMap(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	speaker := &recordingSpeaker{}
	speaker.onSay = func(text string) {
		if text == "Head right." {
			cancel()
		}
	}
	broker := pubsub.NewBroker[any]()

	interp := command.NewInterpreter(m.ProductNames(), []string{"exit"})
	ctrl := New(Config{
		Map:       m,
		StoreName: "Test Market",
		Start:     grid.Cell{X: 0, Y: 0},
		StepPause: time.Hour,
		Phrases:   DefaultPhrases(),
	}, speech.NewScripted("milk"), interp, speaker, broker)

	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return; the step pause ignored cancellation")
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "awaiting command", StateAwaitingCommand.String())
	assert.Equal(t, "stepping", StateStepping.String())
	assert.Equal(t, "exited", StateExited.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestJoinList(t *testing.T) {
	assert.Equal(t, "", joinList(nil))
	assert.Equal(t, "tea", joinList([]string{"tea"}))
	assert.Equal(t, "tea and jam", joinList([]string{"tea", "jam"}))
	assert.Equal(t, "tea, jam and oats", joinList([]string{"tea", "jam", "oats"}))
}
