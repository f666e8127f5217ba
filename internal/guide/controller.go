// Package guide runs the voice-guided navigation loop: listen for a
// command, plan a route, speak the cues one step at a time, announce
// arrival, and wait for the next command.
package guide

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/aisleguide/internal/command"
	"github.com/zjrosen/aisleguide/internal/grid"
	"github.com/zjrosen/aisleguide/internal/instruction"
	"github.com/zjrosen/aisleguide/internal/log"
	"github.com/zjrosen/aisleguide/internal/path"
	"github.com/zjrosen/aisleguide/internal/pubsub"
	"github.com/zjrosen/aisleguide/internal/speech"
)

// Speaker voices one utterance and returns once playback is over. The
// audio sequencer satisfies this.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Config wires a Controller.
type Config struct {
	Map       *grid.Map
	StoreName string
	Start     grid.Cell
	StepPause time.Duration
	Phrases   Phrases
}

// session is one guidance cycle: it exists from the moment a route is
// planned until arrival, cancellation, or exit.
type session struct {
	id      uuid.UUID
	product grid.Product
	route   path.Path
}

// Controller owns the guidance state machine. All mutation happens on
// the Run goroutine; the snapshot accessors are safe from elsewhere.
type Controller struct {
	cfg     Config
	source  speech.Source
	interp  *command.Interpreter
	speaker Speaker
	broker  *pubsub.Broker[any]

	mu       sync.Mutex
	state    State
	position grid.Cell
	session  *session
}

// New builds a Controller in StateIdle at the configured start cell.
func New(cfg Config, source speech.Source, interp *command.Interpreter, speaker Speaker, broker *pubsub.Broker[any]) *Controller {
	return &Controller{
		cfg:      cfg,
		source:   source,
		interp:   interp,
		speaker:  speaker,
		broker:   broker,
		state:    StateIdle,
		position: cfg.Start,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Position returns the user's current cell.
func (c *Controller) Position() grid.Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Run drives the command loop until an exit phrase or ctx cancellation.
// It returns ctx.Err() on cancellation and nil on a spoken exit; either
// way the controller ends in StateExited.
func (c *Controller) Run(ctx context.Context) error {
	err := c.loop(ctx)
	if err != nil {
		// External stop: terminal state without the farewell cue.
		c.setState(StateExited)
		log.Info(log.CatGuide, "guidance stopped", "reason", err.Error())
	}
	return err
}

func (c *Controller) loop(ctx context.Context) error {
	log.Info(log.CatGuide, "guidance started",
		"store", c.cfg.StoreName, "start", c.cfg.Start.String())

	// Seed the renderer with the starting position.
	c.broker.Publish(EventPosition, PositionEvent{Cell: c.cfg.Start})

	if err := c.speak(ctx, c.cfg.Phrases.greeting(c.cfg.StoreName)); err != nil {
		return err
	}
	if err := c.speak(ctx, c.cfg.Phrases.prompt(c.cfg.Map.ProductNames())); err != nil {
		return err
	}

	for {
		c.setState(StateAwaitingCommand)

		phrase, err := c.source.Listen(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, speech.ErrTimeout):
			log.Debug(log.CatGuide, "listen window elapsed")
			if err := c.speak(ctx, c.cfg.Phrases.NotUnderstood); err != nil {
				return err
			}
			continue
		case errors.Is(err, speech.ErrUnintelligible):
			if err := c.speak(ctx, c.cfg.Phrases.NotUnderstood); err != nil {
				return err
			}
			continue
		case err != nil:
			// Recognition engine failures recover the same way: a spoken
			// retry cue, then back to listening.
			log.Error(log.CatGuide, "speech source failed", "error", err.Error())
			if err := c.speak(ctx, c.cfg.Phrases.NotUnderstood); err != nil {
				return err
			}
			continue
		}

		result := c.interp.Interpret(phrase)
		log.Info(log.CatGuide, "phrase interpreted",
			"phrase", phrase, "kind", result.Kind.String(), "product", result.Product)

		switch result.Kind {
		case command.KindExit:
			c.setState(StateExited)
			if err := c.speak(ctx, c.cfg.Phrases.Farewell); err != nil {
				return err
			}
			log.Info(log.CatGuide, "guidance exited")
			return nil

		case command.KindProduct:
			if err := c.guideTo(ctx, result.Product); err != nil {
				return err
			}

		default:
			if err := c.speak(ctx, c.cfg.Phrases.NotFound); err != nil {
				return err
			}
		}
	}
}

// guideTo plans and walks one route. A non-nil return is always a
// context error; route failures are spoken, not returned.
func (c *Controller) guideTo(ctx context.Context, name string) error {
	c.setState(StatePlanning)

	product, ok := c.cfg.Map.Product(name)
	if !ok {
		// The interpreter only emits configured names, but a stale
		// interpreter is cheap to tolerate.
		return c.speak(ctx, c.cfg.Phrases.NotFound)
	}

	route, err := path.Find(c.cfg.Map, c.Position(), product.Cell)
	if err != nil {
		log.Warn(log.CatGuide, "no route", "product", product.Name, "error", err.Error())
		if err := c.speak(ctx, c.cfg.Phrases.noRoute(product.Name)); err != nil {
			return err
		}
		return nil
	}

	cues, err := instruction.Encode(route)
	if err != nil {
		log.Error(log.CatGuide, "route encoding failed", "error", err.Error())
		return c.speak(ctx, c.cfg.Phrases.noRoute(product.Name))
	}

	sess := &session{id: uuid.New(), product: product, route: route}
	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
	log.Info(log.CatGuide, "route planned", "session", sess.id.String(),
		"product", product.Name, "aisle", product.Aisle, "steps", route.Steps())

	c.broker.Publish(EventTarget, TargetEvent{Product: product, Path: route})

	if err := c.speak(ctx, c.cfg.Phrases.pathStart(product.Name, product.Aisle)); err != nil {
		return err
	}

	c.setState(StateStepping)
	for i, cue := range cues {
		// The cue is voiced before the position advances so the spoken
		// direction always refers to the move being made.
		if err := c.speak(ctx, cue.Phrase()); err != nil {
			return err
		}

		if cue == instruction.Arrived {
			break
		}

		c.mu.Lock()
		c.position = route[i+1]
		c.mu.Unlock()
		c.broker.Publish(EventPosition, PositionEvent{
			Cell:  route[i+1],
			Step:  i + 1,
			Total: route.Steps(),
		})

		if err := c.pause(ctx); err != nil {
			return err
		}
	}

	c.setState(StateArrived)
	c.broker.Publish(EventArrived, ArrivedEvent{Product: product})
	if err := c.speak(ctx, c.cfg.Phrases.arrival(product.Name, product.Suggestions)); err != nil {
		return err
	}

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	log.Info(log.CatGuide, "session complete", "session", sess.id.String())
	return nil
}

// speak voices text and mirrors it to the UI. The sequencer degrades
// synthesis and playback failures internally, so a non-nil error here
// means the context ended.
func (c *Controller) speak(ctx context.Context, text string) error {
	c.broker.Publish(EventCue, CueEvent{Text: text})
	return c.speaker.Speak(ctx, text)
}

// pause waits the configured step pause, cancellable.
func (c *Controller) pause(ctx context.Context) error {
	if c.cfg.StepPause <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.cfg.StepPause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Controller) setState(to State) {
	c.mu.Lock()
	from := c.state
	if from == to {
		c.mu.Unlock()
		return
	}
	c.state = to
	c.mu.Unlock()

	log.Debug(log.CatGuide, "state changed", "from", from.String(), "to", to.String())
	c.broker.Publish(EventState, StateEvent{From: from, To: to})
}
