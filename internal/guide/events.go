package guide

import (
	"github.com/zjrosen/aisleguide/internal/grid"
	"github.com/zjrosen/aisleguide/internal/path"
	"github.com/zjrosen/aisleguide/internal/pubsub"
)

// Event types published to the UI. Payloads are the value types below;
// the broker carries them as any.
const (
	EventState    pubsub.EventType = "guide.state"
	EventPosition pubsub.EventType = "guide.position"
	EventCue      pubsub.EventType = "guide.cue"
	EventTarget   pubsub.EventType = "guide.target"
	EventArrived  pubsub.EventType = "guide.arrived"
)

// StateEvent announces a state transition.
type StateEvent struct {
	From State
	To   State
}

// PositionEvent reports the user's cell after a completed step. Step is
// 1-based; Total is the number of movements in the active route.
type PositionEvent struct {
	Cell  grid.Cell
	Step  int
	Total int
}

// CueEvent carries the text of a cue as it is spoken.
type CueEvent struct {
	Text string
}

// TargetEvent announces a planned route toward a product.
type TargetEvent struct {
	Product grid.Product
	Path    path.Path
}

// ArrivedEvent announces arrival at a product.
type ArrivedEvent struct {
	Product grid.Product
}
