// Package instruction converts a path into the ordered directional cues
// spoken to the user.
//
// The mapping is a fixed world-frame (compass-style) convention, not
// relative to the user's facing direction: +x is Right, -x is Left, +y is
// Forward (toward the back of the store), -y is Back. Cues therefore name
// absolute store directions, the way a person reads a floor map.
package instruction

import (
	"errors"

	"github.com/zjrosen/aisleguide/internal/grid"
	"github.com/zjrosen/aisleguide/internal/path"
)

// ErrNotAdjacent is returned for a malformed path whose consecutive cells
// are not 4-adjacent. Paths produced by the path package never trip this.
var ErrNotAdjacent = errors.New("path cells are not adjacent")

// Instruction is one directional cue.
type Instruction int

const (
	Forward Instruction = iota
	Back
	Left
	Right
	Arrived
)

// String returns the cue name for logs and tests.
func (i Instruction) String() string {
	switch i {
	case Forward:
		return "forward"
	case Back:
		return "back"
	case Left:
		return "left"
	case Right:
		return "right"
	case Arrived:
		return "arrived"
	default:
		return "unknown"
	}
}

// Phrase returns the spoken form of the cue.
func (i Instruction) Phrase() string {
	switch i {
	case Forward:
		return "Continue straight ahead."
	case Back:
		return "Head back toward the entrance."
	case Left:
		return "Head left."
	case Right:
		return "Head right."
	case Arrived:
		return "You have arrived."
	default:
		return ""
	}
}

// Encode maps each consecutive cell pair of p to a cue and appends the
// terminal Arrived, yielding exactly len(p) instructions. Encoding is a
// pure function of the path: re-encoding the same path gives the same
// sequence.
func Encode(p path.Path) ([]Instruction, error) {
	if len(p) == 0 {
		return nil, errors.New("empty path")
	}

	out := make([]Instruction, 0, len(p))
	for i := 1; i < len(p); i++ {
		inst, err := forDelta(p[i-1], p[i])
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return append(out, Arrived), nil
}

func forDelta(prev, cur grid.Cell) (Instruction, error) {
	dx, dy := cur.X-prev.X, cur.Y-prev.Y
	switch {
	case dx == 1 && dy == 0:
		return Right, nil
	case dx == -1 && dy == 0:
		return Left, nil
	case dx == 0 && dy == 1:
		return Forward, nil
	case dx == 0 && dy == -1:
		return Back, nil
	default:
		return Arrived, ErrNotAdjacent
	}
}
