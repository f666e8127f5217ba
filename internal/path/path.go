// Package path finds shortest walking routes across the store grid with a
// breadth-first search. Results are deterministic: neighbor cells are
// always explored in the same fixed order, so equal-length routes resolve
// the same way every run.
package path

import (
	"errors"

	"github.com/zjrosen/aisleguide/internal/grid"
)

// ErrNoPath means the goal is unreachable from the start (for example,
// fully enclosed by shelving). This is a normal outcome, not a fault.
var ErrNoPath = errors.New("no path to destination")

// ErrNoAccessibleCell means the goal is a shelf cell and none of its four
// neighbors is walkable, so there is nowhere to guide the user to.
var ErrNoAccessibleCell = errors.New("destination has no accessible neighbor")

// neighborOrder fixes the exploration order: down, up, right, left.
// +Y is forward (toward the back of the store), so down is (0,-1).
var neighborOrder = [4]grid.Cell{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: 1, Y: 0},
	{X: -1, Y: 0},
}

// Path is an ordered cell sequence where consecutive cells are 4-adjacent.
// Only the first cell (the user's current position) may be an obstacle.
type Path []grid.Cell

// Goal returns the final cell of the path.
func (p Path) Goal() grid.Cell {
	return p[len(p)-1]
}

// Steps returns the number of movements the path requires.
func (p Path) Steps() int {
	return len(p) - 1
}

// Find returns a shortest obstacle-free path from start to goal.
//
// If goal is itself an obstacle (the product sits on a shelf), the
// effective goal becomes the first walkable 4-neighbor in the fixed scan
// order; with no walkable neighbor the search fails immediately with
// ErrNoAccessibleCell. ErrNoPath is returned when the search exhausts all
// reachable cells.
func Find(m *grid.Map, start, goal grid.Cell) (Path, error) {
	if !m.InBounds(start) || !m.InBounds(goal) {
		return nil, ErrNoPath
	}

	if m.IsObstacle(goal) {
		substitute, ok := accessibleNeighbor(m, goal)
		if !ok {
			return nil, ErrNoAccessibleCell
		}
		goal = substitute
	}

	if start == goal {
		return Path{start}, nil
	}

	// Standard BFS with parent back-pointers. Cells are marked visited at
	// enqueue time so each is processed at most once.
	visited := map[grid.Cell]struct{}{start: {}}
	parent := make(map[grid.Cell]grid.Cell)
	queue := []grid.Cell{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur == goal {
			return reconstruct(parent, start, goal), nil
		}

		for _, d := range neighborOrder {
			next := cur.Add(d)
			if !m.InBounds(next) || m.IsObstacle(next) {
				continue
			}
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			parent[next] = cur
			queue = append(queue, next)
		}
	}

	return nil, ErrNoPath
}

// accessibleNeighbor scans the fixed neighbor order for the first walkable
// cell adjacent to c.
func accessibleNeighbor(m *grid.Map, c grid.Cell) (grid.Cell, bool) {
	for _, d := range neighborOrder {
		n := c.Add(d)
		if m.InBounds(n) && !m.IsObstacle(n) {
			return n, true
		}
	}
	return grid.Cell{}, false
}

// reconstruct walks parent pointers from goal back to start and reverses.
func reconstruct(parent map[grid.Cell]grid.Cell, start, goal grid.Cell) Path {
	var rev Path
	for c := goal; c != start; c = parent[c] {
		rev = append(rev, c)
	}
	rev = append(rev, start)

	p := make(Path, len(rev))
	for i, c := range rev {
		p[len(rev)-1-i] = c
	}
	return p
}
