// Package grid models the store floor: a rectangular grid of cells with a
// fixed obstacle set (shelving) and a table of named products placed on
// cells. A Map is built once from configuration and never mutated.
package grid

import (
	"fmt"
	"strings"
)

// Cell is a grid coordinate. X grows to the right, Y grows forward
// (toward the back of the store).
type Cell struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Add returns c offset by d.
func (c Cell) Add(d Cell) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// ManhattanTo returns the Manhattan distance to o.
func (c Cell) ManhattanTo(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// String formats the cell as "(x,y)".
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Product is a named item placed on a cell. Aisle is the display name of
// the column the product sits in; Suggestions are companion items spoken
// on arrival.
type Product struct {
	Name        string
	Cell        Cell
	Aisle       string
	Suggestions []string
}

// Map is the static store layout.
type Map struct {
	width     int
	height    int
	obstacles map[Cell]struct{}
	products  []Product
	byName    map[string]Product
}

// New validates and builds a Map. Product names are case-normalized and
// must be unique; no two products may share a cell; all cells must be in
// bounds. Product cells are allowed to be obstacles (items sit on shelves).
func New(width, height int, obstacles []Cell, products []Product) (*Map, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}

	m := &Map{
		width:     width,
		height:    height,
		obstacles: make(map[Cell]struct{}, len(obstacles)),
		byName:    make(map[string]Product, len(products)),
	}

	for _, c := range obstacles {
		if !m.InBounds(c) {
			return nil, fmt.Errorf("obstacle %s out of bounds", c)
		}
		m.obstacles[c] = struct{}{}
	}

	cells := make(map[Cell]string, len(products))
	for _, p := range products {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" {
			return nil, fmt.Errorf("product with empty name at %s", p.Cell)
		}
		if _, dup := m.byName[name]; dup {
			return nil, fmt.Errorf("duplicate product %q", name)
		}
		if !m.InBounds(p.Cell) {
			return nil, fmt.Errorf("product %q cell %s out of bounds", name, p.Cell)
		}
		if other, taken := cells[p.Cell]; taken {
			return nil, fmt.Errorf("products %q and %q share cell %s", other, name, p.Cell)
		}

		p.Name = name
		if p.Aisle == "" {
			p.Aisle = AisleName(p.Cell.X)
		}
		cells[p.Cell] = name
		m.byName[name] = p
		m.products = append(m.products, p)
	}

	return m, nil
}

// AisleName letters a column: 0 -> A, 25 -> Z, 26 -> A1 and so on.
func AisleName(x int) string {
	letter := string(rune('A' + x%26))
	if x < 26 {
		return letter
	}
	return fmt.Sprintf("%s%d", letter, x/26)
}

// Width returns the grid width.
func (m *Map) Width() int { return m.width }

// Height returns the grid height.
func (m *Map) Height() int { return m.height }

// InBounds reports whether c lies on the grid.
func (m *Map) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < m.width && c.Y >= 0 && c.Y < m.height
}

// IsObstacle reports whether c is impassable. Out-of-bounds cells are not
// obstacles; callers check InBounds separately.
func (m *Map) IsObstacle(c Cell) bool {
	_, ok := m.obstacles[c]
	return ok
}

// Locate returns the cell of the named product (case-insensitive).
func (m *Map) Locate(name string) (Cell, bool) {
	p, ok := m.Product(name)
	return p.Cell, ok
}

// Product returns the full product record for name (case-insensitive).
func (m *Map) Product(name string) (Product, bool) {
	p, ok := m.byName[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Products returns the products in configuration order.
func (m *Map) Products() []Product {
	out := make([]Product, len(m.products))
	copy(out, m.products)
	return out
}

// ProductNames returns product names in configuration order. The
// interpreter's first-match-wins rule depends on this ordering.
func (m *Map) ProductNames() []string {
	names := make([]string, len(m.products))
	for i, p := range m.products {
		names[i] = p.Name
	}
	return names
}

// Obstacles returns a copy of the obstacle set for rendering.
func (m *Map) Obstacles() []Cell {
	out := make([]Cell, 0, len(m.obstacles))
	for c := range m.obstacles {
		out = append(out, c)
	}
	return out
}
