package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMap(t *testing.T) *Map {
	t.Helper()
	m, err := New(6, 5,
		[]Cell{{X: 2, Y: 3}, {X: 2, Y: 2}},
		[]Product{
			{Name: "Rice", Cell: Cell{X: 2, Y: 3}, Suggestions: []string{"beans", "oil"}},
			{Name: "milk", Cell: Cell{X: 5, Y: 1}},
		},
	)
	require.NoError(t, err)
	return m
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		height    int
		obstacles []Cell
		products  []Product
		wantErr   string
	}{
		{
			name: "zero width", width: 0, height: 3,
			wantErr: "invalid grid size",
		},
		{
			name: "obstacle out of bounds", width: 3, height: 3,
			obstacles: []Cell{{X: 3, Y: 0}},
			wantErr:   "out of bounds",
		},
		{
			name: "duplicate product name differing in case", width: 3, height: 3,
			products: []Product{
				{Name: "Milk", Cell: Cell{X: 0, Y: 0}},
				{Name: "milk", Cell: Cell{X: 1, Y: 0}},
			},
			wantErr: "duplicate product",
		},
		{
			name: "two products on one cell", width: 3, height: 3,
			products: []Product{
				{Name: "milk", Cell: Cell{X: 1, Y: 1}},
				{Name: "rice", Cell: Cell{X: 1, Y: 1}},
			},
			wantErr: "share cell",
		},
		{
			name: "product out of bounds", width: 3, height: 3,
			products: []Product{{Name: "milk", Cell: Cell{X: 0, Y: -1}}},
			wantErr:  "out of bounds",
		},
		{
			name: "empty product name", width: 3, height: 3,
			products: []Product{{Name: "  ", Cell: Cell{X: 0, Y: 0}}},
			wantErr:  "empty name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.width, tt.height, tt.obstacles, tt.products)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMap_Bounds(t *testing.T) {
	m := testMap(t)

	assert.True(t, m.InBounds(Cell{X: 0, Y: 0}))
	assert.True(t, m.InBounds(Cell{X: 5, Y: 4}))
	assert.False(t, m.InBounds(Cell{X: 6, Y: 0}))
	assert.False(t, m.InBounds(Cell{X: 0, Y: 5}))
	assert.False(t, m.InBounds(Cell{X: -1, Y: 0}))
}

func TestMap_IsObstacle(t *testing.T) {
	m := testMap(t)

	assert.True(t, m.IsObstacle(Cell{X: 2, Y: 3}))
	assert.False(t, m.IsObstacle(Cell{X: 0, Y: 0}))
	assert.False(t, m.IsObstacle(Cell{X: 99, Y: 99}))
}

func TestMap_Locate(t *testing.T) {
	m := testMap(t)

	c, ok := m.Locate("rice")
	require.True(t, ok)
	assert.Equal(t, Cell{X: 2, Y: 3}, c)

	// Case-insensitive lookup; names were normalized at construction.
	c, ok = m.Locate("  MILK ")
	require.True(t, ok)
	assert.Equal(t, Cell{X: 5, Y: 1}, c)

	_, ok = m.Locate("caviar")
	assert.False(t, ok)
}

func TestMap_ProductOrderAndAisles(t *testing.T) {
	m := testMap(t)

	names := m.ProductNames()
	assert.Equal(t, []string{"rice", "milk"}, names, "configuration order must be preserved")

	rice, ok := m.Product("rice")
	require.True(t, ok)
	assert.Equal(t, "C", rice.Aisle, "aisle derived from column when unset")
	assert.Equal(t, []string{"beans", "oil"}, rice.Suggestions)
}

func TestAisleName(t *testing.T) {
	assert.Equal(t, "A", AisleName(0))
	assert.Equal(t, "Z", AisleName(25))
	assert.Equal(t, "A1", AisleName(26))
}

func TestCell_ManhattanTo(t *testing.T) {
	assert.Equal(t, 0, Cell{}.ManhattanTo(Cell{}))
	assert.Equal(t, 4, Cell{X: 0, Y: 0}.ManhattanTo(Cell{X: 2, Y: 2}))
	assert.Equal(t, 3, Cell{X: 2, Y: 1}.ManhattanTo(Cell{X: 0, Y: 0}))
}

func TestParseLayout(t *testing.T) {
	// Rows are top-down: the first row is y=2.
	width, height, obstacles, err := ParseLayout([]string{
		"..O",
		"...",
		"O.",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, width)
	assert.Equal(t, 3, height)
	assert.ElementsMatch(t, []Cell{{X: 2, Y: 2}, {X: 0, Y: 0}}, obstacles)
}

func TestParseLayout_Empty(t *testing.T) {
	_, _, _, err := ParseLayout(nil)
	require.Error(t, err)

	_, _, _, err = ParseLayout([]string{"", ""})
	require.Error(t, err)
}
