package grid

import "fmt"

// ParseLayout turns configuration rows into grid dimensions and an
// obstacle list. Rows are written top-down, so the first row is the back
// of the store (highest Y). 'O', '0' and '#' mark shelving; anything else
// is walkable floor. Short rows are padded with floor.
func ParseLayout(rows []string) (width, height int, obstacles []Cell, err error) {
	if len(rows) == 0 {
		return 0, 0, nil, fmt.Errorf("layout has no rows")
	}

	height = len(rows)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return 0, 0, nil, fmt.Errorf("layout rows are empty")
	}

	for i, row := range rows {
		y := height - 1 - i
		for x, ch := range row {
			switch ch {
			case 'O', '0', '#':
				obstacles = append(obstacles, Cell{X: x, Y: y})
			}
		}
	}

	return width, height, obstacles, nil
}
