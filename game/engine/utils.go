package engine

// ChebyshevDistance is the king-move distance between two positions
func ChebyshevDistance(from, to Position) int {
	dx := abs(from.X - to.X)
	dy := abs(from.Y - to.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// CountCellKind counts the total number of cells of a specific kind in the grid
func CountCellKind(grid [][]Cell, kind CellKind) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell.Kind == kind {
				count++
			}
		}
	}
	return count
}

// BordersAreWalls reports whether every border cell of the grid is a wall
func BordersAreWalls(grid [][]Cell) bool {
	height := len(grid)
	for y, row := range grid {
		width := len(row)
		for x, cell := range row {
			onBorder := x == 0 || y == 0 || x == width-1 || y == height-1
			if onBorder && cell.Kind != Wall {
				return false
			}
		}
	}
	return true
}

// ShortestPath returns the number of steps of the shortest start-goal route under the
// reachability rule, or -1 when there is none.
func ShortestPath(grid [][]Cell, start, goal Position) int {
	if !inBounds(grid, start) || !inBounds(grid, goal) {
		return -1
	}
	dist := map[Position]int{start: 0}
	queue := []Position{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == goal {
			return dist[current]
		}
		for _, d := range orthogonal {
			next := current.Add(d.X, d.Y)
			if _, seen := dist[next]; seen || !inBounds(grid, next) || !grid[next.Y][next.X].Passable() {
				continue
			}
			dist[next] = dist[current] + 1
			queue = append(queue, next)
		}
	}
	return -1
}

// CellChar maps a cell to its single-character ASCII form
func CellChar(cell Cell) string {
	switch cell.Kind {
	case Path:
		return "."
	case Wall:
		return "#"
	case Hazard:
		return "X"
	case PortalA:
		return "A"
	case PortalB:
		return "B"
	case Chute:
		switch cell.Direction {
		case Up:
			return "^"
		case Down:
			return "v"
		case Left:
			return "<"
		case Right:
			return ">"
		}
	}
	return "?"
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
