package engine

import "github.com/zyedidia/generic/mapset"

var orthogonal = []Position{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// Reachable runs a breadth-first search from start and reports whether goal can be
// reached through Path and Chute cells.
//
// This is a structural filter used during generation only. Chutes are walked in both
// directions and portals are solid, so it does not simulate Move: a maze can pass this
// check through a chute that Move would refuse to enter from that side.
func Reachable(grid [][]Cell, start, goal Position) bool {
	if !inBounds(grid, start) || !inBounds(grid, goal) {
		return false
	}
	if start == goal {
		return true
	}

	visited := mapset.New[Position]()
	visited.Put(start)
	queue := []Position{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range orthogonal {
			next := current.Add(d.X, d.Y)
			if !inBounds(grid, next) || visited.Has(next) {
				continue
			}
			if !grid[next.Y][next.X].Passable() {
				continue
			}
			if next == goal {
				return true
			}
			visited.Put(next)
			queue = append(queue, next)
		}
	}

	return false
}
