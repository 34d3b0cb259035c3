package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// Rand is the source of randomness used by the generator. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// NewSeededRand returns a deterministic source for seed, or a time-based one when seed is 0.
// The seed actually used is returned so the maze can be reproduced.
func NewSeededRand(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}

// Options tunes optional generation steps. The zero value generates hazards and portals only.
type Options struct {
	// Chutes is the number of attempts at placing a chute in a straight corridor.
	Chutes int
}

// Generator builds mazes from an injected random source
type Generator struct {
	rng  Rand
	opts Options
}

// NewGenerator creates a generator drawing from rng
func NewGenerator(rng Rand, opts Options) *Generator {
	return &Generator{rng: rng, opts: opts}
}

// NormalizeSize clamps a requested dimension to [MinMazeSize, MaxMazeSize] and rounds it up to odd.
// Non-positive values select DefaultMazeSize.
func NormalizeSize(n int) int {
	if n <= 0 {
		n = DefaultMazeSize
	}
	if n < MinMazeSize {
		n = MinMazeSize
	}
	if n > MaxMazeSize {
		n = MaxMazeSize
	}
	if n%2 == 0 {
		n++
	}
	return n
}

// Generate carves a maze of the normalized size, picks start and goal, then layers hazards,
// optional chutes and portals without breaking reachability from start to goal.
func (g *Generator) Generate(width, height int) (*Layout, error) {
	width, height = NormalizeSize(width), NormalizeSize(height)

	for attempt := 1; attempt <= MaxGenerationAttempts; attempt++ {
		grid := g.carve(width, height)
		start, goal := g.pickEndpoints(width, height)
		grid[start.Y][start.X] = Cell{Kind: Path}
		grid[goal.Y][goal.X] = Cell{Kind: Path}

		if !Reachable(grid, start, goal) {
			continue
		}

		layout := &Layout{
			Grid:   grid,
			Width:  width,
			Height: height,
			Start:  start,
			Goal:   goal,
		}
		g.injectHazards(layout)
		g.injectChutes(layout)
		g.injectPortals(layout)
		return layout, nil
	}

	return nil, fmt.Errorf("%w: no solvable %dx%d maze after %d attempts", ErrGenerationFailed, width, height, MaxGenerationAttempts)
}

// carve fills the grid with walls and runs a randomized depth-first backtracker over
// the odd lattice starting at (1,1).
func (g *Generator) carve(width, height int) [][]Cell {
	grid := make([][]Cell, height)
	for y := range grid {
		grid[y] = make([]Cell, width)
		for x := range grid[y] {
			grid[y][x] = Cell{Kind: Wall}
		}
	}

	var visit func(x, y int)
	visit = func(x, y int) {
		grid[y][x] = Cell{Kind: Path}

		dirs := []Position{{0, -2}, {2, 0}, {0, 2}, {-2, 0}}
		g.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })

		for _, d := range dirs {
			nx, ny := x+d.X, y+d.Y
			if nx > 0 && nx < width-1 && ny > 0 && ny < height-1 && grid[ny][nx].Kind == Wall {
				grid[y+d.Y/2][x+d.X/2] = Cell{Kind: Path}
				visit(nx, ny)
			}
		}
	}
	visit(1, 1)

	return grid
}

// pickEndpoints chooses start and goal among the inner corners and the center
func (g *Generator) pickEndpoints(width, height int) (Position, Position) {
	candidates := []Position{
		{1, 1},
		{width - 2, 1},
		{1, height - 2},
		{width - 2, height - 2},
		{width / 2, height / 2},
	}

	start := candidates[g.rng.Intn(len(candidates))]
	goal := candidates[g.rng.Intn(len(candidates))]
	for goal == start {
		goal = candidates[g.rng.Intn(len(candidates))]
	}
	return start, goal
}

// injectHazards turns interior walls into hazards in a single greedy row-major pass
func (g *Generator) injectHazards(l *Layout) {
	for y := 1; y < l.Height-1; y++ {
		for x := 1; x < l.Width-1; x++ {
			if l.Grid[y][x].Kind != Wall {
				continue
			}
			if g.rng.Float64() >= HazardProbability {
				continue
			}
			l.Grid[y][x] = Cell{Kind: Hazard}
			if !Reachable(l.Grid, l.Start, l.Goal) {
				l.Grid[y][x] = Cell{Kind: Wall}
			}
		}
	}
}

// injectChutes places up to opts.Chutes one-way chutes on straight corridor cells
func (g *Generator) injectChutes(l *Layout) {
	for i := 0; i < g.opts.Chutes; i++ {
		p := g.randomInterior(l)
		if p == l.Start || p == l.Goal || l.Grid[p.Y][p.X].Kind != Path {
			continue
		}

		var facings []Direction
		if isPath(l.Grid, p.Add(-1, 0)) && isPath(l.Grid, p.Add(1, 0)) {
			facings = append(facings, Left, Right)
		}
		if isPath(l.Grid, p.Add(0, -1)) && isPath(l.Grid, p.Add(0, 1)) {
			facings = append(facings, Up, Down)
		}
		if len(facings) == 0 {
			continue
		}

		l.Grid[p.Y][p.X] = Cell{Kind: Chute, Direction: facings[g.rng.Intn(len(facings))]}
		if !Reachable(l.Grid, l.Start, l.Goal) {
			l.Grid[p.Y][p.X] = Cell{Kind: Path}
		}
	}
}

// injectPortals tries to place PortalA then PortalB on random interior path cells.
// When attempts run out after A is placed, A is left without a partner.
func (g *Generator) injectPortals(l *Layout) {
	for attempt := 0; attempt < PortalAttempts && l.PortalB == nil; attempt++ {
		p := g.randomInterior(l)
		if p == l.Start || l.Grid[p.Y][p.X].Kind != Path {
			continue
		}

		kind := PortalA
		if l.PortalA != nil {
			kind = PortalB
		}

		l.Grid[p.Y][p.X] = Cell{Kind: kind}
		if !Reachable(l.Grid, l.Start, l.Goal) {
			l.Grid[p.Y][p.X] = Cell{Kind: Path}
			continue
		}

		placed := p
		if kind == PortalA {
			l.PortalA = &placed
		} else {
			l.PortalB = &placed
		}
	}
}

func (g *Generator) randomInterior(l *Layout) Position {
	return Position{
		X: 1 + g.rng.Intn(l.Width-2),
		Y: 1 + g.rng.Intn(l.Height-2),
	}
}

func isPath(grid [][]Cell, p Position) bool {
	return inBounds(grid, p) && grid[p.Y][p.X].Kind == Path
}
