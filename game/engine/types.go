package engine

// CellKind represents the different tile types of the maze grid
type CellKind string

const (
	Path    CellKind = "path"
	Wall    CellKind = "wall"
	Hazard  CellKind = "hazard"
	Chute   CellKind = "chute"
	PortalA CellKind = "portal_a"
	PortalB CellKind = "portal_b"
)

// Direction is the facing of a chute
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

const (
	// Validation constants
	MinMazeSize     = 7
	MaxMazeSize     = 51
	DefaultMazeSize = 15
	MaxChutes       = 50

	// Generation constants
	HazardProbability     = 0.3
	PortalAttempts        = 100
	MaxGenerationAttempts = 100

	WebSocketBufferSize = 256
)

// Delta returns the unit step of the direction
func (d Direction) Delta() (int, int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Cell represents a single grid cell
type Cell struct {
	Kind      CellKind  `json:"kind"`
	Direction Direction `json:"direction,omitempty"` // Chutes only
}

// Passable reports whether the reachability check may walk through the cell.
// Portals are treated as solid here; see Reachable.
func (c Cell) Passable() bool {
	return c.Kind == Path || c.Kind == Chute
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position shifted by dx, dy
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// SurroundingCell represents a cell with its absolute position
type SurroundingCell struct {
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Kind      CellKind  `json:"kind"`
	Direction Direction `json:"direction,omitempty"`
}

// Layout is the output of maze generation
type Layout struct {
	Grid    [][]Cell  `json:"maze"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Start   Position  `json:"start"`
	Goal    Position  `json:"goal"`
	PortalA *Position `json:"portal_a,omitempty"`
	PortalB *Position `json:"portal_b,omitempty"`
}

// GameState represents the complete state of one player's maze session
type GameState struct {
	Grid        [][]Cell           `json:"maze"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Start       Position           `json:"start"`
	PlayerPos   Position           `json:"player_pos"`
	Goal        Position           `json:"goal"`
	PortalA     *Position          `json:"portal_a,omitempty"`
	PortalB     *Position          `json:"portal_b,omitempty"`
	Seed        int64              `json:"seed"`
	ConfigName  string             `json:"config_name"`
	Message     string             `json:"message"`
	Deaths      int                `json:"deaths"`
	GoalReached int                `json:"goal_reached"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`
	LocalView   []SurroundingCell  `json:"local_view,omitempty"`
}

// MoveHistoryEntry represents a single move attempt in the game history
type MoveHistoryEntry struct {
	Target       Position `json:"target"`
	FromPosition Position `json:"from_position"`
	ToPosition   Position `json:"to_position"`
	Outcome      string   `json:"outcome"`
	Timestamp    int64    `json:"timestamp"`
	Success      bool     `json:"success"`
	MoveNumber   int      `json:"move_number"`
}

// NewGameState builds a fresh session state from a generated layout
func NewGameState(layout *Layout) *GameState {
	return &GameState{
		Grid:        layout.Grid,
		Width:       layout.Width,
		Height:      layout.Height,
		Start:       layout.Start,
		PlayerPos:   layout.Start,
		Goal:        layout.Goal,
		PortalA:     layout.PortalA,
		PortalB:     layout.PortalB,
		MoveHistory: []MoveHistoryEntry{},
	}
}

// InBounds reports whether p lies inside the grid
func (gs *GameState) InBounds(p Position) bool {
	return inBounds(gs.Grid, p)
}

// CellAt returns the cell at p; callers check bounds first
func (gs *GameState) CellAt(p Position) Cell {
	return gs.Grid[p.Y][p.X]
}

func inBounds(grid [][]Cell, p Position) bool {
	if p.Y < 0 || p.Y >= len(grid) {
		return false
	}
	return p.X >= 0 && p.X < len(grid[p.Y])
}
