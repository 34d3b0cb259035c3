package engine

import "errors"

// Engine provides the main interface for maze operations
type Engine interface {
	// Game state management
	GetState() *GameState
	GetPlayerPosition() Position

	// Movement operations
	Move(target Position) (*Outcome, error)

	// Configuration
	GetConfig() *MazeConfig

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Local view
	GetLocalView() []SurroundingCell
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *MazeConfig
}

// NewEngine validates the configuration and generates a maze for it from seed.
// A zero seed is replaced by a time-based one; the seed used is stored in the state.
func NewEngine(config *MazeConfig, seed int64) (*GameEngine, error) {
	return NewEngineWithSize(config, config.Width, config.Height, seed)
}

// NewEngineWithSize is NewEngine with the preset dimensions overridden.
// Width and height are normalized, so any integer is accepted.
func NewEngineWithSize(config *MazeConfig, width, height int, seed int64) (*GameEngine, error) {
	if err := ValidateMazeConfig(config); err != nil {
		return nil, err
	}

	rng, seed := NewSeededRand(seed)
	layout, err := NewGenerator(rng, Options{Chutes: config.Chutes}).Generate(width, height)
	if err != nil {
		return nil, err
	}

	e := NewEngineFromLayout(config, layout)
	e.state.Seed = seed
	return e, nil
}

// NewEngineFromLayout wraps an existing layout, e.g. a hand-built maze
func NewEngineFromLayout(config *MazeConfig, layout *Layout) *GameEngine {
	if config == nil {
		config = DefaultMazeConfig()
	}
	config = config.WithDefaults()

	state := NewGameState(layout)
	state.ConfigName = config.Name
	state.Message = config.Messages.Welcome

	return &GameEngine{state: state, config: config}
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.state.PlayerPos
}

// GetConfig returns the preset the maze was generated from
func (e *GameEngine) GetConfig() *MazeConfig {
	return e.config
}

// Move attempts to move the player onto target. On success the outcome carries the
// configured message and the attempt is recorded in history; a rejection returns a
// *MoveError with its message filled and leaves the state untouched.
func (e *GameEngine) Move(target Position) (*Outcome, error) {
	prevPos := e.state.PlayerPos

	outcome, err := Move(e.state, target)
	if err != nil {
		var moveErr *MoveError
		if errors.As(err, &moveErr) {
			moveErr.Message = e.rejectionMessage(moveErr.Err)
		}
		return nil, err
	}

	outcome.Message = e.outcomeMessage(outcome)
	e.state.Message = outcome.Message
	if outcome.Died {
		e.state.Deaths++
	}
	if outcome.ReachedGoal {
		e.state.GoalReached++
	}
	e.state.AddMoveToHistory(target, prevPos, outcome.PlayerPos, string(outcome.Kind), true)

	return outcome, nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// GetLocalView returns the local view around the player
func (e *GameEngine) GetLocalView() []SurroundingCell {
	return e.state.GenerateLocalView()
}

func (e *GameEngine) outcomeMessage(o *Outcome) string {
	m := e.config.Messages
	if o.ReachedGoal {
		return m.GoalReached
	}
	switch o.Kind {
	case OutcomeHazard:
		return m.HazardDeath
	case OutcomeChute:
		return m.ChuteRide
	case OutcomePortal:
		return m.Teleported
	}
	return m.Moved
}

// rejectionMessage returns the configured text for a move rejection sentinel
func (e *GameEngine) rejectionMessage(err error) string {
	m := e.config.Messages
	switch {
	case errors.Is(err, ErrOutOfBounds):
		return m.OutOfBounds
	case errors.Is(err, ErrNotAdjacent):
		return m.NotAdjacent
	case errors.Is(err, ErrBlocked):
		return m.HitWall
	case errors.Is(err, ErrChuteWrongSide):
		return m.ChuteWrongSide
	case errors.Is(err, ErrChuteExitBlocked):
		return m.ChuteExitBlocked
	case errors.Is(err, ErrMissingPortalPartner):
		return m.MissingPortalPartner
	}
	return err.Error()
}
