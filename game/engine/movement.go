package engine

import "time"

// OutcomeKind classifies an accepted move
type OutcomeKind string

const (
	OutcomeMove   OutcomeKind = "move"
	OutcomeGoal   OutcomeKind = "goal"
	OutcomeHazard OutcomeKind = "hazard"
	OutcomeChute  OutcomeKind = "chute"
	OutcomePortal OutcomeKind = "portal"
)

// Outcome is the result of an accepted move
type Outcome struct {
	Kind        OutcomeKind `json:"kind"`
	PlayerPos   Position    `json:"player_pos"`
	Died        bool        `json:"died"`
	ReachedGoal bool        `json:"reached_goal"`
	Message     string      `json:"message"`
}

// Move applies a step toward target. Rejections return a *MoveError and leave gs untouched.
// Hazard contact is not an error: the player is sent back to start and Died is set.
func Move(gs *GameState, target Position) (*Outcome, error) {
	if !gs.InBounds(target) {
		return nil, newMoveError(ErrOutOfBounds, target)
	}
	if ChebyshevDistance(gs.PlayerPos, target) > 1 {
		return nil, newMoveError(ErrNotAdjacent, target)
	}

	cell := gs.CellAt(target)
	switch cell.Kind {
	case Wall:
		return nil, newMoveError(ErrBlocked, target)

	case Hazard:
		gs.PlayerPos = gs.Start
		return &Outcome{Kind: OutcomeHazard, PlayerPos: gs.Start, Died: true}, nil

	case Chute:
		return moveThroughChute(gs, target, cell.Direction)

	case PortalA:
		return teleport(gs, target, gs.PortalB)

	case PortalB:
		return teleport(gs, target, gs.PortalA)
	}

	return settle(gs, target, OutcomeMove), nil
}

// CanEnterChute reports whether a player standing at offset (dx, dy) from a chute facing dir
// is on its receiving side, i.e. behind the chute relative to its facing.
func CanEnterChute(dir Direction, dx, dy int) bool {
	switch dir {
	case Right:
		return dx < 0
	case Left:
		return dx > 0
	case Down:
		return dy < 0
	case Up:
		return dy > 0
	}
	return false
}

func moveThroughChute(gs *GameState, target Position, dir Direction) (*Outcome, error) {
	dx, dy := gs.PlayerPos.X-target.X, gs.PlayerPos.Y-target.Y
	if !CanEnterChute(dir, dx, dy) {
		return nil, newMoveError(ErrChuteWrongSide, target)
	}

	exit := target.Add(dir.Delta())
	if !gs.InBounds(exit) || gs.CellAt(exit).Kind == Wall {
		return nil, newMoveError(ErrChuteExitBlocked, target)
	}

	return settle(gs, exit, OutcomeChute), nil
}

func teleport(gs *GameState, target Position, partner *Position) (*Outcome, error) {
	if partner == nil {
		return nil, newMoveError(ErrMissingPortalPartner, target)
	}
	return settle(gs, *partner, OutcomePortal), nil
}

// settle moves the player to dest and evaluates goal arrival there
func settle(gs *GameState, dest Position, kind OutcomeKind) *Outcome {
	gs.PlayerPos = dest
	out := &Outcome{Kind: kind, PlayerPos: dest}
	if dest == gs.Goal {
		out.ReachedGoal = true
		if kind == OutcomeMove {
			out.Kind = OutcomeGoal
		}
	}
	return out
}

// GenerateLocalView creates list of 8 surrounding cells around the player.
// Out of bounds cells are reported as walls.
func (gs *GameState) GenerateLocalView() []SurroundingCell {
	px, py := gs.PlayerPos.X, gs.PlayerPos.Y

	directions := []struct{ dx, dy int }{
		{0, -1},  // North
		{1, -1},  // North-East
		{1, 0},   // East
		{1, 1},   // South-East
		{0, 1},   // South
		{-1, 1},  // South-West
		{-1, 0},  // West
		{-1, -1}, // North-West
	}

	surroundings := make([]SurroundingCell, len(directions))
	for i, dir := range directions {
		p := Position{X: px + dir.dx, Y: py + dir.dy}
		sc := SurroundingCell{X: p.X, Y: p.Y, Kind: Wall}
		if gs.InBounds(p) {
			cell := gs.CellAt(p)
			sc.Kind, sc.Direction = cell.Kind, cell.Direction
		}
		surroundings[i] = sc
	}

	return surroundings
}

// AddMoveToHistory adds a move attempt to the game's move history
func (gs *GameState) AddMoveToHistory(target, fromPos, toPos Position, outcome string, success bool) {
	entry := MoveHistoryEntry{
		Target:       target,
		FromPosition: fromPos,
		ToPosition:   toPos,
		Outcome:      outcome,
		Timestamp:    time.Now().Unix(),
		Success:      success,
		MoveNumber:   gs.TotalMoves + 1,
	}
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++
}
