package engine

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds          = errors.New("target out of bounds")
	ErrNotAdjacent          = errors.New("target not adjacent")
	ErrBlocked              = errors.New("target is a wall")
	ErrChuteWrongSide       = errors.New("chute entered from the wrong side")
	ErrChuteExitBlocked     = errors.New("chute exit blocked")
	ErrMissingPortalPartner = errors.New("portal has no partner")
	ErrGenerationFailed     = errors.New("maze generation failed")
)

// Rejection codes reported to clients alongside MoveError
const (
	CodeOutOfBounds          = "out_of_bounds"
	CodeNotAdjacent          = "not_adjacent"
	CodeBlocked              = "blocked"
	CodeChuteWrongSide       = "chute_wrong_side"
	CodeChuteExitBlocked     = "chute_exit_blocked"
	CodeMissingPortalPartner = "missing_portal_partner"
)

var codes = map[error]string{
	ErrOutOfBounds:          CodeOutOfBounds,
	ErrNotAdjacent:          CodeNotAdjacent,
	ErrBlocked:              CodeBlocked,
	ErrChuteWrongSide:       CodeChuteWrongSide,
	ErrChuteExitBlocked:     CodeChuteExitBlocked,
	ErrMissingPortalPartner: CodeMissingPortalPartner,
}

// MoveError is a rejected move. The session is never modified when one is returned.
type MoveError struct {
	Code    string
	Target  Position
	Message string
	Err     error
}

func newMoveError(err error, target Position) *MoveError {
	return &MoveError{Code: codes[err], Target: target, Err: err}
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move to (%d,%d) rejected: %v", e.Target.X, e.Target.Y, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}
