package service

import (
	"time"

	"github.com/wricardo/mcp-training/hazardmaze/game/engine"
)

// AuthResult is returned by Register and Login
type AuthResult struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// InitOptions selects the maze to generate. Zero values fall back to the preset.
type InitOptions struct {
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Preset string `json:"preset,omitempty"`
	Seed   int64  `json:"seed,omitempty"`
}

// MazeInfo is the client view of a player's maze
type MazeInfo struct {
	UserID      string                   `json:"userId"`
	Maze        [][]engine.Cell          `json:"maze"`
	Width       int                      `json:"width"`
	Height      int                      `json:"height"`
	Start       engine.Position          `json:"start"`
	Goal        engine.Position          `json:"goal"`
	PortalA     *engine.Position         `json:"portalA,omitempty"`
	PortalB     *engine.Position         `json:"portalB,omitempty"`
	PlayerPos   engine.Position          `json:"playerPos"`
	Seed        int64                    `json:"seed"`
	Preset      string                   `json:"preset"`
	Message     string                   `json:"message"`
	Deaths      int                      `json:"deaths"`
	GoalReached int                      `json:"goalReached"`
	TotalMoves  int                      `json:"totalMoves"`
	LastMove    *engine.MoveHistoryEntry `json:"lastMove,omitempty"`
	LocalView   []engine.SurroundingCell `json:"localView"`
	CreatedAt   time.Time                `json:"createdAt"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool            `json:"success"`
	PlayerPos   engine.Position `json:"playerPos"`
	Outcome     string          `json:"outcome,omitempty"`
	Died        bool            `json:"died"`
	ReachedGoal bool            `json:"reachedGoal"`
	Message     string          `json:"message"`
	Code        string          `json:"code,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// PresetInfo describes a maze preset available for InitMaze
type PresetInfo struct {
	Filename    string `json:"filename"`
	PresetID    string `json:"preset_id"` // The identifier to pass as "preset"
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Chutes      int    `json:"chutes"`
}
