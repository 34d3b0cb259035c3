package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/hazardmaze/game/account"
	"github.com/wricardo/mcp-training/hazardmaze/game/engine"
)

var (
	ErrNoActiveMaze = errors.New("no active maze for user")
	ErrUserNotFound = errors.New("user not found")
)

// MazeService defines all maze-related operations
type MazeService interface {
	// Accounts
	Register(ctx context.Context, username, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)

	// Maze lifecycle
	InitMaze(ctx context.Context, userID string, opts InitOptions) (*MazeInfo, error)
	GetMaze(ctx context.Context, userID string) (*MazeInfo, error)
	GetGameState(ctx context.Context, userID string) (*engine.GameState, error)

	// Game operations
	Move(ctx context.Context, userID string, x, y int) (*MoveResult, error)
	GetMoveHistory(ctx context.Context, userID string, opts HistoryOptions) (*HistoryResponse, error)

	// Presets
	ListPresets(ctx context.Context) ([]*PresetInfo, error)
	LoadPreset(ctx context.Context, name string) (*engine.MazeConfig, error)
	SavePreset(ctx context.Context, name string, config *engine.MazeConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Get(userID string) (*Session, error)
	Set(userID string, session *Session)
	UpdateLastAccessed(userID string) error
}

// ConfigManager handles maze preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.MazeConfig, error)
	ListConfigs() ([]*PresetInfo, error)
	GetDefault() *engine.MazeConfig
	SaveConfig(name string, config *engine.MazeConfig) error
}

// AccountStore holds registered players
type AccountStore interface {
	Register(username, password string) (*account.User, error)
	Authenticate(username, password string) (*account.User, error)
	Exists(username string) bool
}

// Session is one player's active maze
type Session struct {
	UserID         string
	Engine         *engine.GameEngine
	Config         *engine.MazeConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
