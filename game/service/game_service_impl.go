package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/hazardmaze/game/engine"
)

// mazeServiceImpl implements the MazeService interface
type mazeServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	accounts AccountStore
	logger   log.FieldLogger

	// mu serializes every session mutation, so moves for one user never interleave
	mu sync.RWMutex
}

// NewMazeService creates a new maze service instance. A nil logger uses the logrus standard logger.
func NewMazeService(sessions SessionManager, configs ConfigManager, accounts AccountStore, logger log.FieldLogger) MazeService {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &mazeServiceImpl{
		sessions: sessions,
		configs:  configs,
		accounts: accounts,
		logger:   logger,
	}
}

// Register creates a new account
func (s *mazeServiceImpl) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.accounts.Register(username, password)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user", user.Username).Info("user registered")
	return &AuthResult{UserID: user.Username, Message: "User registered successfully"}, nil
}

// Login checks credentials
func (s *mazeServiceImpl) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.accounts.Authenticate(username, password)
	if err != nil {
		s.logger.WithField("user", username).Debug("login rejected")
		return nil, err
	}
	return &AuthResult{UserID: user.Username, Message: "Login successful"}, nil
}

// InitMaze generates a fresh maze for userID, replacing any previous one
func (s *mazeServiceImpl) InitMaze(ctx context.Context, userID string, opts InitOptions) (*MazeInfo, error) {
	if userID == "" || !s.accounts.Exists(userID) {
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, userID)
	}

	config, err := s.resolvePreset(opts.Preset)
	if err != nil {
		return nil, err
	}

	width, height := opts.Width, opts.Height
	if width == 0 {
		width = config.Width
	}
	if height == 0 {
		height = config.Height
	}

	eng, err := engine.NewEngineWithSize(config, width, height, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to generate maze: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &Session{
		UserID:         userID,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	s.sessions.Set(userID, sess)

	state := eng.GetState()
	s.logger.WithFields(log.Fields{
		"user":   userID,
		"preset": config.Name,
		"width":  state.Width,
		"height": state.Height,
		"seed":   state.Seed,
	}).Info("maze initialized")

	return newMazeInfo(sess), nil
}

// GetMaze returns the player's current maze
func (s *mazeServiceImpl) GetMaze(ctx context.Context, userID string) (*MazeInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	return newMazeInfo(sess), nil
}

// GetGameState returns the raw engine state with the local view filled in
func (s *mazeServiceImpl) GetGameState(ctx context.Context, userID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}
	state := *sess.Engine.GetState()
	state.LocalView = sess.Engine.GetLocalView()
	return &state, nil
}

// Move attempts to step the player onto (x, y).
// A rejected move returns a result with Success false together with an error wrapping *engine.MoveError.
func (s *mazeServiceImpl) Move(ctx context.Context, userID string, x, y int) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	target := engine.Position{X: x, Y: y}
	logger := s.logger.WithFields(log.Fields{"user": userID, "x": x, "y": y})

	outcome, err := sess.Engine.Move(target)
	if err != nil {
		result := &MoveResult{
			Success:   false,
			PlayerPos: sess.Engine.GetPlayerPosition(),
			Message:   err.Error(),
		}
		var moveErr *engine.MoveError
		if errors.As(err, &moveErr) {
			result.Code = moveErr.Code
			result.Message = moveErr.Message
		}
		logger.WithField("code", result.Code).Debug("move rejected")
		return result, fmt.Errorf("invalid move: %w", err)
	}

	logger.WithFields(log.Fields{
		"outcome": outcome.Kind,
		"to":      fmt.Sprintf("(%d,%d)", outcome.PlayerPos.X, outcome.PlayerPos.Y),
	}).Debug("move accepted")
	if outcome.ReachedGoal {
		logger.Info("goal reached")
	}

	return &MoveResult{
		Success:     true,
		PlayerPos:   outcome.PlayerPos,
		Outcome:     string(outcome.Kind),
		Died:        outcome.Died,
		ReachedGoal: outcome.ReachedGoal,
		Message:     outcome.Message,
	}, nil
}

// GetMoveHistory returns paginated move history
func (s *mazeServiceImpl) GetMoveHistory(ctx context.Context, userID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(userID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListPresets returns available maze presets
func (s *mazeServiceImpl) ListPresets(ctx context.Context) ([]*PresetInfo, error) {
	return s.configs.ListConfigs()
}

// LoadPreset loads a specific preset
func (s *mazeServiceImpl) LoadPreset(ctx context.Context, name string) (*engine.MazeConfig, error) {
	return s.configs.LoadConfig(name)
}

// SavePreset saves a preset to the config directory
func (s *mazeServiceImpl) SavePreset(ctx context.Context, name string, config *engine.MazeConfig) error {
	return s.configs.SaveConfig(name, config)
}

// session looks up the user's session and touches it. Callers hold s.mu.
func (s *mazeServiceImpl) session(userID string) (*Session, error) {
	sess, err := s.sessions.Get(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNoActiveMaze, userID)
	}
	s.sessions.UpdateLastAccessed(userID)
	return sess, nil
}

func (s *mazeServiceImpl) resolvePreset(name string) (*engine.MazeConfig, error) {
	if name == "" {
		return s.configs.GetDefault(), nil
	}

	config, err := s.configs.LoadConfig(name)
	if err == nil {
		return config, nil
	}

	if strings.Contains(err.Error(), "configuration not found") {
		available, listErr := s.configs.ListConfigs()
		if listErr == nil && len(available) > 0 {
			ids := make([]string, 0, len(available))
			for _, p := range available {
				ids = append(ids, p.PresetID)
			}
			return nil, fmt.Errorf("preset '%s' not found. Available presets: %v", name, ids)
		}
		return nil, fmt.Errorf("preset '%s' not found. Use /api/presets to list available presets", name)
	}
	return nil, fmt.Errorf("failed to load preset %s: %w", name, err)
}

func newMazeInfo(sess *Session) *MazeInfo {
	state := sess.Engine.GetState()
	info := &MazeInfo{
		UserID:      sess.UserID,
		Maze:        state.Grid,
		Width:       state.Width,
		Height:      state.Height,
		Start:       state.Start,
		Goal:        state.Goal,
		PortalA:     state.PortalA,
		PortalB:     state.PortalB,
		PlayerPos:   state.PlayerPos,
		Seed:        state.Seed,
		Preset:      state.ConfigName,
		Message:     state.Message,
		Deaths:      state.Deaths,
		GoalReached: state.GoalReached,
		TotalMoves:  state.TotalMoves,
		LocalView:   sess.Engine.GetLocalView(),
		CreatedAt:   sess.CreatedAt,
	}
	if last := sess.Engine.GetLastMove(); last != nil {
		entry := *last
		info.LastMove = &entry
	}
	return info
}
