package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/wricardo/mcp-training/hazardmaze/game/account"
	"github.com/wricardo/mcp-training/hazardmaze/game/engine"
	"github.com/wricardo/mcp-training/hazardmaze/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	mu       sync.Mutex
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{sessions: make(map[string]*service.Session)}
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) Set(id string, session *service.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = session
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errors.New("session not found")
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.MazeConfig
}

func NewMockConfigManager() *MockConfigManager {
	small := &engine.MazeConfig{
		Name:        "small",
		Description: "7x7 test preset",
		Width:       7,
		Height:      7,
	}
	return &MockConfigManager{
		configs: map[string]*engine.MazeConfig{
			"classic": engine.DefaultMazeConfig(),
			"small":   small,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.MazeConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, errors.New("configuration not found")
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.PresetInfo, error) {
	return []*service.PresetInfo{
		{Filename: "classic.json", PresetID: "classic", Name: "classic", Width: 15, Height: 15},
		{Filename: "small.json", PresetID: "small", Name: "small", Width: 7, Height: 7},
	}, nil
}

func (m *MockConfigManager) GetDefault() *engine.MazeConfig {
	return m.configs["classic"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.MazeConfig) error {
	m.configs[name] = config
	return nil
}

func quietLogger() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestService(t *testing.T) (service.MazeService, *MockSessionManager) {
	t.Helper()
	sessions := NewMockSessionManager()
	accounts := account.NewStore(bcrypt.MinCost)
	svc := service.NewMazeService(sessions, NewMockConfigManager(), accounts, quietLogger())

	if _, err := svc.Register(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	return svc, sessions
}

// installOpenMaze gives userID a hand-built 7x7 maze: open interior, start (1,1), goal (5,5)
func installOpenMaze(sessions *MockSessionManager, userID string) *engine.GameEngine {
	grid := make([][]engine.Cell, 7)
	for y := range grid {
		grid[y] = make([]engine.Cell, 7)
		for x := range grid[y] {
			kind := engine.Path
			if x == 0 || y == 0 || x == 6 || y == 6 {
				kind = engine.Wall
			}
			grid[y][x] = engine.Cell{Kind: kind}
		}
	}
	grid[3][1] = engine.Cell{Kind: engine.Hazard}

	layout := &engine.Layout{
		Grid:   grid,
		Width:  7,
		Height: 7,
		Start:  engine.Position{X: 1, Y: 1},
		Goal:   engine.Position{X: 5, Y: 5},
	}
	eng := engine.NewEngineFromLayout(nil, layout)
	sessions.Set(userID, &service.Session{
		UserID:         userID,
		Engine:         eng,
		Config:         eng.GetConfig(),
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	})
	return eng
}

func TestMazeService_RegisterLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		action   func() (*service.AuthResult, error)
		wantErr  error
		wantUser string
	}{
		{"register new", func() (*service.AuthResult, error) { return svc.Register(ctx, "bob", "pw") }, nil, "bob"},
		{"register duplicate", func() (*service.AuthResult, error) { return svc.Register(ctx, "alice", "pw") }, account.ErrUserExists, ""},
		{"register missing", func() (*service.AuthResult, error) { return svc.Register(ctx, "", "pw") }, account.ErrMissingCredentials, ""},
		{"login valid", func() (*service.AuthResult, error) { return svc.Login(ctx, "alice", "secret") }, nil, "alice"},
		{"login wrong password", func() (*service.AuthResult, error) { return svc.Login(ctx, "alice", "nope") }, account.ErrInvalidCredentials, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.action()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && result.UserID != tt.wantUser {
				t.Errorf("Expected user %s, got %s", tt.wantUser, result.UserID)
			}
		})
	}
}

func TestMazeService_UserIDIsExactKey(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, " bob ", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if registered.UserID != " bob " {
		t.Fatalf("Expected userId %q, got %q", " bob ", registered.UserID)
	}

	if _, err := svc.InitMaze(ctx, registered.UserID, service.InitOptions{Seed: 3}); err != nil {
		t.Fatalf("InitMaze failed: %v", err)
	}
	if _, err := svc.GetMaze(ctx, registered.UserID); err != nil {
		t.Errorf("Expected maze under the returned userId, got %v", err)
	}
	if _, err := sessions.Get(" bob "); err != nil {
		t.Errorf("Expected session stored under the exact key, got %v", err)
	}

	if _, err := svc.InitMaze(ctx, "bob", service.InitOptions{Seed: 3}); !errors.Is(err, service.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound for trimmed id, got %v", err)
	}
}

func TestMazeService_InitMaze(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		opts       service.InitOptions
		wantErr    string
		wantW      int
		wantH      int
		wantPreset string
	}{
		{"default preset", "alice", service.InitOptions{Seed: 5}, "", 15, 15, "classic"},
		{"named preset", "alice", service.InitOptions{Preset: "small", Seed: 5}, "", 7, 7, "small"},
		{"explicit size normalized", "alice", service.InitOptions{Width: 8, Height: 60, Seed: 5}, "", 9, 51, "classic"},
		{"unknown user", "nobody", service.InitOptions{}, "user not found", 0, 0, ""},
		{"empty user", "", service.InitOptions{}, "user not found", 0, 0, ""},
		{"unknown preset", "alice", service.InitOptions{Preset: "huge"}, "Available presets: [classic small]", 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, sessions := newTestService(t)

			info, err := svc.InitMaze(context.Background(), tt.userID, tt.opts)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if info.Width != tt.wantW || info.Height != tt.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, info.Width, info.Height)
			}
			if info.Preset != tt.wantPreset {
				t.Errorf("Expected preset %s, got %s", tt.wantPreset, info.Preset)
			}
			if info.PlayerPos != info.Start {
				t.Error("Expected player at start")
			}
			if info.Seed != 5 {
				t.Errorf("Expected seed 5, got %d", info.Seed)
			}
			if len(info.LocalView) != 8 {
				t.Errorf("Expected local view, got %d cells", len(info.LocalView))
			}
			if _, err := sessions.Get(tt.userID); err != nil {
				t.Error("Expected session to be stored")
			}
		})
	}
}

func TestMazeService_InitMazeUnknownUserSentinel(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.InitMaze(context.Background(), "nobody", service.InitOptions{})
	if !errors.Is(err, service.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestMazeService_InitMazeReplaces(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()

	old := installOpenMaze(sessions, "alice")
	if _, err := svc.Move(ctx, "alice", 2, 2); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	info, err := svc.InitMaze(ctx, "alice", service.InitOptions{Preset: "small", Seed: 9})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.TotalMoves != 0 || info.PlayerPos != info.Start {
		t.Errorf("Expected a fresh maze, got %+v", info)
	}
	sess, _ := sessions.Get("alice")
	if sess.Engine == old {
		t.Error("Expected the old engine to be replaced")
	}
}

func TestMazeService_GetMaze(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()

	if _, err := svc.GetMaze(ctx, "alice"); !errors.Is(err, service.ErrNoActiveMaze) {
		t.Fatalf("Expected ErrNoActiveMaze, got %v", err)
	}

	installOpenMaze(sessions, "alice")
	info, err := svc.GetMaze(ctx, "alice")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.UserID != "alice" || info.Goal != (engine.Position{X: 5, Y: 5}) {
		t.Errorf("Unexpected maze info %+v", info)
	}
	if len(info.Maze) != 7 || len(info.Maze[0]) != 7 {
		t.Error("Expected the 7x7 grid")
	}
	if info.LastMove != nil {
		t.Errorf("Expected no last move on a fresh maze, got %+v", info.LastMove)
	}
}

func TestMazeService_GetMazeLastMove(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()
	installOpenMaze(sessions, "alice")

	if _, err := svc.Move(ctx, "alice", 2, 2); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	// rejected moves are not recorded
	svc.Move(ctx, "alice", 5, 5)

	info, err := svc.GetMaze(ctx, "alice")
	if err != nil {
		t.Fatalf("GetMaze failed: %v", err)
	}
	if info.LastMove == nil {
		t.Fatal("Expected last move to be reported")
	}
	if info.LastMove.Target != (engine.Position{X: 2, Y: 2}) || info.LastMove.ToPosition != (engine.Position{X: 2, Y: 2}) {
		t.Errorf("Unexpected last move %+v", info.LastMove)
	}
	if info.LastMove.MoveNumber != 1 {
		t.Errorf("Expected move number 1, got %d", info.LastMove.MoveNumber)
	}
}

func TestMazeService_Move(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(eng *engine.GameEngine)
		x, y        int
		wantSuccess bool
		wantPos     engine.Position
		wantCode    string
		wantDied    bool
		wantGoal    bool
	}{
		{
			name:        "diagonal step",
			x:           2,
			y:           2,
			wantSuccess: true,
			wantPos:     engine.Position{X: 2, Y: 2},
		},
		{
			name:        "two cells away",
			x:           1,
			y:           3,
			wantSuccess: false,
			wantPos:     engine.Position{X: 1, Y: 1},
			wantCode:    engine.CodeNotAdjacent,
		},
		{
			name:        "wall",
			x:           0,
			y:           1,
			wantSuccess: false,
			wantPos:     engine.Position{X: 1, Y: 1},
			wantCode:    engine.CodeBlocked,
		},
		{
			name:        "out of bounds",
			x:           -1,
			y:           0,
			wantSuccess: false,
			wantPos:     engine.Position{X: 1, Y: 1},
			wantCode:    engine.CodeOutOfBounds,
		},
		{
			name:        "hazard",
			setup:       func(eng *engine.GameEngine) { eng.GetState().PlayerPos = engine.Position{X: 2, Y: 3} },
			x:           1,
			y:           3,
			wantSuccess: true,
			wantPos:     engine.Position{X: 1, Y: 1},
			wantDied:    true,
		},
		{
			name:        "goal",
			setup:       func(eng *engine.GameEngine) { eng.GetState().PlayerPos = engine.Position{X: 4, Y: 4} },
			x:           5,
			y:           5,
			wantSuccess: true,
			wantPos:     engine.Position{X: 5, Y: 5},
			wantGoal:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, sessions := newTestService(t)
			eng := installOpenMaze(sessions, "alice")
			if tt.setup != nil {
				tt.setup(eng)
			}

			result, err := svc.Move(context.Background(), "alice", tt.x, tt.y)
			if result == nil {
				t.Fatalf("Expected a result, got error %v", err)
			}
			if result.Success != tt.wantSuccess {
				t.Fatalf("Expected success=%v, got %v (err %v)", tt.wantSuccess, result.Success, err)
			}
			if tt.wantSuccess && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !tt.wantSuccess {
				var moveErr *engine.MoveError
				if !errors.As(err, &moveErr) {
					t.Fatalf("Expected *engine.MoveError, got %v", err)
				}
				if result.Message == "" {
					t.Error("Expected rejection message")
				}
			}
			if result.PlayerPos != tt.wantPos {
				t.Errorf("Expected position %+v, got %+v", tt.wantPos, result.PlayerPos)
			}
			if result.Code != tt.wantCode {
				t.Errorf("Expected code %q, got %q", tt.wantCode, result.Code)
			}
			if result.Died != tt.wantDied || result.ReachedGoal != tt.wantGoal {
				t.Errorf("Unexpected flags: died=%v goal=%v", result.Died, result.ReachedGoal)
			}
		})
	}
}

func TestMazeService_MoveWithoutMaze(t *testing.T) {
	svc, _ := newTestService(t)
	result, err := svc.Move(context.Background(), "alice", 1, 1)
	if result != nil || !errors.Is(err, service.ErrNoActiveMaze) {
		t.Errorf("Expected ErrNoActiveMaze and no result, got %+v, %v", result, err)
	}
}

func TestMazeService_ConcurrentMoves(t *testing.T) {
	svc, sessions := newTestService(t)
	installOpenMaze(sessions, "alice")

	// Alternate between two neighbouring cells from many goroutines
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x := 1 + i%2
			svc.Move(context.Background(), "alice", x, 2)
		}(i)
	}
	wg.Wait()

	history, err := svc.GetMoveHistory(context.Background(), "alice", service.HistoryOptions{Limit: 100, Order: "asc"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i, move := range history.Moves {
		if move.MoveNumber != i+1 {
			t.Fatalf("Move numbers out of sequence at %d: %d", i, move.MoveNumber)
		}
		if i > 0 && move.FromPosition != history.Moves[i-1].ToPosition {
			t.Fatalf("Move %d starts at %+v but previous ended at %+v", i+1, move.FromPosition, history.Moves[i-1].ToPosition)
		}
	}
}

func TestMazeService_GetMoveHistory(t *testing.T) {
	tests := []struct {
		name          string
		opts          service.HistoryOptions
		wantCount     int
		wantFirstMove int
		wantPages     int
		wantNext      bool
	}{
		{"defaults newest first", service.HistoryOptions{}, 5, 5, 1, false},
		{"ascending", service.HistoryOptions{Order: "asc"}, 5, 1, 1, false},
		{"paged desc", service.HistoryOptions{Limit: 2, Page: 1}, 2, 5, 3, true},
		{"last page desc", service.HistoryOptions{Limit: 2, Page: 3}, 1, 1, 3, false},
		{"paged asc", service.HistoryOptions{Limit: 2, Page: 2, Order: "asc"}, 2, 3, 3, true},
		{"beyond last page", service.HistoryOptions{Limit: 2, Page: 9}, 0, 0, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, sessions := newTestService(t)
			installOpenMaze(sessions, "alice")
			ctx := context.Background()

			// 5 accepted moves and one rejection, which is not recorded
			for _, p := range [][2]int{{2, 1}, {3, 1}, {3, 2}, {3, 3}, {4, 4}, {0, 0}} {
				svc.Move(ctx, "alice", p[0], p[1])
			}

			history, err := svc.GetMoveHistory(ctx, "alice", tt.opts)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if history.TotalMoves != 5 {
				t.Errorf("Expected 5 total moves, got %d", history.TotalMoves)
			}
			if len(history.Moves) != tt.wantCount {
				t.Fatalf("Expected %d moves, got %d", tt.wantCount, len(history.Moves))
			}
			if tt.wantCount > 0 && history.Moves[0].MoveNumber != tt.wantFirstMove {
				t.Errorf("Expected first move %d, got %d", tt.wantFirstMove, history.Moves[0].MoveNumber)
			}
			if history.TotalPages != tt.wantPages || history.HasNext != tt.wantNext {
				t.Errorf("Unexpected pagination: pages=%d next=%v", history.TotalPages, history.HasNext)
			}
		})
	}
}

func TestMazeService_Presets(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	presets, err := svc.ListPresets(ctx)
	if err != nil || len(presets) != 2 {
		t.Fatalf("Expected 2 presets, got %d, %v", len(presets), err)
	}

	custom := &engine.MazeConfig{Name: "custom", Description: "custom", Width: 11, Height: 11}
	if err := svc.SavePreset(ctx, "custom", custom); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	loaded, err := svc.LoadPreset(ctx, "custom")
	if err != nil || loaded.Width != 11 {
		t.Errorf("Expected saved preset, got %+v, %v", loaded, err)
	}
}

func TestMazeService_GetGameState(t *testing.T) {
	svc, sessions := newTestService(t)
	installOpenMaze(sessions, "alice")

	state, err := svc.GetGameState(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(state.LocalView) != 8 {
		t.Errorf("Expected local view, got %d cells", len(state.LocalView))
	}

	if _, err := svc.GetGameState(context.Background(), "bob"); !errors.Is(err, service.ErrNoActiveMaze) {
		t.Errorf("Expected ErrNoActiveMaze, got %v", err)
	}
}

func ExampleMazeService() {
	svc := service.NewMazeService(NewMockSessionManager(), NewMockConfigManager(), account.NewStore(bcrypt.MinCost), quietLogger())
	ctx := context.Background()

	svc.Register(ctx, "alice", "secret")
	maze, _ := svc.InitMaze(ctx, "alice", service.InitOptions{Preset: "small", Seed: 1})
	fmt.Println(maze.Width, maze.Height, maze.PlayerPos == maze.Start)
	// Output: 7 7 true
}
