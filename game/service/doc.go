// Package service provides the business logic layer for the Hazard Maze server.
//
// The service package implements:
//   - Account registration and login on top of the account store
//   - One active maze per user, replaced on every InitMaze
//   - Move processing with per-user serialization
//   - Move history pagination
//   - Preset listing and loading
//
// Core Interfaces:
//
// MazeService is the main service interface used by the HTTP, WebSocket and
// MCP transports. SessionManager, ConfigManager and AccountStore are the
// storage collaborators it is built from.
//
// Usage:
//
//	svc := service.NewMazeService(session.NewManager(), config.NewManager("configs"),
//		account.NewStore(bcrypt.DefaultCost), log.StandardLogger())
//
//	if _, err := svc.Register(ctx, "alice", "secret"); err != nil {
//		log.Fatal(err)
//	}
//	maze, err := svc.InitMaze(ctx, "alice", service.InitOptions{Preset: "small"})
//
//	result, err := svc.Move(ctx, "alice", maze.Start.X+1, maze.Start.Y)
//	var moveErr *engine.MoveError
//	if errors.As(err, &moveErr) {
//		// result.Success is false and result.PlayerPos is unchanged
//	}
//
// Errors:
//
// Operations on a user without a maze return ErrNoActiveMaze. InitMaze for an
// unregistered user returns ErrUserNotFound. Both are wrapped, use errors.Is.
package service
