// Package session stores the active maze of every player.
//
// Each user has at most one session; initializing a new maze replaces the old
// one. Sessions live in memory only and are dropped by CleanupExpiredSessions
// once they have been idle longer than the configured timeout.
//
// Concurrency:
//
// Manager is safe for concurrent use. It guards its map only; serializing
// moves within a session is the service layer's job.
//
// Usage:
//
//	manager := session.NewManager()
//	manager.Set("alice", &service.Session{UserID: "alice", Engine: eng})
//
//	sess, err := manager.Get("alice")
//	if errors.Is(err, session.ErrSessionNotFound) {
//		// no maze yet
//	}
//
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
