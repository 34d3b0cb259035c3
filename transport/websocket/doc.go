// Package websocket pushes maze state to browser watchers.
//
// A central Hub owns every connection. Clients join the room of one user via
// /ws?user=<id>; after each maze initialization or accepted move the API calls
// BroadcastToUser and every client in that room receives
//
//	{"user_id": "alice", "event": "state_update", "game_state": {...}}
//
// Broadcasts are queued on a buffered channel and fanned out by Run, so HTTP
// handlers never block on slow connections. A client whose send buffer is full
// is dropped.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("user"))
//	})
//
//	hub.BroadcastToUser("alice", state)
package websocket
