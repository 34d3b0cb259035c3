// Package mcp provides the Model Context Protocol front end of the Hazard Maze server.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API and the JSON answer is rendered as text that an AI
// agent can read.
//
// MCP Tools:
//   - register, login: account management; the username doubles as user_id
//   - init_maze: generate a maze (width, height, preset and seed are optional)
//   - get_maze: ASCII maze with the player (@), start (S) and goal (G)
//   - move: step to an absolute (x, y) neighbour, diagonals allowed
//   - describe_cell: kind, enterability and notes for one cell
//   - move_history: paginated history
//   - list_presets, game_instructions
//
// Transport Modes:
//
// The same server backs the stdio mode (server.ServeStdio) and the HTTP
// /mcp endpoint mounted by the main command (MCPServer.HandleMessage).
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
