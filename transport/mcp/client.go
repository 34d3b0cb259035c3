package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/hazardmaze/game/engine"
	"github.com/wricardo/mcp-training/hazardmaze/game/service"
)

const (
	ServerName    = "Hazard Maze"
	ServerVersion = "1.0.0"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// APIError is a non-2xx answer from the REST API
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Hazard Maze - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Walk from the start (S) to the goal (G) of a generated maze. Hazards (X) send you back to the start.

AVAILABLE TOOLS:
- register / login: create or check an account; the username is your user_id
- init_maze: generate a new maze for a user (optional width, height, preset, seed)
- get_maze: show the maze, your position and the cells around you
- move: step to an absolute (x, y) coordinate next to you, diagonals allowed
- describe_cell: explain a single cell of the maze
- move_history: page through past moves
- list_presets: list maze presets
- game_instructions: full rules`),
	)

	c.registerTools()
}

func (c *Client) registerTools() {
	credentials := mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"username": map[string]interface{}{
				"type":        "string",
				"description": "Account name, also used as user_id",
			},
			"password": map[string]interface{}{
				"type":        "string",
				"description": "Account password",
			},
		},
		Required: []string{"username", "password"},
	}
	userID := map[string]interface{}{
		"type":        "string",
		"description": "User id (the registered username)",
	}

	// Accounts
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "register",
		Description: "Register a new player account",
		InputSchema: credentials,
	}, c.handleRegister)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "login",
		Description: "Check the credentials of an existing account",
		InputSchema: credentials,
	}, c.handleLogin)

	// Maze operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "init_maze",
		Description: "Generate a new maze for the user, replacing any current one",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userID,
				"width": map[string]interface{}{
					"type":        "integer",
					"description": "Maze width (normalized to an odd value between 7 and 51)",
				},
				"height": map[string]interface{}{
					"type":        "integer",
					"description": "Maze height (normalized to an odd value between 7 and 51)",
				},
				"preset": map[string]interface{}{
					"type":        "string",
					"description": "Preset id from list_presets (optional)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for a reproducible maze (optional)",
				},
			},
			Required: []string{"user_id"},
		},
	}, c.handleInitMaze)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_maze",
		Description: "Get the user's maze with position, local view and counters",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userID,
			},
			Required: []string{"user_id"},
		},
	}, c.handleGetMaze)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player to an absolute coordinate at most one step away (diagonals allowed)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userID,
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Target column (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Target row (0-based)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move",
				},
			},
			Required: []string{"user_id", "x", "y"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about a single maze cell, including whether it can be entered",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userID,
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the cell (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the cell (0-based)",
				},
			},
			Required: []string{"user_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the move history of the user's maze",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userID,
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order, newest first by default",
				},
			},
			Required: []string{"user_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List available maze presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPresets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete rules of the maze",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		apiErr := &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("API error: %d", resp.StatusCode)}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
			apiErr.Code = errResp.Code
		}
		return apiErr
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func (c *Client) fetchMaze(ctx context.Context, userID string) (*service.MazeInfo, error) {
	var info service.MazeInfo
	if err := c.apiCall(ctx, "GET", "/api/maze/"+url.PathEscape(userID), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Tool handlers

func (c *Client) handleRegister(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.authenticate(ctx, request, "/api/auth/register")
}

func (c *Client) handleLogin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.authenticate(ctx, request, "/api/auth/login")
}

func (c *Client) authenticate(ctx context.Context, request mcp.CallToolRequest, path string) (*mcp.CallToolResult, error) {
	body := map[string]string{
		"username": request.GetString("username", ""),
		"password": request.GetString("password", ""),
	}

	var auth service.AuthResult
	if err := c.apiCall(ctx, "POST", path, body, &auth); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\nuser_id: %s", auth.Message, auth.UserID)), nil
}

func (c *Client) handleInitMaze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{"userId": userID}
	if width := request.GetInt("width", 0); width != 0 {
		body["width"] = width
	}
	if height := request.GetInt("height", 0); height != 0 {
		body["height"] = height
	}
	if preset := request.GetString("preset", ""); preset != "" {
		body["preset"] = preset
	}
	if seed := request.GetInt("seed", 0); seed != 0 {
		body["seed"] = int64(seed)
	}

	var info service.MazeInfo
	if err := c.apiCall(ctx, "POST", "/api/maze/init", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMazeInfo(&info)), nil
}

func (c *Client) handleGetMaze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := c.fetchMaze(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMazeInfo(info)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := request.RequireInt("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireInt("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"userId": userID,
		"x":      x,
		"y":      y,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", "/api/maze/move", body, &result); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("✗ Move to (%d,%d) rejected: %v", x, y, err)), nil
	}

	response := formatMoveResult(&result)
	if info, err := c.fetchMaze(ctx, userID); err == nil {
		response += "\n" + formatLocalView(info)
	}
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x, err := request.RequireInt("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := request.RequireInt("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := c.fetchMaze(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if y < 0 || y >= len(info.Maze) || x < 0 || x >= len(info.Maze[y]) {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Maze is %dx%d (x 0-%d, y 0-%d)",
			x, y, info.Width, info.Height, info.Width-1, info.Height-1)), nil
	}

	return mcp.NewToolResultText(describeCell(info, engine.Position{X: x, Y: y})), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, err := request.RequireString("user_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		params.Set("order", order)
	}

	path := fmt.Sprintf("/api/maze/%s/history", url.PathEscape(userID))
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Presets []service.PresetInfo `json:"presets"`
		Count   int                  `json:"count"`
	}
	if err := c.apiCall(ctx, "GET", "/api/presets", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Available Presets (%d):\n\n", response.Count))
	for _, p := range response.Presets {
		b.WriteString(fmt.Sprintf("• %s (%s)\n  %s\n  Maze: %dx%d, Chutes: %d\n\n",
			p.PresetID, p.Name, p.Description, p.Width, p.Height, p.Chutes))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Hazard Maze - Complete Instructions

OBJECTIVE:
Walk from the start to the goal. Reaching the goal is reported but does not end the game;
you may keep moving or call init_maze for a new maze.

COORDINATES:
x is the column and y is the row, both 0-based, with (0,0) in the top-left corner.
y grows downwards. The outer border is always wall.

MAZE LEGEND:
• @ - You (current position)
• S - Start
• G - Goal
• . - Path (passable)
• # - Wall (impassable)
• X - Hazard (enterable, but sends you back to the start and counts a death)
• A / B - Portal pair (stepping on one teleports you to the other)
• ^ v < > - Chute pointing up, down, left or right

MOVEMENT RULES:
• move takes an ABSOLUTE target (x, y), not a direction
• The target must be one of the 8 neighbouring cells (diagonals allowed) or your own cell
• Walls and cells outside the maze reject the move; rejected moves change nothing
• A chute can only be entered from behind: to ride a '>' chute you must stand to its left.
  You land on the cell right after the chute; if that cell is a wall the move is rejected
• A portal without a partner rejects the move

STRATEGY:
• Call get_maze first and read the grid row by row
• Use describe_cell when a character is unclear
• Diagonal steps can cut corners between walls, so check them before taking long detours
• move_history shows where you have already been

Good luck finding the goal!`
	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func cellDetails(kind engine.CellKind) (name string, enterable bool, description string) {
	switch kind {
	case engine.Path:
		return "Path", true, "Open floor - safe to walk on"
	case engine.Wall:
		return "Wall", false, "Solid wall - IMPASSABLE"
	case engine.Hazard:
		return "Hazard", true, "Stepping here sends you back to the start"
	case engine.Chute:
		return "Chute", true, "One-way slide; enter from behind to land one cell past it"
	case engine.PortalA, engine.PortalB:
		return "Portal", true, "Teleports you to the partner portal"
	}
	return "Unknown", false, "Unknown cell type"
}

func describeCell(info *service.MazeInfo, p engine.Position) string {
	cell := info.Maze[p.Y][p.X]
	name, enterable, description := cellDetails(cell.Kind)

	var notes []string
	if p == info.PlayerPos {
		notes = append(notes, "You are standing here.")
	}
	if p == info.Start {
		notes = append(notes, "This is the start.")
	}
	if p == info.Goal {
		notes = append(notes, "This is the goal!")
	}
	if cell.Kind == engine.Chute {
		exit := p.Add(cell.Direction.Delta())
		notes = append(notes, fmt.Sprintf("Facing %s: exit at (%d,%d).", cell.Direction, exit.X, exit.Y))
	}
	if cell.Kind == engine.PortalA || cell.Kind == engine.PortalB {
		partner := info.PortalB
		if cell.Kind == engine.PortalB {
			partner = info.PortalA
		}
		if partner != nil {
			notes = append(notes, fmt.Sprintf("Partner portal at (%d,%d).", partner.X, partner.Y))
		} else {
			notes = append(notes, "This portal has no partner; entering it is rejected.")
		}
	}
	if d := engine.ChebyshevDistance(info.PlayerPos, p); d <= 1 {
		notes = append(notes, "Reachable with a single move.")
	} else {
		notes = append(notes, fmt.Sprintf("%d steps away (king moves).", d))
	}

	return fmt.Sprintf(`Cell at position (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Character: %s
Type: %s
Enterable: %v
Description: %s

%s`,
		p.X, p.Y,
		engine.CellChar(cell),
		name,
		enterable,
		description,
		strings.Join(notes, "\n"))
}

// formatMaze renders the grid with the player, start and goal overlaid
func formatMaze(info *service.MazeInfo) string {
	var b strings.Builder
	for y, row := range info.Maze {
		for x, cell := range row {
			p := engine.Position{X: x, Y: y}
			switch p {
			case info.PlayerPos:
				b.WriteString("@")
			case info.Goal:
				b.WriteString("G")
			case info.Start:
				b.WriteString("S")
			default:
				b.WriteString(engine.CellChar(cell))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatMazeInfo(info *service.MazeInfo) string {
	if info == nil {
		return "No maze available"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("User: %s | Preset: %s | Seed: %d | Size: %dx%d\n",
		info.UserID, info.Preset, info.Seed, info.Width, info.Height))
	b.WriteString(fmt.Sprintf("Position: (%d,%d) | Start: (%d,%d) | Goal: (%d,%d)\n",
		info.PlayerPos.X, info.PlayerPos.Y, info.Start.X, info.Start.Y, info.Goal.X, info.Goal.Y))
	b.WriteString(fmt.Sprintf("Moves: %d | Deaths: %d | Goal reached: %d\n",
		info.TotalMoves, info.Deaths, info.GoalReached))
	if last := info.LastMove; last != nil {
		b.WriteString(fmt.Sprintf("Last move: #%d (%d,%d) → (%d,%d) %s\n",
			last.MoveNumber, last.FromPosition.X, last.FromPosition.Y, last.ToPosition.X, last.ToPosition.Y, last.Outcome))
	}
	b.WriteString("\n")

	b.WriteString(formatMaze(info))
	b.WriteString("\n")
	b.WriteString(formatLocalView(info))

	if info.Message != "" {
		b.WriteString(fmt.Sprintf("\nMessage: %s", info.Message))
	}
	return b.String()
}

// formatLocalView renders the 3x3 neighbourhood around the player
func formatLocalView(info *service.MazeInfo) string {
	if len(info.LocalView) == 0 {
		return ""
	}
	around := make(map[engine.Position]engine.SurroundingCell, len(info.LocalView))
	for _, sc := range info.LocalView {
		around[engine.Position{X: sc.X, Y: sc.Y}] = sc
	}

	var b strings.Builder
	b.WriteString("Local 3x3:\n")
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			p := info.PlayerPos.Add(dx, dy)
			if dx == 0 && dy == 0 {
				b.WriteString("@")
				continue
			}
			sc, ok := around[p]
			switch {
			case !ok:
				b.WriteString("?")
			case p == info.Goal:
				b.WriteString("G")
			default:
				b.WriteString(engine.CellChar(engine.Cell{Kind: sc.Kind, Direction: sc.Direction}))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}
	b.WriteString(fmt.Sprintf("Position: (%d,%d)", result.PlayerPos.X, result.PlayerPos.Y))
	if result.Outcome != "" {
		b.WriteString(fmt.Sprintf(" | Outcome: %s", result.Outcome))
	}
	b.WriteString("\n")
	if result.Died {
		b.WriteString("💀 Hazard! Back to the start.\n")
	}
	if result.ReachedGoal {
		b.WriteString("🎉 GOAL REACHED!\n")
	}
	if result.Message != "" {
		b.WriteString(fmt.Sprintf("Message: %s\n", result.Message))
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Move History (page %d/%d, %d total moves):\n\n",
		history.Page, history.TotalPages, history.TotalMoves))

	for _, m := range history.Moves {
		b.WriteString(fmt.Sprintf("#%d target (%d,%d): (%d,%d) → (%d,%d) %s\n",
			m.MoveNumber, m.Target.X, m.Target.Y,
			m.FromPosition.X, m.FromPosition.Y, m.ToPosition.X, m.ToPosition.Y, m.Outcome))
	}

	if history.HasPrevious {
		b.WriteString("\n← Previous page available")
	}
	if history.HasNext {
		b.WriteString("\n→ Next page available")
	}
	return b.String()
}
