package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/mcp-training/hazardmaze/game/account"
	"github.com/wricardo/mcp-training/hazardmaze/game/engine"
	"github.com/wricardo/mcp-training/hazardmaze/game/service"
	"github.com/wricardo/mcp-training/hazardmaze/transport/websocket"
)

// Broadcaster pushes state updates and move events to watchers of a user's maze
type Broadcaster interface {
	BroadcastToUser(userID string, state *engine.GameState)
	BroadcastEvent(userID string, event string, data interface{})
	ClientCount(userID string) int
	ServeWS(w http.ResponseWriter, r *http.Request, userID string)
}

var _ Broadcaster = (*websocket.Hub)(nil)

// Server represents the REST API server
type Server struct {
	service service.MazeService
	hub     Broadcaster
	router  *mux.Router
	logger  log.FieldLogger
}

// NewServer creates a new API server. hub may be nil to disable WebSocket updates.
func NewServer(mazeService service.MazeService, hub Broadcaster, logger log.FieldLogger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &Server{
		service: mazeService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(requestIDMiddleware, s.loggingMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()

	// Accounts
	api.HandleFunc("/auth/register", s.handleRegister).Methods("POST")
	api.HandleFunc("/auth/login", s.handleLogin).Methods("POST")

	// Maze operations; literal paths before the {userId} pattern
	api.HandleFunc("/maze/init", s.handleInitMaze).Methods("POST")
	api.HandleFunc("/maze/move", s.handleMove).Methods("POST")
	api.HandleFunc("/maze/{userId}", s.handleGetMaze).Methods("GET")
	api.HandleFunc("/maze/{userId}/history", s.handleGetHistory).Methods("GET")

	// Presets
	api.HandleFunc("/presets", s.handleListPresets).Methods("GET")
	api.HandleFunc("/presets", s.handleSavePreset).Methods("POST")
	api.HandleFunc("/presets/{name}", s.handleGetPreset).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// mazeResponse flattens MazeInfo next to the success flag
type mazeResponse struct {
	Success  bool `json:"success"`
	Watchers int  `json:"watchers"`
	*service.MazeInfo
}

// Account Handlers

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": result.Message,
		"userId":  result.UserID,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, account.ErrMissingCredentials) {
			status = http.StatusBadRequest
		}
		respondError(w, status, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": result.Message,
		"userId":  result.UserID,
	})
}

// Maze Handlers

func (s *Server) handleInitMaze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		service.InitOptions
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	info, err := s.service.InitMaze(r.Context(), req.UserID, req.InitOptions)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.broadcastState(r, req.UserID)
	respondJSON(w, http.StatusOK, mazeResponse{Success: true, MazeInfo: info})
}

func (s *Server) handleGetMaze(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	info, err := s.service.GetMaze(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	resp := mazeResponse{Success: true, MazeInfo: info}
	if s.hub != nil {
		resp.Watchers = s.hub.ClientCount(userID)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		X      *int   `json:"x"`
		Y      *int   `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.X == nil || req.Y == nil {
		respondError(w, http.StatusBadRequest, "userId, x and y are required")
		return
	}

	result, err := s.service.Move(r.Context(), req.UserID, *req.X, *req.Y)
	if err != nil {
		if result == nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success":   false,
			"error":     result.Message,
			"code":      result.Code,
			"playerPos": result.PlayerPos,
		})
		return
	}

	s.broadcastState(r, req.UserID)
	s.broadcastOutcome(req.UserID, result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	query := r.URL.Query()

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}
	if page, err := strconv.Atoi(query.Get("page")); err == nil {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil {
		opts.Limit = limit
	}
	if order := strings.ToLower(query.Get("order")); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetMoveHistory(r.Context(), userID, opts)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Preset Handlers

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.service.ListPresets(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"presets": presets,
		"count":   len(presets),
	})
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	preset, err := s.service.LoadPreset(r.Context(), name)
	if err != nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("Preset not found: %s", name))
		return
	}

	respondJSON(w, http.StatusOK, preset)
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	var preset engine.MazeConfig
	if err := json.NewDecoder(r.Body).Decode(&preset); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if preset.Name == "" {
		respondError(w, http.StatusBadRequest, "Preset name is required")
		return
	}

	if err := s.service.SavePreset(r.Context(), preset.Name, &preset); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to save preset: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"message":   "Preset saved successfully",
		"preset_id": preset.Name,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket updates disabled", http.StatusServiceUnavailable)
		return
	}

	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "user parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetMaze(r.Context(), userID); err != nil {
		http.Error(w, "No active maze for user", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, userID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// broadcastState pushes the user's current state to WebSocket watchers
func (s *Server) broadcastState(r *http.Request, userID string) {
	if s.hub == nil {
		return
	}
	state, err := s.service.GetGameState(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).WithField("user", userID).Warn("failed to load state for broadcast")
		return
	}
	s.hub.BroadcastToUser(userID, state)
}

// broadcastOutcome announces deaths and goal arrivals as separate events
func (s *Server) broadcastOutcome(userID string, result *service.MoveResult) {
	if s.hub == nil {
		return
	}
	switch {
	case result.ReachedGoal:
		s.hub.BroadcastEvent(userID, websocket.EventGoalReached, result)
	case result.Died:
		s.hub.BroadcastEvent(userID, websocket.EventHazard, result)
	}
}
