package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fredcamaral/slishow/internal/domain/entities"
	"github.com/fredcamaral/slishow/internal/domain/ports"
)

// NavigatorHandler handles slide navigation requests. Every request is
// an index proposal: the controller accepts or rejects it, and the
// response reports which, together with the resulting state.
type NavigatorHandler struct {
	engine ports.Engine
	logger *HTTPLogger
}

// NavigationResponse reports the outcome of a navigation request
type NavigationResponse struct {
	Accepted bool                     `json:"accepted"`
	State    entities.ControllerState `json:"state"`
}

// NewNavigatorHandler creates a new navigator handler
func NewNavigatorHandler(engine ports.Engine) *NavigatorHandler {
	return &NavigatorHandler{
		engine: engine,
		logger: NewHTTPLogger("navigator", false),
	}
}

// NewNavigatorHandlerWithLogging creates a new navigator handler with logging configuration
func NewNavigatorHandlerWithLogging(engine ports.Engine, loggingConfig *entities.LoggingConfig) *NavigatorHandler {
	level := entities.LogLevelInfo
	if loggingConfig != nil {
		level = loggingConfig.GetLevel()
		if loggingConfig.Verbose {
			level = entities.LogLevelDebug
		}
	}

	return &NavigatorHandler{
		engine: engine,
		logger: NewHTTPLoggerWithLevel("navigator", level),
	}
}

// RegisterRoutes registers navigation routes
func (h *NavigatorHandler) RegisterRoutes(router *mux.Router) {
	// State API
	router.HandleFunc("/api/state", h.HandleState).Methods("GET")

	// Navigation API
	router.HandleFunc("/api/navigate", h.HandleNavigate).Methods("POST")
}

// Routes returns a router with all navigation routes registered
func (h *NavigatorHandler) Routes() http.Handler {
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	return router
}

// HandleState returns the current controller state
func (h *NavigatorHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	nav := h.engine.Navigator()
	if nav == nil {
		http.Error(w, "No slideshow loaded", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(nav.State()); err != nil {
		http.Error(w, "Failed to encode state", http.StatusInternalServerError)
		return
	}
}

// HandleNavigate handles navigation requests
func (h *NavigatorHandler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
		Index  int    `json:"index,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Validate action
	validActions := map[string]bool{
		"next":     true,
		"previous": true,
		"goto":     true,
	}

	if !validActions[req.Action] {
		http.Error(w, "Invalid navigation action", http.StatusBadRequest)
		return
	}

	nav := h.engine.Navigator()
	if nav == nil {
		http.Error(w, "No slideshow loaded", http.StatusServiceUnavailable)
		return
	}

	var accepted bool
	switch req.Action {
	case "next":
		accepted = nav.Next()
	case "previous":
		accepted = nav.Previous()
	case "goto":
		accepted = nav.RequestIndex(req.Index)
	}

	if !accepted {
		h.logger.Debug("Navigation request rejected: %s (index %d)", req.Action, req.Index)
	}

	// Return the outcome with the resulting state
	response := NavigationResponse{
		Accepted: accepted,
		State:    nav.State(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode state", http.StatusInternalServerError)
		return
	}
}
