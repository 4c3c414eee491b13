package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/jobboard/internal/domain"
	"github.com/yourorg/jobboard/internal/service"
)

// StatusRequest represents a status transition request
type StatusRequest struct {
	Status string `json:"status"`
}

// StatusHandler transitions an application out of Pending
type StatusHandler struct {
	appService  *service.ApplicationService
	authService *service.AuthService
	logger      *slog.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(appService *service.ApplicationService, authService *service.AuthService, logger *slog.Logger) *StatusHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &StatusHandler{
		appService:  appService,
		authService: authService,
		logger:      logger,
	}
}

// ServeHTTP handles PUT /api/applications/{id}/status (recruiter only)
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.authService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	app, err := h.appService.UpdateStatus(r.Context(), user, r.PathValue("id"), domain.ApplicationStatus(req.Status))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, applicationResponse(app))
}
