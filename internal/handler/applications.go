package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/jobboard/internal/service"
)

// ApplicationsHandler lists the applications for a posting
type ApplicationsHandler struct {
	appService  *service.ApplicationService
	authService *service.AuthService
	logger      *slog.Logger
}

// NewApplicationsHandler creates a new applications handler
func NewApplicationsHandler(appService *service.ApplicationService, authService *service.AuthService, logger *slog.Logger) *ApplicationsHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ApplicationsHandler{
		appService:  appService,
		authService: authService,
		logger:      logger,
	}
}

// ServeHTTP handles GET /api/jobs/{id}/applications (job owner only)
func (h *ApplicationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.authService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	apps, err := h.appService.ListForJob(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, applicationResponse(app))
	}
	writeJSON(w, http.StatusOK, out)
}
