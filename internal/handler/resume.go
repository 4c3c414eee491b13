package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/jobboard/internal/service"
)

// ResumeHandler streams stored resume bytes by blob ID
type ResumeHandler struct {
	appService *service.ApplicationService
	logger     *slog.Logger
}

// NewResumeHandler creates a new resume handler
func NewResumeHandler(appService *service.ApplicationService, logger *slog.Logger) *ResumeHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ResumeHandler{
		appService: appService,
		logger:     logger,
	}
}

// ServeHTTP handles GET /api/resume/{id}
func (h *ResumeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	info, content, err := h.appService.OpenResume(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	if _, err := io.Copy(w, content); err != nil {
		// Headers are already written; nothing to report to the client.
		h.logger.Warn("resume stream interrupted",
			slog.String("blob_id", info.ID),
			slog.String("error", err.Error()),
		)
	}
}
