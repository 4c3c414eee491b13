package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/jobboard/internal/domain"
	"github.com/yourorg/jobboard/internal/service"
	"github.com/yourorg/jobboard/internal/storage"
)

// ApplicationResponse represents an application in API responses
type ApplicationResponse struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	JobTitle  string    `json:"jobTitle"`
	Candidate string    `json:"candidate"`
	Resume    string    `json:"resume"`
	Status    string    `json:"status"`
	Date      time.Time `json:"date"`
}

// ApplyHandler accepts a multipart resume upload, stages it, and hands it
// to the application pipeline.
type ApplyHandler struct {
	appService   *service.ApplicationService
	authService  *service.AuthService
	staging      *storage.Staging
	allowedTypes []string
	maxUploadMB  int
	logger       *slog.Logger
}

// NewApplyHandler creates a new apply handler
func NewApplyHandler(
	appService *service.ApplicationService,
	authService *service.AuthService,
	staging *storage.Staging,
	allowedTypes []string,
	maxUploadMB int,
	logger *slog.Logger,
) *ApplyHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ApplyHandler{
		appService:   appService,
		authService:  authService,
		staging:      staging,
		allowedTypes: allowedTypes,
		maxUploadMB:  maxUploadMB,
		logger:       logger,
	}
}

// ServeHTTP handles POST /api/jobs/{id}/apply. The multipart field name is
// "resume"; only the allowlisted MIME types are accepted, checked before
// the pipeline runs.
func (h *ApplyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.authService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	maxBytes := int64(h.maxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeError(w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !h.typeAllowed(contentType) {
		writeError(w, http.StatusUnsupportedMediaType, "only PDF and plain text resumes are accepted")
		return
	}

	staged, err := h.staging.Stage(file, header.Filename, contentType)
	if err != nil {
		h.logger.Error("failed to stage upload",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to accept upload")
		return
	}

	app, err := h.appService.Submit(r.Context(), user, r.PathValue("id"), staged)
	if err != nil {
		h.logger.Info("submission rejected",
			slog.String("job_id", r.PathValue("id")),
			slog.String("candidate", user.Name),
			slog.String("error", err.Error()),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, applicationResponse(app))
}

func (h *ApplyHandler) typeAllowed(contentType string) bool {
	for _, t := range h.allowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

func applicationResponse(app *domain.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:        app.ID,
		JobID:     app.JobID,
		JobTitle:  app.JobTitle,
		Candidate: app.Candidate,
		Resume:    app.Resume,
		Status:    string(app.Status),
		Date:      app.Date,
	}
}
