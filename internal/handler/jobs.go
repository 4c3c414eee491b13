package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/jobboard/internal/domain"
	"github.com/yourorg/jobboard/internal/service"
)

// JobRequest represents a create or update job request
type JobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// JobResponse represents a job posting in API responses
type JobResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PostedBy    string    `json:"postedBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// JobsHandler handles job posting endpoints
type JobsHandler struct {
	jobService  *service.JobService
	authService *service.AuthService
	logger      *slog.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(jobService *service.JobService, authService *service.AuthService, logger *slog.Logger) *JobsHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &JobsHandler{
		jobService:  jobService,
		authService: authService,
		logger:      logger,
	}
}

// List handles GET /api/jobs (public)
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list jobs", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}

	out := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, jobResponse(job))
	}
	writeJSON(w, http.StatusOK, out)
}

// Create handles POST /api/jobs (recruiter only)
func (h *JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.authService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	job, err := h.jobService.Create(r.Context(), user, req.Title, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, jobResponse(job))
}

// Update handles PUT /api/jobs/{id} (owner only)
func (h *JobsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.authService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req JobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	job, err := h.jobService.Update(r.Context(), user, r.PathValue("id"), req.Title, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, jobResponse(job))
}

// Delete handles DELETE /api/jobs/{id} (owner only)
func (h *JobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.authService)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.jobService.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "job deleted"})
}

func jobResponse(job *domain.Job) JobResponse {
	return JobResponse{
		ID:          job.ID,
		Title:       job.Title,
		Description: job.Description,
		PostedBy:    job.PostedBy,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}
