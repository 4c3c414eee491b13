package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/yourorg/jobboard/internal/domain"
	"github.com/yourorg/jobboard/internal/handler"
	"github.com/yourorg/jobboard/internal/security"
	"github.com/yourorg/jobboard/internal/security/auth"
	"github.com/yourorg/jobboard/internal/security/middleware"
	"github.com/yourorg/jobboard/internal/service"
	"github.com/yourorg/jobboard/internal/storage"
)

// TestServerHelper runs the full HTTP surface against in-memory stores and
// a filesystem blob store rooted in the test's temp dir.
type TestServerHelper struct {
	Server *httptest.Server
	Logger *slog.Logger
}

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func (m *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[u.Email]; exists {
		return domain.ErrEmailTaken
	}
	if u.ID == "" {
		u.ID = "u-" + u.Email
	}
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
	seq  int
}

func (m *memJobRepo) Create(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	job.ID = fmt.Sprintf("job-%d", m.seq)
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	m.jobs[job.ID] = job
	return nil
}

func (m *memJobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		return j, nil
	}
	return nil, domain.ErrJobNotFound
}

func (m *memJobRepo) Update(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	job.UpdatedAt = time.Now()
	m.jobs[job.ID] = job
	return nil
}

func (m *memJobRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[id]; !ok {
		return domain.ErrJobNotFound
	}
	delete(m.jobs, id)
	return nil
}

func (m *memJobRepo) List(ctx context.Context) ([]*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Job{}
	for _, j := range m.jobs {
		out = append(out, j)
	}
	return out, nil
}

type memAppRepo struct {
	mu   sync.Mutex
	apps map[string]*domain.Application
	seq  int
}

func (m *memAppRepo) Create(ctx context.Context, app *domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.apps {
		if existing.JobID == app.JobID && existing.Candidate == app.Candidate {
			return domain.ErrDuplicateApplication
		}
	}
	m.seq++
	app.ID = fmt.Sprintf("app-%d", m.seq)
	app.Date = time.Now()
	m.apps[app.ID] = app
	return nil
}

func (m *memAppRepo) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.apps[id]; ok {
		return a, nil
	}
	return nil, domain.ErrApplicationNotFound
}

func (m *memAppRepo) GetByJobAndCandidate(ctx context.Context, jobID, candidate string) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.JobID == jobID && a.Candidate == candidate {
			return a, nil
		}
	}
	return nil, domain.ErrApplicationNotFound
}

func (m *memAppRepo) ListByJob(ctx context.Context, jobID string) ([]*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Application{}
	for _, a := range m.apps {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAppRepo) UpdateStatusFromPending(ctx context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[id]
	if !ok {
		return nil, domain.ErrApplicationNotFound
	}
	if a.Status != domain.StatusPending {
		return nil, domain.ErrInvalidTransition
	}
	a.Status = status
	return a, nil
}

func (m *memAppRepo) ReferencedResumeIDs(ctx context.Context) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	refs := map[string]struct{}{}
	for _, a := range m.apps {
		refs[a.Resume] = struct{}{}
	}
	return refs, nil
}

// NewTestServer wires the handlers, services, and JWT middleware the same
// way the server entrypoint does, backed by in-memory stores.
func NewTestServer(t *testing.T) *TestServerHelper {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	userRepo := &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
	jobRepo := &memJobRepo{jobs: map[string]*domain.Job{}}
	appRepo := &memAppRepo{apps: map[string]*domain.Application{}}

	blobStore, err := storage.NewFSStore(t.TempDir(), log)
	if err != nil {
		t.Fatalf("blob store setup failed: %v", err)
	}
	staging, err := storage.NewStaging(t.TempDir())
	if err != nil {
		t.Fatalf("staging setup failed: %v", err)
	}

	tokenManager := auth.NewTokenManager("test-secret", "")
	authz := security.NewAuthorizationService(log)
	authService := service.NewAuthService(userRepo, tokenManager, log)
	jobService := service.NewJobService(jobRepo, authz, log)
	appService := service.NewApplicationService(appRepo, jobRepo, blobStore, nil, authz, log)

	authHandler := handler.NewAuthHandler(authService, log)
	jobsHandler := handler.NewJobsHandler(jobService, authService, log)
	applyHandler := handler.NewApplyHandler(appService, authService, staging,
		[]string{"application/pdf", "text/plain"}, 5, log)
	applicationsHandler := handler.NewApplicationsHandler(appService, authService, log)
	statusHandler := handler.NewStatusHandler(appService, authService, log)
	resumeHandler := handler.NewResumeHandler(appService, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("POST /api/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/me", authHandler.Me)
	mux.HandleFunc("GET /api/jobs", jobsHandler.List)
	mux.HandleFunc("POST /api/jobs", jobsHandler.Create)
	mux.HandleFunc("PUT /api/jobs/{id}", jobsHandler.Update)
	mux.HandleFunc("DELETE /api/jobs/{id}", jobsHandler.Delete)
	mux.Handle("POST /api/jobs/{id}/apply", applyHandler)
	mux.Handle("GET /api/jobs/{id}/applications", applicationsHandler)
	mux.Handle("PUT /api/applications/{id}/status", statusHandler)
	mux.Handle("GET /api/resume/{id}", resumeHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	server := httptest.NewServer(middleware.JWTMiddleware(tokenManager, log)(mux))
	t.Cleanup(server.Close)

	return &TestServerHelper{Server: server, Logger: log}
}

func (h *TestServerHelper) URL() string {
	return h.Server.URL
}

// PostJSON sends a JSON body, attaching the bearer token when given.
func (h *TestServerHelper) PostJSON(t *testing.T, method, path, token string, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	req, err := http.NewRequest(method, h.URL()+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("request build failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// Get issues a GET, attaching the bearer token when given.
func (h *TestServerHelper) Get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, h.URL()+path, nil)
	if err != nil {
		t.Fatalf("request build failed: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

// Upload sends a multipart resume to the apply endpoint.
func (h *TestServerHelper) Upload(t *testing.T, jobID, token, filename, contentType string, content []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="resume"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("multipart build failed: %v", err)
	}
	part.Write(content)
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, h.URL()+"/api/jobs/"+jobID+"/apply", &body)
	if err != nil {
		t.Fatalf("request build failed: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	return resp
}

// Signup registers an account and returns its token.
func (h *TestServerHelper) Signup(t *testing.T, name, email, role string) string {
	t.Helper()
	resp := h.PostJSON(t, http.MethodPost, "/api/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "Password123",
		"role":     role,
	})
	defer resp.Body.Close()
	AssertStatusCode(t, resp, http.StatusCreated)

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode signup response failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("signup returned no token")
	}
	return result.Token
}

// DecodeJSON decodes a response body into v and closes it.
func DecodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
}

// AssertStatusCode helper function
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("Expected status %d, got %d", expected, resp.StatusCode)
	}
}
