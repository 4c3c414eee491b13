package test

import (
	"io"
	"net/http"
	"testing"
)

// TestHealthEndpoint verifies health check endpoint
func TestHealthEndpoint(t *testing.T) {
	server := NewTestServer(t)

	resp, err := http.Get(server.URL() + "/healthz")
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	defer resp.Body.Close()

	AssertStatusCode(t, resp, http.StatusOK)
}

// TestSignupLoginAndMe verifies the auth flow end to end
func TestSignupLoginAndMe(t *testing.T) {
	server := NewTestServer(t)

	token := server.Signup(t, "Ada", "ada@example.com", "recruiter")

	resp := server.Get(t, "/api/me", token)
	var me struct {
		Name string `json:"name"`
		Role string `json:"role"`
	}
	DecodeJSON(t, resp, &me)
	if me.Name != "Ada" || me.Role != "recruiter" {
		t.Errorf("unexpected identity: %+v", me)
	}

	// Login with the same credentials
	resp = server.PostJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "Password123",
	})
	AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	// Wrong password is a generic 401
	resp = server.PostJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	})
	AssertStatusCode(t, resp, http.StatusUnauthorized)
	resp.Body.Close()
}

// TestAuthRequired verifies protected endpoints reject anonymous requests
func TestAuthRequired(t *testing.T) {
	server := NewTestServer(t)

	resp := server.PostJSON(t, http.MethodPost, "/api/jobs", "", map[string]string{
		"title": "x", "description": "y",
	})
	AssertStatusCode(t, resp, http.StatusUnauthorized)
	resp.Body.Close()

	// The public job list needs no credential
	resp = server.Get(t, "/api/jobs", "")
	AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()
}

// TestFullApplicationFlow walks posting, applying, review, and the
// resume download
func TestFullApplicationFlow(t *testing.T) {
	server := NewTestServer(t)

	recruiterToken := server.Signup(t, "Rae", "rae@example.com", "recruiter")
	candidateToken := server.Signup(t, "Cal", "cal@example.com", "candidate")

	// Recruiter posts a job
	resp := server.PostJSON(t, http.MethodPost, "/api/jobs", recruiterToken, map[string]string{
		"title":       "Go Engineer",
		"description": "Build backend services",
	})
	AssertStatusCode(t, resp, http.StatusCreated)
	var job struct {
		ID string `json:"id"`
	}
	DecodeJSON(t, resp, &job)

	// Candidates may not post
	resp = server.PostJSON(t, http.MethodPost, "/api/jobs", candidateToken, map[string]string{
		"title": "Nope", "description": "",
	})
	AssertStatusCode(t, resp, http.StatusForbidden)
	resp.Body.Close()

	// Candidate applies with a resume
	resume := []byte("Cal's resume: five years of Go")
	resp = server.Upload(t, job.ID, candidateToken, "resume.pdf", "application/pdf", resume)
	AssertStatusCode(t, resp, http.StatusCreated)
	var app struct {
		ID     string `json:"id"`
		Resume string `json:"resume"`
		Status string `json:"status"`
	}
	DecodeJSON(t, resp, &app)
	if app.Status != "Pending" {
		t.Errorf("expected Pending, got %s", app.Status)
	}

	// A second application to the same job is rejected
	resp = server.Upload(t, job.ID, candidateToken, "resume.pdf", "application/pdf", resume)
	AssertStatusCode(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	// Unsupported resume types are refused
	resp = server.Upload(t, job.ID, recruiterToken, "resume.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", resume)
	AssertStatusCode(t, resp, http.StatusUnsupportedMediaType)
	resp.Body.Close()

	// Only the posting owner may list applicants
	resp = server.Get(t, "/api/jobs/"+job.ID+"/applications", candidateToken)
	AssertStatusCode(t, resp, http.StatusForbidden)
	resp.Body.Close()

	resp = server.Get(t, "/api/jobs/"+job.ID+"/applications", recruiterToken)
	AssertStatusCode(t, resp, http.StatusOK)
	var apps []struct {
		ID        string `json:"id"`
		Candidate string `json:"candidate"`
	}
	DecodeJSON(t, resp, &apps)
	if len(apps) != 1 || apps[0].Candidate != "Cal" {
		t.Fatalf("unexpected applicant list: %+v", apps)
	}

	// Recruiter accepts the application
	resp = server.PostJSON(t, http.MethodPut, "/api/applications/"+app.ID+"/status", recruiterToken, map[string]string{
		"status": "Accepted",
	})
	AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	// Terminal applications never transition again
	resp = server.PostJSON(t, http.MethodPut, "/api/applications/"+app.ID+"/status", recruiterToken, map[string]string{
		"status": "Rejected",
	})
	AssertStatusCode(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	// Unknown status values are rejected outright
	resp = server.PostJSON(t, http.MethodPut, "/api/applications/"+app.ID+"/status", recruiterToken, map[string]string{
		"status": "Maybe",
	})
	AssertStatusCode(t, resp, http.StatusBadRequest)
	resp.Body.Close()

	// The stored resume streams back byte for byte
	resp = server.Get(t, "/api/resume/"+app.Resume, "")
	AssertStatusCode(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != string(resume) {
		t.Errorf("resume roundtrip mismatch: %q", body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected pdf content type, got %s", ct)
	}
}

// TestApplyToUnknownJob verifies the job existence precondition
func TestApplyToUnknownJob(t *testing.T) {
	server := NewTestServer(t)

	token := server.Signup(t, "Cal", "cal@example.com", "candidate")
	resp := server.Upload(t, "no-such-job", token, "resume.pdf", "application/pdf", []byte("resume"))
	AssertStatusCode(t, resp, http.StatusNotFound)
	resp.Body.Close()
}
