package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/jobboard/internal/security/audit"
	"github.com/yourorg/jobboard/internal/security/auth"
	"github.com/yourorg/jobboard/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

// isPublicPath reports whether the request requires no credential: health,
// metrics, the public job list, resume downloads, and the auth endpoints
// themselves.
func isPublicPath(r *http.Request) bool {
	p := r.URL.Path
	switch p {
	case "/healthz", "/readyz", "/metrics",
		"/api/signup", "/api/login", "/api/logout":
		return true
	}
	if p == "/api/jobs" && r.Method == http.MethodGet {
		return true
	}
	if strings.HasPrefix(p, "/api/resume/") {
		return true
	}
	return false
}

func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Login and signup get a tight per-address budget to slow
			// down credential stuffing.
			if r.URL.Path == "/api/login" || r.URL.Path == "/api/signup" {
				if !limiter.AllowStrict(clientAddr(r), 10, limiter.Window()) {
					http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			key := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				key = claims.UserID
			}

			if !limiter.Allow(key) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func AuditMiddleware(auditLog *audit.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := ""
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				userID = claims.UserID
			}

			switch {
			case r.Method == http.MethodPost && r.URL.Path == "/api/signup":
				auditLog.LogAction(r.Context(), userID, "signup", "user", "", "initiated", "")
			case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/apply"):
				auditLog.LogAction(r.Context(), userID, "apply", "application", r.PathValue("id"), "initiated", "")
			case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/status"):
				auditLog.LogAction(r.Context(), userID, "update_status", "application", r.PathValue("id"), "initiated", "")
			case r.Method == http.MethodDelete:
				auditLog.LogAction(r.Context(), userID, "delete", "job", r.PathValue("id"), "initiated", "")
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}

func clientAddr(r *http.Request) string {
	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx > 0 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}
