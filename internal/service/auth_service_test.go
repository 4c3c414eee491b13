package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yourorg/jobboard/internal/domain"
	"github.com/yourorg/jobboard/internal/security/auth"
)

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
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

func newTestAuthService() *AuthService {
	return NewAuthService(newMemUserRepo(), auth.NewTokenManager("test-secret", ""), nil)
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestAuthService()

	// Signup
	r, err := s.Signup(ctx, "Alice", "alice@example.com", "Password123", domain.RoleCandidate)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if r.UserID == "" || r.Token == "" {
		t.Fatalf("expected user id and token")
	}
	if r.Role != domain.RoleCandidate {
		t.Fatalf("expected candidate role, got %s", r.Role)
	}

	// Duplicate email
	if _, err := s.Signup(ctx, "Alice Again", "alice@example.com", "Password123", domain.RoleCandidate); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// Login ok
	lr, err := s.Login(ctx, "alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if lr.Token == "" {
		t.Fatalf("expected token on login")
	}

	// Login wrong password
	if _, err := s.Login(ctx, "alice@example.com", "Wrong"); err == nil {
		t.Fatalf("expected invalid credentials error")
	}

	// Login unknown email
	if _, err := s.Login(ctx, "nobody@example.com", "Password123"); err == nil {
		t.Fatalf("expected invalid credentials error")
	}
}

func TestSignupValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestAuthService()

	if _, err := s.Signup(ctx, "", "a@example.com", "Password123", domain.RoleCandidate); err == nil {
		t.Fatalf("expected missing name error")
	}
	if _, err := s.Signup(ctx, "A", "a@example.com", "short", domain.RoleCandidate); err == nil {
		t.Fatalf("expected short password error")
	}
	if _, err := s.Signup(ctx, "A", "a@example.com", "Password123", domain.Role("admin")); err == nil {
		t.Fatalf("expected invalid role error")
	}
}

func TestResolveUserFromToken(t *testing.T) {
	ctx := context.Background()
	tm := auth.NewTokenManager("test-secret", "")
	s := NewAuthService(newMemUserRepo(), tm, nil)

	r, err := s.Signup(ctx, "Rae", "rae@example.com", "Password123", domain.RoleRecruiter)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	claims, err := tm.ValidateToken(r.Token)
	if err != nil {
		t.Fatalf("token validation failed: %v", err)
	}

	user, err := s.ResolveUser(ctx, claims)
	if err != nil {
		t.Fatalf("resolve user failed: %v", err)
	}
	if user.Email != "rae@example.com" || user.Role != domain.RoleRecruiter {
		t.Fatalf("resolved wrong user: %+v", user)
	}
}
