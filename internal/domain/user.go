package domain

import (
	"context"
	"time"
)

// Role determines what a user may do: candidates apply to jobs,
// recruiters post jobs and review applicants.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

// ValidRole reports whether r is one of the declared roles.
func ValidRole(r Role) bool {
	return r == RoleCandidate || r == RoleRecruiter
}

// User represents an account
type User struct {
	ID           string // UUID
	Name         string
	Email        string // Unique email address
	PasswordHash string // Bcrypt hashed password (not returned in API)
	Role         Role
	CreatedAt    time.Time
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
