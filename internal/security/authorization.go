package security

import (
	"log/slog"

	"github.com/yourorg/jobboard/internal/domain"
)

// Permission represents an action permission
type Permission string

const (
	PermPostJob            Permission = "post_job"
	PermManageJob          Permission = "manage_job"
	PermApply              Permission = "apply"
	PermReviewApplications Permission = "review_applications"
)

// RolePermissions maps roles to their permissions. Any authenticated role
// may apply; posting and reviewing are recruiter-only.
var RolePermissions = map[domain.Role][]Permission{
	domain.RoleRecruiter: {
		PermPostJob,
		PermManageJob,
		PermApply,
		PermReviewApplications,
	},
	domain.RoleCandidate: {
		PermApply,
	},
}

// AuthorizationService handles role and ownership checks
type AuthorizationService struct {
	logger *slog.Logger
}

// NewAuthorizationService creates a new authorization service
func NewAuthorizationService(logger *slog.Logger) *AuthorizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorizationService{logger: logger}
}

// Can reports whether the role carries the permission.
func (a *AuthorizationService) Can(role domain.Role, perm Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// Require returns ErrForbidden when the role lacks the permission.
func (a *AuthorizationService) Require(userID string, role domain.Role, perm Permission) error {
	if a.Can(role, perm) {
		return nil
	}
	a.logger.Warn("permission denied",
		slog.String("user_id", userID),
		slog.String("role", string(role)),
		slog.String("permission", string(perm)),
	)
	return domain.ErrForbidden
}

// RequireOwner returns ErrForbidden unless the user owns the resource.
// Job edits, deletions and applicant listings are owner-only.
func (a *AuthorizationService) RequireOwner(userID, ownerID, resourceType, resourceID string) error {
	if ownerID == userID {
		return nil
	}
	a.logger.Warn("resource access denied",
		slog.String("user_id", userID),
		slog.String("resource_type", resourceType),
		slog.String("resource_id", resourceID),
		slog.String("owner_id", ownerID),
	)
	return domain.ErrForbidden
}
