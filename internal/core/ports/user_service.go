package ports

import (
	"context"

	"github.com/identitydesk/identity-api/internal/core/domain"
	"github.com/identitydesk/identity-api/internal/core/policy"
)

// CreateUserInput carries all data needed to create an identity record.
// Shape validation (email format, password length, role membership) happens
// at the boundary before the service sees it.
type CreateUserInput struct {
	Email    string
	Username string
	FullName string
	Password string
	Role     string
}

// UpdateProfileInput holds the profile fields of an update request. Nil
// means "leave unchanged". Credential and role are never part of a profile
// update.
type UpdateProfileInput struct {
	Email    *string
	Username *string
	FullName *string
}

// SearchInput is the raw search filter. Nil means the field was not
// supplied; a pointer to the empty string means it was supplied empty. The
// two cases matter: any supplied-but-empty field forces an empty result.
type SearchInput struct {
	Email    *string
	FullName *string
	Username *string
}

// UserService defines the identity lifecycle use cases. Every method
// authorizes the caller first; on deny it returns domain.ErrPermissionDenied
// without touching the store.
type UserService interface {
	Create(ctx context.Context, caller policy.Caller, in CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, caller policy.Caller, id string) (*domain.User, error)
	// GetSelf returns the caller's own record; like the other self-scoped
	// operations it needs no role check.
	GetSelf(ctx context.Context, caller policy.Caller) (*domain.User, error)
	// GetByUsername matches the exact username, including non-ASCII text,
	// and requires no role beyond an authenticated caller.
	GetByUsername(ctx context.Context, caller policy.Caller, username string) (*domain.User, error)
	List(ctx context.Context, caller policy.Caller) ([]*domain.User, error)
	Search(ctx context.Context, caller policy.Caller, in SearchInput) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, caller policy.Caller, id string, in UpdateProfileInput) (*domain.User, error)
	UpdateOwnProfile(ctx context.Context, caller policy.Caller, in UpdateProfileInput) (*domain.User, error)
	UpdateCredential(ctx context.Context, caller policy.Caller, id, newPassword string) error
	// UpdateOwnCredential verifies currentPassword against the stored hash
	// before replacing it; a mismatch leaves the hash untouched.
	UpdateOwnCredential(ctx context.Context, caller policy.Caller, currentPassword, newPassword string) error
	UpdateRole(ctx context.Context, caller policy.Caller, id, role string) (*domain.User, error)
	// Delete removes the record and returns the deleted record so the
	// response can echo it (credential stripped by the projection).
	Delete(ctx context.Context, caller policy.Caller, id string) (*domain.User, error)
}
