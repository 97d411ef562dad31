package ports

import (
	"context"

	"github.com/identitydesk/identity-api/internal/core/domain"
)

// SearchFilter carries the concrete, non-empty search terms handed to the
// store. Empty-vs-absent semantics are resolved by the service layer before
// this struct is built; an empty field here means "no constraint".
type SearchFilter struct {
	Email    string
	FullName string
	Username string
}

// UserRepository defines persistence operations for identity records.
// Lookups return domain.ErrUserNotFound when no record matches. Insert and
// Update return *domain.ConflictError when a unique index on email or
// username rejects the write, so a race lost to a concurrent writer still
// surfaces as a conflict rather than corrupting the invariant.
type UserRepository interface {
	Insert(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindAll returns every record ordered newest-first.
	FindAll(ctx context.Context) ([]*domain.User, error)
	// Search returns records whose fields contain the corresponding filter
	// terms as case-sensitive substrings, all terms combined with AND.
	Search(ctx context.Context, filter SearchFilter) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
