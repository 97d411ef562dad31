package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/identitydesk/identity-api/internal/core/domain"
	"github.com/identitydesk/identity-api/internal/core/ports"
)

// uniquenessGuard pre-checks email/username uniqueness against the store.
// It exists for a fast, deterministic error; the store's unique indexes
// remain the final arbiter under concurrent writes.
type uniquenessGuard struct {
	repo ports.UserRepository
}

// checkConflicts looks up the candidate email and username, skipping empty
// values. A hit whose ID differs from excludeID is a genuine conflict. Email
// is checked before username so that when both conflict, only the email
// conflict is reported.
func (g uniquenessGuard) checkConflicts(ctx context.Context, email, username, excludeID string) error {
	if email != "" {
		existing, err := g.repo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if existing.ID != excludeID {
				return &domain.ConflictError{Field: "Email", Value: email}
			}
		case !errors.Is(err, domain.ErrUserNotFound):
			return fmt.Errorf("check email conflict: %w", err)
		}
	}

	if username != "" {
		existing, err := g.repo.FindByUsername(ctx, username)
		switch {
		case err == nil:
			if existing.ID != excludeID {
				return &domain.ConflictError{Field: "Username", Value: username}
			}
		case !errors.Is(err, domain.ErrUserNotFound):
			return fmt.Errorf("check username conflict: %w", err)
		}
	}

	return nil
}
