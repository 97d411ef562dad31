package ports

import (
	"context"

	"github.com/identitydesk/identity-api/internal/core/domain"
)

// AuthService authenticates a user by email and password and issues a signed
// token for the administrative console.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
