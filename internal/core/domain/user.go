package domain

import "time"

// Role values are a closed set; anything else is rejected at the boundary
// and re-checked before a role mutation commits.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// ValidRole reports whether r is one of the enumerated roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleUser
}

// User is the persisted identity record. PasswordHash never leaves the
// process: it is excluded from JSON and from every response projection.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
