package handler

import "time"

// --- Request types ---

type createUserRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Username string `json:"username"  validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password"  validate:"required,min=6"`
	Role     string `json:"role"      validate:"required,oneof=ADMIN USER"`
}

// updateProfileRequest carries only profile fields. Nil means "leave
// unchanged"; credential and role have dedicated endpoints.
type updateProfileRequest struct {
	Email    *string `json:"email"     validate:"omitempty,email"`
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
}

type updateCredentialRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

type updateOwnCredentialRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN USER"`
}

// searchUsersRequest distinguishes absent fields (nil) from fields supplied
// empty; the service treats the two differently.
type searchUsersRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Username *string `json:"username"`
}

// --- Response types ---

// userResponse is the full administrative projection. It never carries the
// credential hash.
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// publicUserResponse is the reduced projection for non-administrative reads.
type publicUserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// successResponse is the marker returned by credential-only updates.
type successResponse struct {
	Success bool `json:"success"`
}
