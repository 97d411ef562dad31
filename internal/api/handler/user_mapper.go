package handler

import "github.com/identitydesk/identity-api/internal/core/domain"

// The mappers are the only place domain records become response payloads,
// so the credential hash cannot reach a client through any operation.

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toPublicUserResponse(u *domain.User) publicUserResponse {
	return publicUserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}
