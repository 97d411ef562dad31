package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/identitydesk/identity-api/internal/core/domain"
)

func seedLoginUser(repo *stubUserRepo) *domain.User {
	created, _ := repo.Insert(context.Background(), &domain.User{
		Email:        "carol@example.com",
		Username:     "carol",
		FullName:     "Carol C",
		PasswordHash: "hashed:s3cret",
		Role:         domain.RoleAdmin,
	})
	return created
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	user := seedLoginUser(repo)
	svc := NewAuthService(repo, stubHasher{}, "secret", time.Hour)

	token, got, err := svc.Login(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if got == nil || got.Username != "carol" {
		t.Fatalf("unexpected user: %+v", got)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != user.ID {
		t.Fatalf("expected sub %s, got %v", user.ID, claims["sub"])
	}
	if claims["role"] != domain.RoleAdmin {
		t.Fatalf("expected role %s, got %v", domain.RoleAdmin, claims["role"])
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	seedLoginUser(repo)
	svc := NewAuthService(repo, stubHasher{}, "secret", time.Hour)

	if _, _, err := svc.Login(context.Background(), "carol@example.com", "bad"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, stubHasher{}, "secret", time.Hour)

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestAuthService_Login_EmptyInput(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, stubHasher{}, "secret", time.Hour)

	if _, _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}
