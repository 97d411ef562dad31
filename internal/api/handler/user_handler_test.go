package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/identitydesk/identity-api/internal/core/domain"
	"github.com/identitydesk/identity-api/internal/core/policy"
	"github.com/identitydesk/identity-api/internal/core/ports"
)

type stubUserService struct {
	createFn         func(ctx context.Context, caller policy.Caller, in ports.CreateUserInput) (*domain.User, error)
	getByUsernameFn  func(ctx context.Context, caller policy.Caller, username string) (*domain.User, error)
	searchFn         func(ctx context.Context, caller policy.Caller, in ports.SearchInput) ([]*domain.User, error)
	deleteFn         func(ctx context.Context, caller policy.Caller, id string) (*domain.User, error)
	updateOwnCredFn  func(ctx context.Context, caller policy.Caller, current, newPassword string) error
}

func (s *stubUserService) Create(ctx context.Context, caller policy.Caller, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, caller, in)
}

func (s *stubUserService) GetByID(context.Context, policy.Caller, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) GetSelf(context.Context, policy.Caller) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) GetByUsername(ctx context.Context, caller policy.Caller, username string) (*domain.User, error) {
	return s.getByUsernameFn(ctx, caller, username)
}

func (s *stubUserService) List(context.Context, policy.Caller) ([]*domain.User, error) {
	return nil, nil
}

func (s *stubUserService) Search(ctx context.Context, caller policy.Caller, in ports.SearchInput) ([]*domain.User, error) {
	return s.searchFn(ctx, caller, in)
}

func (s *stubUserService) UpdateProfile(context.Context, policy.Caller, string, ports.UpdateProfileInput) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) UpdateOwnProfile(context.Context, policy.Caller, ports.UpdateProfileInput) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) UpdateCredential(context.Context, policy.Caller, string, string) error {
	return domain.ErrUserNotFound
}

func (s *stubUserService) UpdateOwnCredential(ctx context.Context, caller policy.Caller, current, newPassword string) error {
	return s.updateOwnCredFn(ctx, caller, current, newPassword)
}

func (s *stubUserService) UpdateRole(context.Context, policy.Caller, string, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) Delete(ctx context.Context, caller policy.Caller, id string) (*domain.User, error) {
	return s.deleteFn(ctx, caller, id)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("sub", "admin1")
	c.Set("role", domain.RoleAdmin)
	return c, rec
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:           "u1",
		Email:        "alice@example.com",
		Username:     "alice",
		FullName:     "Alice A",
		PasswordHash: "$2a$10$secret",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

func TestUserHandler_Create_Success(t *testing.T) {
	stub := &stubUserService{
		createFn: func(_ context.Context, caller policy.Caller, in ports.CreateUserInput) (*domain.User, error) {
			if caller.ID != "admin1" || caller.Role != domain.RoleAdmin {
				t.Fatalf("unexpected caller: %+v", caller)
			}
			if in.Username != "alice" || in.Password != "secret1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return sampleUser(), nil
		},
	}
	h := NewUserHandler(stub)

	body := `{"email":"alice@example.com","username":"alice","full_name":"Alice A","password":"secret1","role":"USER"}`
	c, rec := newTestContext(t, http.MethodPost, "/v1/users", body)

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" || resp["role"] != domain.RoleUser {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	for _, key := range []string{"password", "password_hash", "credential_hash"} {
		if _, present := resp[key]; present {
			t.Fatalf("credential material leaked under %q", key)
		}
	}
}

func TestUserHandler_Create_ShortPasswordRejected(t *testing.T) {
	stub := &stubUserService{
		createFn: func(context.Context, policy.Caller, ports.CreateUserInput) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub)

	body := `{"email":"alice@example.com","username":"alice","full_name":"Alice A","password":"12345","role":"USER"}`
	c, _ := newTestContext(t, http.MethodPost, "/v1/users", body)

	err := h.Create(c)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Messages) != 1 || !strings.Contains(ve.Messages[0], "password") {
		t.Fatalf("unexpected messages: %v", ve.Messages)
	}
}

func TestUserHandler_Create_InvalidPayload(t *testing.T) {
	stub := &stubUserService{
		createFn: func(context.Context, policy.Caller, ports.CreateUserInput) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/v1/users", "not-json")

	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserHandler_Create_MissingClaims(t *testing.T) {
	h := NewUserHandler(&stubUserService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestUserHandler_GetByUsername_PublicProjection(t *testing.T) {
	stub := &stubUserService{
		getByUsernameFn: func(_ context.Context, _ policy.Caller, username string) (*domain.User, error) {
			if username != "alice" {
				t.Fatalf("unexpected username: %s", username)
			}
			return sampleUser(), nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/", "")
	c.SetPath("/v1/users/username/:username")
	c.SetParamNames("username")
	c.SetParamValues("alice")

	if err := h.GetByUsername(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	// Public view: no email, no role, and never any credential material.
	for _, key := range []string{"email", "role", "password", "password_hash"} {
		if _, present := resp[key]; present {
			t.Fatalf("field %q must not appear in the public view", key)
		}
	}
	if resp["username"] != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_Search_DistinguishesAbsentFromEmpty(t *testing.T) {
	var got ports.SearchInput
	stub := &stubUserService{
		searchFn: func(_ context.Context, _ policy.Caller, in ports.SearchInput) ([]*domain.User, error) {
			got = in
			return []*domain.User{}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/v1/users/search", `{"username":"ali","email":""}`)
	if err := h.Search(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if got.Username == nil || *got.Username != "ali" {
		t.Fatalf("username not forwarded: %+v", got)
	}
	if got.Email == nil || *got.Email != "" {
		t.Fatalf("supplied-empty email must arrive as empty pointer, got %+v", got.Email)
	}
	if got.FullName != nil {
		t.Fatalf("absent full_name must arrive as nil")
	}
}

func TestUserHandler_Delete_EchoWithoutCredential(t *testing.T) {
	stub := &stubUserService{
		deleteFn: func(_ context.Context, _ policy.Caller, id string) (*domain.User, error) {
			if id != "u1" {
				t.Fatalf("unexpected id: %s", id)
			}
			return sampleUser(), nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(t, http.MethodDelete, "/", "")
	c.SetPath("/v1/users/:id")
	c.SetParamNames("id")
	c.SetParamValues("u1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("delete echo leaked credential material: %s", rec.Body.String())
	}
}

func TestUserHandler_UpdateOwnCredential_SuccessMarker(t *testing.T) {
	stub := &stubUserService{
		updateOwnCredFn: func(_ context.Context, _ policy.Caller, current, newPassword string) error {
			if current != "oldpass" || newPassword != "newpass" {
				t.Fatalf("unexpected args: %s %s", current, newPassword)
			}
			return nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newTestContext(t, http.MethodPatch, "/v1/me/password", `{"current_password":"oldpass","new_password":"newpass"}`)
	if err := h.UpdateOwnCredential(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true {
		t.Fatalf("expected success marker, got %+v", resp)
	}
}

func TestUserHandler_UpdateOwnCredential_PassesThroughIncorrectPassword(t *testing.T) {
	stub := &stubUserService{
		updateOwnCredFn: func(context.Context, policy.Caller, string, string) error {
			return domain.ErrIncorrectPassword
		},
	}
	h := NewUserHandler(stub)

	c, _ := newTestContext(t, http.MethodPatch, "/v1/me/password", `{"current_password":"bad","new_password":"newpass"}`)
	if err := h.UpdateOwnCredential(c); !errors.Is(err, domain.ErrIncorrectPassword) {
		t.Fatalf("expected incorrect password to propagate, got %v", err)
	}
}
