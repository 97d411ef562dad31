package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identitydesk/identity-api/internal/api/metrics"
	"github.com/identitydesk/identity-api/internal/core/domain"
	"github.com/identitydesk/identity-api/internal/core/ports"
)

// UserHandler handles HTTP requests for identity operations.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// observe records the operation outcome metrics.
func observe(op string, err error) {
	result := "success"
	if err != nil {
		result = "error"
		if errors.Is(err, domain.ErrPermissionDenied) {
			metrics.PermissionDeniedTotal.WithLabelValues(op).Inc()
		}
	}
	metrics.OperationsTotal.WithLabelValues(op, result).Inc()
}

// Create handles POST /v1/users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), caller, ports.CreateUserInput{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
	})
	observe("create", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// List handles GET /v1/users, returning all users newest first.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  map[string]any
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	users, err := h.service.List(c.Request().Context(), caller)
	observe("read_many", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// Search handles POST /v1/users/search. An empty filter, or any filter field
// supplied empty, yields an empty result.
//
// @Summary      Search users
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      searchUsersRequest  true  "Search filter"
// @Success      200   {array}   userResponse
// @Failure      403   {object}  map[string]any
// @Router       /v1/users/search [post]
func (h *UserHandler) Search(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req searchUsersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	users, err := h.service.Search(c.Request().Context(), caller, ports.SearchInput{
		Email:    req.Email,
		FullName: req.FullName,
		Username: req.Username,
	})
	observe("search", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// GetByID handles GET /v1/users/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/users/{id} [get]
func (h *UserHandler) GetByID(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetByID(c.Request().Context(), caller, c.Param("id"))
	observe("read_one", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// GetByUsername handles GET /v1/users/username/:username. Any authenticated
// caller may look up a public profile; the response is the reduced
// projection.
//
// @Summary      Get a public profile by username
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username (exact match)"
// @Success      200       {object}  publicUserResponse
// @Failure      404       {object}  map[string]any
// @Router       /v1/users/username/{username} [get]
func (h *UserHandler) GetByUsername(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetByUsername(c.Request().Context(), caller, c.Param("username"))
	observe("read_one", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPublicUserResponse(user))
}

// UpdateProfile handles PATCH /v1/users/:id.
//
// @Summary      Update a user's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "User id"
// @Param        body  body      updateProfileRequest  true  "Changed fields"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Failure      409   {object}  map[string]any
// @Router       /v1/users/{id} [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), caller, c.Param("id"), ports.UpdateProfileInput{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
	})
	observe("update_profile", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateCredential handles PATCH /v1/users/:id/password.
//
// @Summary      Replace a user's password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "User id"
// @Param        body  body      updateCredentialRequest  true  "New password"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /v1/users/{id}/password [patch]
func (h *UserHandler) UpdateCredential(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req updateCredentialRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err = h.service.UpdateCredential(c.Request().Context(), caller, c.Param("id"), req.Password)
	observe("update_credential", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// UpdateRole handles PATCH /v1/users/:id/role.
//
// @Summary      Change a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateRoleRequest  true  "New role"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /v1/users/{id}/role [patch]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.UpdateRole(c.Request().Context(), caller, c.Param("id"), req.Role)
	observe("update_role", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /v1/users/:id. The response echoes the deleted
// record's full view.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	user, err := h.service.Delete(c.Request().Context(), caller, c.Param("id"))
	observe("delete", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Me handles GET /v1/me, returning the caller's own record in full view.
//
// @Summary      Get own record
// @Tags         me
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      404  {object}  map[string]any
// @Router       /v1/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetSelf(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateOwnProfile handles PATCH /v1/me.
//
// @Summary      Update own profile
// @Tags         me
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Changed fields"
// @Success      200   {object}  userResponse
// @Failure      409   {object}  map[string]any
// @Router       /v1/me [patch]
func (h *UserHandler) UpdateOwnProfile(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.UpdateOwnProfile(c.Request().Context(), caller, ports.UpdateProfileInput{
		Email:    req.Email,
		Username: req.Username,
		FullName: req.FullName,
	})
	observe("update_own_profile", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateOwnCredential handles PATCH /v1/me/password. The current password
// must verify before the hash is replaced.
//
// @Summary      Change own password
// @Tags         me
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateOwnCredentialRequest  true  "Current and new password"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  map[string]any
// @Router       /v1/me/password [patch]
func (h *UserHandler) UpdateOwnCredential(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req updateOwnCredentialRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err = h.service.UpdateOwnCredential(c.Request().Context(), caller, req.CurrentPassword, req.NewPassword)
	observe("update_own_credential", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}
