package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/norsu/hrportal/internal/api/metrics"
	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

// AdminHandler serves the super admin user management API.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type createUserRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty" validate:"max=32"`
	Role     string `json:"role"     validate:"required,oneof=super_admin hr applicant"`
}

type updateUserRequest struct {
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Role  *string `json:"role,omitempty"  validate:"omitempty,oneof=super_admin hr applicant"`
}

type userResponse struct {
	User *domain.Profile `json:"user"`
}

type usersResponse struct {
	Users []*domain.Profile `json:"users"`
}

// Get returns the dashboard summary when stats=true, otherwise every profile.
//
// @Summary      Admin stats or user list
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        stats  query     bool  false  "Return dashboard counters instead of users"
// @Success      200    {object}  usersResponse
// @Success      200    {object}  ports.AdminStats
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /api/admin [get]
func (h *AdminHandler) Get(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if c.QueryParam("stats") == "true" {
		stats, err := h.service.Stats(ctx, actor)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, stats)
	}

	users, err := h.service.ListUsers(ctx, actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usersResponse{Users: users})
}

// Create provisions an identity and profile with an explicit role.
//
// @Summary      Create user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/admin [post]
func (h *AdminHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
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

	profile, err := h.service.CreateUser(c.Request().Context(), actor, ports.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     req.Role,
	})
	metrics.AdminMutationsTotal.WithLabelValues("create", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{User: profile})
}

// Update changes profile fields of a non super_admin user.
//
// @Summary      Update user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Profile id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/admin/{id} [put]
func (h *AdminHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	profile, err := h.service.UpdateUser(c.Request().Context(), actor, c.Param("id"), ports.UpdateUserInput{
		Email: req.Email,
		Phone: req.Phone,
		Role:  req.Role,
	})
	metrics.AdminMutationsTotal.WithLabelValues("update", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: profile})
}

// Delete removes a non super_admin user with their applications.
//
// @Summary      Delete user
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "Profile id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/admin/{id} [delete]
func (h *AdminHandler) Delete(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	err = h.service.DeleteUser(c.Request().Context(), actor, c.Param("id"))
	metrics.AdminMutationsTotal.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
