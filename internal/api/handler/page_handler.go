package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/norsu/hrportal/internal/core/domain"
)

// PageHandler renders the shell of protected pages once the page gate has
// authorized the request. The client application draws the page itself.
type PageHandler struct{}

func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

type pageResponse struct {
	Page string           `json:"page"`
	Area string           `json:"area"`
	User domain.Principal `json:"user"`
}

// Shell handles GET /admin/*, /hr/* and /applicant/*.
func (h *PageHandler) Shell(c echo.Context) error {
	principal, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")

	area, _ := domain.AreaFor(c.Request().URL.Path)
	return c.JSON(http.StatusOK, pageResponse{
		Page: c.Request().URL.Path,
		Area: area.String(),
		User: principal,
	})
}
