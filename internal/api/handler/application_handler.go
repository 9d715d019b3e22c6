package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/norsu/hrportal/internal/api/metrics"
	"github.com/norsu/hrportal/internal/core/ports"
)

// ApplicationHandler serves the applicant side of applications.
type ApplicationHandler struct {
	service ports.ApplicationService
}

func NewApplicationHandler(service ports.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

type resumeURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Submit applies to an open job with a PDF resume.
//
// @Summary      Submit application
// @Tags         applications
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        job_id      formData  string  true   "Job posting id"
// @Param        first_name  formData  string  true   "First name"
// @Param        last_name   formData  string  true   "Last name"
// @Param        phone       formData  string  false  "Contact number"
// @Param        resume      formData  file    true   "PDF resume"
// @Success      201         {object}  applicationResponse
// @Failure      400         {object}  map[string]string
// @Failure      409         {object}  map[string]string
// @Failure      413         {object}  map[string]string
// @Router       /api/applications [post]
func (h *ApplicationHandler) Submit(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("resume")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "resume file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable resume").SetInternal(err)
	}
	defer f.Close()

	app, err := h.service.Submit(c.Request().Context(), actor, ports.SubmitApplicationInput{
		JobID:     c.FormValue("job_id"),
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Phone:     c.FormValue("phone"),
		Resume:    f,
	})
	if err != nil {
		return err
	}
	metrics.ApplicationsSubmittedTotal.Inc()
	return c.JSON(http.StatusCreated, applicationResponse{Application: app})
}

// Mine lists the caller's own applications.
//
// @Summary      My applications
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  applicationsResponse
// @Router       /api/applications/mine [get]
func (h *ApplicationHandler) Mine(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	apps, err := h.service.ListMine(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, applicationsResponse{Applications: apps})
}

// ResumeURL issues a short-lived download link for the caller's resume.
//
// @Summary      Resume download link
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application id"
// @Success      200  {object}  resumeURLResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/applications/{id}/resume-url [get]
func (h *ApplicationHandler) ResumeURL(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	link, expires, err := h.service.ResumeURL(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resumeURLResponse{URL: link, ExpiresAt: expires})
}
