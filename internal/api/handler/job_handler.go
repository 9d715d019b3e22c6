package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

const maxImageBytes = 5 << 20

// JobHandler serves the job posting API.
type JobHandler struct {
	service ports.JobService
}

func NewJobHandler(service ports.JobService) *JobHandler {
	return &JobHandler{service: service}
}

type jobRequest struct {
	Title          string `json:"title"           validate:"required,max=200"`
	Description    string `json:"description"     validate:"max=20000"`
	Department     string `json:"department"      validate:"max=120"`
	Location       string `json:"location"        validate:"max=120"`
	EmploymentType string `json:"employment_type" validate:"max=60"`
	Status         string `json:"status,omitempty"`
}

func (r jobRequest) input() ports.JobInput {
	return ports.JobInput{
		Title:          r.Title,
		Description:    r.Description,
		Department:     r.Department,
		Location:       r.Location,
		EmploymentType: r.EmploymentType,
		Status:         r.Status,
	}
}

type jobResponse struct {
	Job *domain.JobPosting `json:"job"`
}

type jobsResponse struct {
	Jobs []*domain.JobPosting `json:"jobs"`
}

// List returns job postings. Applicants only ever see open postings.
//
// @Summary      List job postings
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "open or closed"
// @Param        department  query     string  false  "Exact department"
// @Param        search      query     string  false  "Partial match on title, department or description"
// @Success      200         {object}  jobsResponse
// @Failure      400         {object}  map[string]string
// @Router       /api/jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	jobs, err := h.service.List(c.Request().Context(), actor, ports.JobFilter{
		Status:     domain.JobStatus(c.QueryParam("status")),
		Department: c.QueryParam("department"),
		Search:     c.QueryParam("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, jobsResponse{Jobs: jobs})
}

// Get returns one job posting.
//
// @Summary      Get job posting
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job posting id"
// @Success      200  {object}  jobResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	job, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, jobResponse{Job: job})
}

// Create publishes a new job posting.
//
// @Summary      Create job posting
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      jobRequest  true  "Job posting"
// @Success      201   {object}  jobResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req jobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	job, err := h.service.Create(c.Request().Context(), actor, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, jobResponse{Job: job})
}

// Update replaces the editable fields of a job posting.
//
// @Summary      Update job posting
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string      true  "Job posting id"
// @Param        body  body      jobRequest  true  "Job posting"
// @Success      200   {object}  jobResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/jobs/{id} [put]
func (h *JobHandler) Update(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req jobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	job, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, jobResponse{Job: job})
}

// Delete removes a job posting that has no applications.
//
// @Summary      Delete job posting
// @Tags         jobs
// @Security     BearerAuth
// @Param        id   path  string  true  "Job posting id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/jobs/{id} [delete]
func (h *JobHandler) Delete(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage attaches a banner image from the multipart "image" field.
//
// @Summary      Upload job image
// @Tags         jobs
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Job posting id"
// @Param        image  formData  file    true  "jpg, png, webp or gif"
// @Success      200    {object}  jobResponse
// @Failure      400    {object}  map[string]string
// @Failure      413    {object}  map[string]string
// @Router       /api/jobs/{id}/image [post]
func (h *JobHandler) UploadImage(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	if fh.Size > maxImageBytes {
		return domain.ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable image").SetInternal(err)
	}
	defer f.Close()

	job, err := h.service.AttachImage(c.Request().Context(), actor, c.Param("id"), ports.ImageUpload{
		Reader:   f,
		FileName: fh.Filename,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, jobResponse{Job: job})
}
