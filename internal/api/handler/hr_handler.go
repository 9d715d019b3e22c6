package handler

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/norsu/hrportal/internal/api/metrics"
	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
)

const (
	realtimePingInterval = 30 * time.Second
	realtimeWriteTimeout = 10 * time.Second
)

// HRHandler serves the HR review API.
type HRHandler struct {
	hr           ports.HRService
	applications ports.ApplicationService
	feed         ports.ChangeFeed
	upgrader     websocket.Upgrader
	log          zerolog.Logger
}

// NewHRHandler wires the HR endpoints. feed may be nil, in which case the
// realtime endpoint answers 503.
func NewHRHandler(hr ports.HRService, applications ports.ApplicationService, feed ports.ChangeFeed, log zerolog.Logger) *HRHandler {
	return &HRHandler{
		hr:           hr,
		applications: applications,
		feed:         feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

type updateStatusRequest struct {
	ApplicationID string `json:"applicationId" validate:"required"`
	Status        string `json:"status"        validate:"required"`
	Comment       string `json:"comment,omitempty"`
}

type applicationResponse struct {
	Application *domain.Application `json:"application"`
}

type applicationsResponse struct {
	Applications []*domain.Application `json:"applications"`
}

// DownloadPDF streams a stored resume as an attachment.
//
// @Summary      Download resume
// @Tags         hr
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        path           query  string  false  "Stored object path"
// @Param        applicationId  query  string  false  "Application id"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/hr/download-pdf [get]
func (h *HRHandler) DownloadPDF(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	dl, err := h.hr.DownloadResume(c.Request().Context(), actor, c.QueryParam("path"), c.QueryParam("applicationId"))
	if err != nil {
		return err
	}
	defer dl.Close()

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName}))
	header.Set(echo.HeaderCacheControl, "private, no-store")
	if dl.Size > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(dl.Size, 10))
	}
	return c.Stream(http.StatusOK, "application/pdf", dl)
}

// UpdateStatus tags an application with a review status and comment.
//
// @Summary      Update application status
// @Tags         hr
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  applicationResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/hr/update-status [post]
func (h *HRHandler) UpdateStatus(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	app, err := h.hr.UpdateStatus(c.Request().Context(), actor, ports.UpdateStatusInput{
		ApplicationID: req.ApplicationID,
		Status:        req.Status,
		Comment:       req.Comment,
	})
	if err != nil {
		return err
	}
	metrics.StatusUpdatesTotal.WithLabelValues(string(app.Status)).Inc()
	return c.JSON(http.StatusOK, applicationResponse{Application: app})
}

// Applications lists every application, optionally filtered.
//
// @Summary      List applications
// @Tags         hr
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Review status"
// @Param        job_id  query     string  false  "Job posting id"
// @Success      200     {object}  applicationsResponse
// @Failure      400     {object}  map[string]string
// @Router       /api/hr/applications [get]
func (h *HRHandler) Applications(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	apps, err := h.applications.List(c.Request().Context(), actor, ports.ApplicationFilter{
		JobID:  c.QueryParam("job_id"),
		Status: domain.ApplicationStatus(c.QueryParam("status")),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, applicationsResponse{Applications: apps})
}

// Realtime upgrades to a websocket and forwards application change events
// until either side goes away.
//
// @Summary      Application change feed
// @Tags         hr
// @Security     BearerAuth
// @Success      101
// @Failure      503  {object}  map[string]string
// @Router       /api/hr/realtime [get]
func (h *HRHandler) Realtime(c echo.Context) error {
	actor, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if h.feed == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "realtime feed unavailable")
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	events, release, err := h.feed.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe change feed: %w", err)
	}
	defer release()

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the error response.
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	metrics.RealtimeSubscribers.Inc()
	defer metrics.RealtimeSubscribers.Dec()
	log := h.log.With().Str("profile_id", actor.ID).Logger()
	log.Debug().Msg("realtime client connected")

	// Reads only detect the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(realtimePingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("realtime client disconnected")
			return nil
		case payload, ok := <-events:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(realtimeWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Debug().Err(err).Msg("realtime write failed")
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(realtimeWriteTimeout)); err != nil {
				return nil
			}
		}
	}
}
