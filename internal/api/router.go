package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/norsu/hrportal/internal/api/handler"
	"github.com/norsu/hrportal/internal/api/middleware"
	"github.com/norsu/hrportal/internal/core/domain"
	"github.com/norsu/hrportal/internal/core/ports"
	"github.com/norsu/hrportal/internal/infrastructure/storage"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Identity     ports.IdentityService
	Resolver     ports.RoleResolver
	Gate         ports.PageGate
	Admin        ports.AdminService
	HR           ports.HRService
	Jobs         ports.JobService
	Applications ports.ApplicationService
	Objects      ports.ObjectStorage
	Signer       ports.URLSigner
	// Feed may be nil; the realtime endpoint then answers 503.
	Feed   ports.ChangeFeed
	Health map[string]handler.Pinger

	CookieSecure bool
	// BodyLimit caps request bodies, e.g. "8M".
	BodyLimit string
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsConfig(d.Registry)))
	if d.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(d.BodyLimit))
	}

	auth := middleware.Auth(d.Identity, d.Resolver)
	staff := middleware.RBAC(domain.RoleHR, domain.RoleSuperAdmin)

	// --- Health probes and tooling (no auth required) ---
	health := handler.NewHealthHandler(d.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", metricsHandler(d.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(d.Identity, d.Resolver, d.CookieSecure, d.Log)
	e.GET("/login", authHandler.LoginPage)
	a := e.Group("/api/auth")
	a.POST("/signup", authHandler.SignUp)
	a.POST("/login", authHandler.Login)
	a.POST("/logout", authHandler.Logout, auth)
	a.GET("/session", authHandler.Session, auth)

	// --- Protected pages ---
	pages := handler.NewPageHandler()
	for _, role := range domain.Roles() {
		gate := middleware.PageGate(d.Gate, role)
		e.GET(role.Prefix(), pages.Shell, gate)
		e.GET(role.Prefix()+"/*", pages.Shell, gate)
	}

	// --- Storage ---
	storageHandler := handler.NewStorageHandler(d.Objects, d.Signer)
	e.GET("/api/storage/signed", storageHandler.Signed)
	e.GET(storage.PublicImageRoute+"*", storageHandler.Image)

	// --- Admin ---
	adminHandler := handler.NewAdminHandler(d.Admin)
	admin := e.Group("/api/admin", auth, middleware.RBAC(domain.RoleSuperAdmin))
	admin.GET("", adminHandler.Get)
	admin.POST("", adminHandler.Create)
	admin.PUT("/:id", adminHandler.Update)
	admin.DELETE("/:id", adminHandler.Delete)

	// --- HR ---
	hrHandler := handler.NewHRHandler(d.HR, d.Applications, d.Feed, d.Log)
	hr := e.Group("/api/hr", auth, staff)
	hr.GET("/download-pdf", hrHandler.DownloadPDF)
	hr.POST("/update-status", hrHandler.UpdateStatus)
	hr.GET("/applications", hrHandler.Applications)
	hr.GET("/realtime", hrHandler.Realtime)

	// --- Jobs ---
	jobHandler := handler.NewJobHandler(d.Jobs)
	jobs := e.Group("/api/jobs", auth)
	jobs.GET("", jobHandler.List)
	jobs.GET("/:id", jobHandler.Get)
	jobs.POST("", jobHandler.Create, staff)
	jobs.PUT("/:id", jobHandler.Update, staff)
	jobs.DELETE("/:id", jobHandler.Delete, staff)
	jobs.POST("/:id/image", jobHandler.UploadImage, staff)

	// --- Applications ---
	applicationHandler := handler.NewApplicationHandler(d.Applications)
	apps := e.Group("/api/applications", auth, middleware.RBAC(domain.RoleApplicant))
	apps.POST("", applicationHandler.Submit)
	apps.GET("/mine", applicationHandler.Mine)
	apps.GET("/:id/resume-url", applicationHandler.ResumeURL)

	return e
}

func metricsConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{
		Namespace:                 "hrportal",
		Subsystem:                 "http",
		DoNotUseRequestPathFor404: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// requestLogger logs one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			level := zerolog.InfoLevel
			switch {
			case v.Status >= 500:
				level = zerolog.ErrorLevel
			case v.Status >= 400:
				level = zerolog.WarnLevel
			}
			ev := log.WithLevel(level).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID)
			if v.Error != nil {
				ev = ev.Err(v.Error)
			}
			ev.Msg("request")
			return nil
		},
	})
}
