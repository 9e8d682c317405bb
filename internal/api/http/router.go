package http

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	auth "github.com/mind-engage/understanding-check/internal/auth/middleware"
	"github.com/mind-engage/understanding-check/internal/check"
	"github.com/mind-engage/understanding-check/internal/page"
	"github.com/mind-engage/understanding-check/internal/rbac"
	syncx "github.com/mind-engage/understanding-check/internal/sync"
)

type Deps struct {
	Store       check.Store
	Sessions    *page.Registry
	Events      syncx.Appender
	Auth        *auth.AuthService
	Credentials auth.Credentials
	// DB enables refreshing roles from the users table; optional.
	DB *sql.DB
	// EventFeed serves GET /events; the route is absent when nil.
	EventFeed syncx.Reader

	Logger        *slog.Logger
	Debug         bool
	SecureCookies bool
	CORSOrigins   []string
	AccessLog     bool
}

func NewRouter(d Deps) http.Handler {
	if d.Events == nil {
		d.Events = syncx.Discard
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	if d.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	participants := &Participants{
		Store:         d.Store,
		Sessions:      d.Sessions,
		Events:        d.Events,
		Logger:        d.Logger,
		Debug:         d.Debug,
		SecureCookies: d.SecureCookies,
	}
	participants.Mount(r)

	// Experimenter API (JWT → role in context → RBAC)
	r.Group(func(ar chi.Router) {
		ar.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		ar.Post("/auth/login", auth.LoginHandler(d.Auth, d.Credentials, d.Logger))

		ar.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(d.Auth))
			if d.DB != nil {
				pr.Use(auth.AttachRoleFromDB(d.DB))
			}

			pr.With(rbac.Require("check:create")).
				Post("/checks", UploadCheckHandler(d.Store))
			pr.With(rbac.Require("check:view")).
				Get("/checks", ListChecksHandler(d.Store))
			pr.With(rbac.Require("check:view")).
				Get("/checks/{checkID}", GetCheckHandler(d.Store))
			pr.With(rbac.Require("check:delete")).
				Delete("/checks/{checkID}", DeleteCheckHandler(d.Store))
			pr.With(rbac.Require("results:view")).
				Get("/checks/{checkID}/completions", ListCompletionsHandler(d.Store, d.Logger))
			if d.EventFeed != nil {
				pr.With(rbac.RequireAny("events:view", "results:view")).
					Get("/events", ListEventsHandler(d.EventFeed))
			}
		})
	})
	return r
}
