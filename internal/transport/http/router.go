package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/orbit-dashboard/orbit/internal/application/home"
	"github.com/orbit-dashboard/orbit/internal/application/session"
	"github.com/orbit-dashboard/orbit/internal/application/signup"
	"github.com/orbit-dashboard/orbit/internal/config"
	"github.com/orbit-dashboard/orbit/internal/transport/http/handler"
	appmiddleware "github.com/orbit-dashboard/orbit/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo       AccountRepository
	PendingSignupRepo PendingSignupRepository
	SessionRepo       SessionRepository
	MembershipRepo    MembershipRepository
	ActiveSessionRepo ActiveSessionRepository
	Profiles          ProfileDirectory
	Events            SignupEvents // nil disables signup events
	JWTProvider       BearerProvider
}

// NewRouter builds and returns the application router. ctx bounds background
// work started by middleware.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, on login and signup.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10, cfg.TrustedProxies...)

	sessionSvc := session.NewService(session.ServiceDeps{
		AccountRepo:    deps.AccountRepo,
		SessionRepo:    deps.SessionRepo,
		MembershipRepo: deps.MembershipRepo,
		JWTProvider:    deps.JWTProvider,
		SessionTTL:     cfg.JWTExpiry,
	})
	signupSvc := signup.NewService(signup.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		PendingRepo: deps.PendingSignupRepo,
		Profiles:    deps.Profiles,
		Sessions:    sessionSvc,
		Events:      deps.Events,
		CodeLength:  cfg.Signup.CodeLength,
		CodeTTL:     cfg.Signup.CodeTTL,
	})
	homeSvc := home.NewService(home.ServiceDeps{
		MembershipRepo:    deps.MembershipRepo,
		ActiveSessionRepo: deps.ActiveSessionRepo,
		AccountRepo:       deps.AccountRepo,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(sessionSvc)
	signupH := handler.NewSignupHandler(signupSvc)
	homeH := handler.NewHomeHandler(homeSvc)
	oauthH := handler.NewOAuthHandler(cfg.OAuth.StartURL)

	authMw := appmiddleware.Auth(deps.JWTProvider, sessionSvc)

	r.Route("/api", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/auth/signup/start", signupH.Start)
		r.With(sensitiveRL.Limit).Post("/auth/signup/finish", signupH.Finish)
		r.Get("/auth/oauth", oauthH.Status)
		r.Get("/auth/oauth/start", oauthH.Start)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/auth/session", authH.GetCurrent)
			r.Post("/auth/logout", authH.Logout)
			r.Get("/workspace/{id}/home/activeSessions", homeH.ActiveSessions)
		})
	})

	return r
}
