package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ai-translator/web/internal/api/handlers"
	"github.com/ai-translator/web/internal/api/middleware"
	"github.com/ai-translator/web/internal/auth"
	"github.com/ai-translator/web/internal/config"
	"github.com/ai-translator/web/internal/controller"
	"github.com/ai-translator/web/internal/db"
	"github.com/ai-translator/web/internal/session"
	"github.com/ai-translator/web/internal/translate"
	"github.com/ai-translator/web/internal/web"
)

// Services are the long-lived components the router wires into handlers.
type Services struct {
	Database   *db.Database
	JWT        *auth.JWTService
	Sessions   session.Store
	Translator *translate.Service
	IntroGate  *session.IntroGate
	Pages      *web.Renderer
}

func NewRouter(cfg *config.Config, svc Services) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)

	// Handlers
	ctrl := controller.New(svc.Translator)
	translatorHandler := handlers.NewTranslatorHandler(ctrl, svc.Translator, svc.IntroGate, svc.Pages)
	authHandler := handlers.NewAuthHandler(svc.Database, svc.JWT)
	settingsHandler := handlers.NewSettingsHandler(svc.Database, svc.Translator)
	modelsHandler := handlers.NewModelsHandler(svc.Translator)

	translateLimiter := middleware.NewRateLimiter(cfg.TranslateRateLimit, time.Minute)
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	sessions := middleware.SessionMiddleware(svc.JWT, svc.Sessions, cfg.CookieSecure)

	r.Get("/healthz", handlers.Health(svc.Translator.Name))

	// HTML pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))
		r.Use(sessions)

		r.Get("/", translatorHandler.Index)
		r.With(translateLimiter.Handler).Post("/translate", translatorHandler.Translate)
		r.Post("/clear", translatorHandler.Clear)
	})

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(middleware.CORSHandler(cfg.CORSOrigins)))
		r.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))

		r.With(loginLimiter.Handler).Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(sessions)

			r.Get("/languages", translatorHandler.ListLanguages)
			r.Get("/session", translatorHandler.GetSession)
			r.With(translateLimiter.Handler).Post("/translate", translatorHandler.APITranslate)
			r.Post("/clear", translatorHandler.APIClear)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(svc.JWT))

			r.Get("/auth/me", authHandler.Me)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin"))

				r.Get("/settings", settingsHandler.GetSettings)
				r.Put("/settings", settingsHandler.UpdateSettings)
				r.Get("/settings/models/{engine}", modelsHandler.ListModels)
			})
		})
	})

	return r
}
