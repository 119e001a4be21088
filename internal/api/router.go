package api

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hasdouaaa/dashboard-autops/internal/auth"
	"github.com/hasdouaaa/dashboard-autops/internal/config"
	"github.com/hasdouaaa/dashboard-autops/internal/enrichment"
	"github.com/hasdouaaa/dashboard-autops/internal/explorer"
	"github.com/hasdouaaa/dashboard-autops/internal/session"
)

// NewRouter creates the HTTP router
func NewRouter(creds *auth.Store, enricher *enrichment.Enricher, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	// CORS - allow credentials for auth cookies
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// secureCookie should only be true when serving HTTPS directly; behind
	// a reverse proxy the proxy terminates TLS.
	secureCookie := os.Getenv("AUTOPS_SECURE_COOKIES") == "true"
	authService := auth.New(cfg.SecretKey, secureCookie)
	authMiddleware := auth.NewMiddleware(authService)

	h := &Handlers{
		creds:    creds,
		auth:     authService,
		sessions: session.NewStore(),
		enricher: enricher,
		explorer: explorer.New(),
		cfg:      cfg,
	}

	// Public endpoints
	r.Get("/health", h.Health)
	r.Get("/api/version", h.GetVersion)

	r.Route("/api", func(r chi.Router) {

		// Credential endpoints (public, rate limited: 10 req/min/IP)
		r.Group(func(r chi.Router) {
			r.Use(RateLimit(10, time.Minute))
			r.Post("/auth/login", h.Login)
			r.Post("/auth/register", h.Register)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)

			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/me", h.GetCurrentUser)

			// Dataset lifecycle
			r.Post("/dataset", h.UploadDataset)
			r.Get("/dataset", h.GetDataset)
			r.Get("/dataset/rows", h.GetDatasetRows)
			r.Get("/dataset/options", h.GetDatasetOptions)
			r.Get("/dataset/export", h.ExportDataset)

			// Fixed aggregate battery
			r.Get("/stats/hourly-ips", h.GetStatsHourlyIPs)
			r.Get("/stats/country-ips", h.GetStatsCountryIPs)
			r.Get("/stats/city-ips", h.GetStatsCityIPs)
			r.Get("/stats/geo-ips", h.GetStatsGeoIPs)
			r.Get("/stats/visitors-by-date", h.GetStatsVisitorsByDate)
			r.Get("/stats/ips-by-date", h.GetStatsIPsByDate)
			r.Get("/stats/top-urls", h.GetStatsTopURLs)
			r.Get("/stats/user-agents", h.GetStatsUserAgents)
			r.Get("/stats/overview", h.GetStatsOverview)

			// Custom chart builder
			r.Post("/charts", h.CreateChart)
			r.Get("/charts", h.ListCharts)

			// Dataset explorer
			r.Post("/explorer/query", h.ExplorerQuery)
			r.Get("/explorer/schema", h.ExplorerSchema)
		})
	})

	return r
}
