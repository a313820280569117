package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iboss21/Rapper-Toon-Sheet/internal/http/handlers"
	"github.com/iboss21/Rapper-Toon-Sheet/internal/middleware"
)

// Options tunes the router around the handlers.
type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	RateLimitMax    int
	RateLimitWindow time.Duration

	// OutputsDir, when set, is served at /outputs/ so the filesystem
	// storage backend's URLs resolve. Empty for the object-store backend.
	OutputsDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/health", app.Health)

	r.Route("/api/generate", func(r chi.Router) {
		limited := r
		if opts.RateLimitMax > 0 {
			limited = r.With(middleware.RateLimit(opts.RateLimitMax, opts.RateLimitWindow))
		}
		limited.Post("/", app.Generate)
		r.Get("/{id}", app.GenerationStatus)
	})

	r.Get("/api/history", app.History)

	if opts.OutputsDir != "" {
		fs := http.StripPrefix("/outputs/", http.FileServer(http.Dir(opts.OutputsDir)))
		r.Get("/outputs/*", fs.ServeHTTP)
	}

	return r
}
