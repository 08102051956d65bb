package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options carries the transport-level settings.
type Options struct {
	JWTSecret   []byte
	CORSOrigins []string
}

// New assembles the HTTP surface: open health and metrics endpoints,
// and the bearer-token protected API under /api/v1.
func New(h *Handlers, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Auth(opts.JWTSecret))

		r.Post("/itineraries/parse", h.ParseItinerary())

		r.Route("/records", func(r chi.Router) {
			r.Post("/", h.SaveRecords())
			r.Get("/", h.ListRecords())

			r.Route("/{recordID}", func(r chi.Router) {
				r.Delete("/", h.DeleteRecord())
				r.Get("/batch", h.GetBatch())
				r.Patch("/checkin", h.CompleteCheckin())
				r.Get("/invoice", h.Invoice())
				r.Get("/calendar", h.Calendar())
				r.Get("/share", h.Share())
			})
		})
	})

	return r
}
