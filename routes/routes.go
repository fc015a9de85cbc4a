package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/friendly-matches/handlers"
	"github.com/Dosada05/friendly-matches/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/friendly-matches/docs"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type Handlers struct {
	Match      *handlers.MatchHandler
	Rule       *handlers.RuleHandler
	Enrollment *handlers.EnrollmentHandler
	Penalty    *handlers.PenaltyHandler
	Health     *handlers.HealthHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	if opts.RequestTimeout > 0 {
		router.Use(chiMiddleware.Timeout(opts.RequestTimeout))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.Health)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := middleware.Authenticate(opts.JWTSecret)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.Match.ListMatches)
			r.With(authenticate).Post("/", h.Match.CreateMatch)

			r.Route("/{matchID}", func(r chi.Router) {
				// Публичные маршруты
				r.Get("/", h.Match.GetMatch)
				r.Get("/rule", h.Rule.GetRule)
				r.Get("/teams", h.Enrollment.ListEnrollments)
				r.Get("/penalty", h.Penalty.GetPenalty)

				r.Group(func(r chi.Router) {
					r.Use(authenticate)

					r.Delete("/", h.Match.DeleteMatch)

					r.Post("/rule", h.Rule.CreateRule)
					r.Patch("/rule", h.Rule.UpdateRule)

					r.Post("/teams/{teamID}", h.Enrollment.Enroll)
					r.Delete("/teams/{teamID}", h.Enrollment.Withdraw)
					r.Post("/compliance-sweep", h.Enrollment.SweepCompliance)

					r.Post("/penalty", h.Penalty.ApplyPenalty)
					r.Patch("/penalty", h.Penalty.UpdatePenalty)
					r.Delete("/penalty", h.Penalty.RemovePenalty)
				})
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"route not found","kind":"not_found"}` + "\n"))
	})
}
