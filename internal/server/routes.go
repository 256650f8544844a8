package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Get("/factors", handler(s.getV1Factors))

			r.Route("/rankings", func(r chi.Router) {
				r.Get("/", handler(s.getV1Rankings))
				r.Post("/", handler(s.postV1Rankings))
				r.Get("/latest", handler(s.getV1RankingsLatest))
				r.Post("/refresh", handler(s.postV1RankingsRefresh))
			})

			r.Put("/areas", handler(s.putV1Areas))

			r.Post("/deals/evaluate", handler(s.postV1DealsEvaluate))
			r.Get("/duty", handler(s.getV1Duty))

			r.Route("/duty-brackets", func(r chi.Router) {
				r.Get("/", handler(s.getV1DutyBrackets))
				r.Put("/{jurisdiction}/{occupancy}", handler(s.putV1DutyBrackets))
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			replyError(r.Context(), w, err)
		}
	}
}
