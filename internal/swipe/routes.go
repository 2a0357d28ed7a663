package swipe

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const RoutePrefix = "/api/v1/swipes"

// NewRouter builds the swipe subtree. It is mounted under RoutePrefix by
// the top level router.
func NewRouter(handler *Handler, authenticate func(http.Handler) http.Handler, timeout time.Duration) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Route(RoutePrefix, func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/queue", handler.GetQueue)
		r.Post("/like", handler.Like)
		r.Post("/pass", handler.Pass)
		r.Get("/throttle", handler.GetThrottle)
		r.Get("/matches", handler.GetMatches)
		r.Delete("/seen", handler.ResetSeen)
	})

	return r
}
