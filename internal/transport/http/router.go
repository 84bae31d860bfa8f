package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/register", h.Register)
		api.Post("/login", h.Login)
		api.Post("/logout", h.Logout)

		api.Group(func(secure chi.Router) {
			secure.Use(h.RequireAuth)
			secure.Get("/user", h.CurrentUser)
			secure.Get("/questions", h.Questions)
			secure.Post("/submit-test", h.SubmitTest)
			secure.Get("/leaderboard", h.Leaderboard)
			secure.Get("/user-results", h.UserResults)
			secure.Get("/ws/leaderboard", h.ServeLeaderboardWS)

			secure.Group(func(admin chi.Router) {
				admin.Use(h.RequireAdmin)
				admin.Get("/admin/leaderboard.xlsx", h.ExportLeaderboard)
			})
		})
	})

	return r
}
