package httpserver

import (
	"net/http"
	"time"

	"barbid-go/internal/config"
	"barbid-go/internal/transport/httpserver/handler"
	authmw "barbid-go/internal/transport/httpserver/middleware"
	"barbid-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, profiles authmw.ProfileEnsurer, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS([]string{"http://localhost:5173"}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		auth := authmw.NewSupabaseAuth(cfg.Supabase, profiles, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)

			r.Get("/businesses", handlers.ListPublicBusinesses)
			r.Get("/businesses/me", handlers.ListMyBusinesses)
			r.Post("/businesses", handlers.CreateBusiness)
			r.Get("/businesses/{id}", handlers.GetBusiness)
			r.Patch("/businesses/{id}", handlers.UpdateBusiness)
			r.Delete("/businesses/{id}", handlers.DeleteBusiness)

			r.Get("/businesses/{id}/jobs", handlers.ListBusinessJobs)
			r.Post("/businesses/{id}/jobs", handlers.CreateJob)

			r.Get("/jobs", handlers.JobFeed)
			r.Get("/jobs/{id}", handlers.GetJob)
			r.Patch("/jobs/{id}", handlers.UpdateJob)
			r.Delete("/jobs/{id}", handlers.DeleteJob)
			r.Post("/jobs/{id}/close", handlers.CloseJob)
			r.Post("/jobs/{id}/accept", handlers.AcceptApplication)
			r.Post("/jobs/{id}/verify", handlers.VerifyAttendance)

			r.Post("/jobs/{id}/applications", handlers.Apply)
			r.Get("/jobs/{id}/applications", handlers.ListApplicants)
			r.Get("/applications/me", handlers.MyApplications)

			r.Get("/notifications", handlers.ListNotifications)
			r.Get("/notifications/unread", handlers.UnreadNotificationCount)
			r.Post("/notifications/read-all", handlers.MarkAllNotificationsRead)
			r.Patch("/notifications/{id}/read", handlers.MarkNotificationRead)
			r.Delete("/notifications/{id}", handlers.DeleteNotification)

			r.Get("/profiles/me", handlers.GetMyProfile)
			r.Patch("/profiles/me", handlers.UpdateMyProfile)
			r.Post("/profiles/me/stats/recompute", handlers.RecomputeMyStats)
			r.Get("/profiles/{username}", handlers.GetProfileByUsername)
			r.Post("/profiles/{username}/reviews", handlers.AddReview)
		})
	})

	return r
}
