package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"enrollment-api/internal/config"
	"enrollment-api/internal/handler"
	"enrollment-api/internal/metrics"
	"enrollment-api/internal/middleware"
	"enrollment-api/internal/model"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	Parent      *handler.ParentHandler
	Classroom   *handler.ClassroomHandler
	Student     *handler.StudentHandler
	Application *handler.ApplicationHandler
	Admin       *handler.AdminHandler
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	collector *metrics.Collector,
	h Handlers,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM, collector)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)
	r.Use(middleware.Metrics(collector))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.MetricsEnabled {
		r.Get("/metrics", collector.Handler().ServeHTTP)
	}

	requireAuth := authMiddleware.RequireAuth
	parentOnly := authMiddleware.RequireRoles(model.RoleParent)
	staffOrAdmin := authMiddleware.RequireRoles(model.RoleStaff, model.RoleAdmin)
	adminOnly := authMiddleware.RequireRoles(model.RoleAdmin)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/refresh", h.Auth.Refresh)
			auth.Post("/password-reset", h.Auth.SendPasswordReset)
			auth.With(requireAuth).Post("/logout", h.Auth.Logout)
			auth.With(requireAuth).Post("/verify-email", h.Auth.SendEmailVerification)
			auth.With(requireAuth).Post("/verify-email/sync", h.Auth.SyncEmailVerification)
			auth.With(requireAuth).Post("/change-password", h.Auth.ChangePassword)
			auth.With(requireAuth).Get("/me", h.Auth.Me)
		})

		api.Route("/parents/me", func(parents chi.Router) {
			parents.Use(requireAuth, parentOnly)

			parents.Get("/", h.Parent.GetProfile)
			parents.Patch("/", h.Parent.UpdateProfile)

			parents.Route("/children", func(children chi.Router) {
				children.Get("/", h.Parent.ListChildren)
				children.Post("/", h.Parent.CreateChild)
				children.Get("/{childID}", h.Parent.GetChild)
				children.Patch("/{childID}", h.Parent.UpdateChild)
				children.Delete("/{childID}", h.Parent.DeleteChild)
				children.Post("/{childID}/documents", h.Parent.UploadChildDocument)
				children.Get("/{childID}/documents", h.Parent.ChildDocumentURL)
			})

			parents.Get("/students", h.Student.ListMine)
			parents.Get("/applications", h.Application.ListMine)
			parents.Post("/applications", h.Application.Submit)
			parents.Get("/applications/{applicationID}", h.Application.GetMine)
			parents.Post("/applications/{applicationID}/cancel", h.Application.Cancel)
		})

		api.Route("/classrooms", func(rooms chi.Router) {
			rooms.With(requireAuth).Get("/", h.Classroom.List)
			rooms.With(requireAuth).Get("/{classroomID}", h.Classroom.Get)
			rooms.With(requireAuth, staffOrAdmin).Post("/", h.Classroom.Create)
			rooms.With(requireAuth, staffOrAdmin).Patch("/{classroomID}", h.Classroom.Update)
			rooms.With(requireAuth, staffOrAdmin).Delete("/{classroomID}", h.Classroom.Delete)
		})

		api.Route("/students", func(students chi.Router) {
			students.Use(requireAuth, staffOrAdmin)

			students.Get("/", h.Student.List)
			students.Post("/", h.Student.Create)
			students.Get("/{studentID}", h.Student.Get)
			students.Patch("/{studentID}", h.Student.Update)
			students.Delete("/{studentID}", h.Student.Delete)
		})

		api.Route("/applications", func(apps chi.Router) {
			apps.Use(requireAuth, staffOrAdmin)

			apps.Get("/", h.Application.List)
			apps.Get("/{applicationID}", h.Application.Get)
			apps.Post("/{applicationID}/payments", h.Application.RecordPayment)
			apps.Post("/{applicationID}/approve", h.Application.Approve)
			apps.Post("/{applicationID}/reject", h.Application.Reject)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(requireAuth, adminOnly)

			admin.Put("/users/{userID}/role", h.Admin.UpdateRole)
			admin.Post("/users/{userID}/activate", h.Admin.Activate)
			admin.Post("/users/{userID}/deactivate", h.Admin.Deactivate)
			admin.Post("/seed", h.Admin.Seed)
		})
	})

	return r
}
