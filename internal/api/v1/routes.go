package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/madhava-poojari/learnsphere/internal/auth"
	"github.com/madhava-poojari/learnsphere/internal/config"
	"github.com/madhava-poojari/learnsphere/internal/models"
	"github.com/madhava-poojari/learnsphere/internal/service"
	"github.com/madhava-poojari/learnsphere/internal/store"
)

type API struct {
	cfg    *config.Config
	router *chi.Mux
	store  store.Repository
	svc    *service.Services
}

func NewAPI(cfg *config.Config, s store.Repository, svc *service.Services) *API {
	api := &API{cfg: cfg, router: chi.NewRouter(), store: s, svc: svc}
	api.router.Use(middleware.Logger)
	api.routes()
	return api
}

func (a *API) Routes() *chi.Mux {
	return a.router
}

func (a *API) routes() {
	courseH := NewCourseHandler(a.svc)
	enrollH := NewEnrollmentHandler(a.svc)
	payH := NewPaymentHandler(a.svc)
	adminH := NewAdminHandler(a.svc)
	userH := NewUserHandler(a.svc)

	viewer := auth.ViewerMiddleware(a.store, a.cfg.DefaultViewerID, auth.JSONDeny)
	noop := func(w http.ResponseWriter, r *http.Request) {}

	r := a.router
	r.Route("/courses", func(r chi.Router) {
		r.Options("/*", noop)
		r.Get("/facets", courseH.Facets)
		r.With(viewer).Get("/", courseH.ListCourses)
		r.With(viewer).Get("/{id}", courseH.GetCourse)
	})

	r.Route("/me", func(r chi.Router) {
		r.Options("/*", noop)
		r.Group(func(r chi.Router) {
			r.Use(viewer)
			r.Get("/", userH.GetSelfProfile)
			r.Get("/enrollments", enrollH.ListMine)
			r.Post("/enrollments", enrollH.Enroll)
			r.Post("/enrollments/{courseID}/checkout", payH.StartCheckout)
			r.Post("/enrollments/{courseID}/receipt", payH.SubmitReceipt)
		})
	})

	// the checkout token identifies the payer, so no viewer is needed
	r.Route("/payments", func(r chi.Router) {
		r.Options("/*", noop)
		r.Post("/checkout/complete", payH.CompleteCheckout)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Options("/*", noop)

		// All admin routes require the admin role
		r.Group(func(r chi.Router) {
			r.Use(viewer)
			r.Use(auth.RoleMiddleware(auth.JSONDeny, models.RoleAdmin))

			r.Get("/dashboard", adminH.GetAdminDashboard)
			r.Get("/payments/pending", adminH.GetPendingPayments)
			r.Post("/payments/{id}/approve", adminH.ApprovePayment)
			r.Post("/payments/{id}/reject", adminH.RejectPayment)
			r.Get("/users/{id}", userH.GetUser)
			r.Post("/students", userH.CreateStudent)
		})
	})

	r.Route("/health", func(r chi.Router) {
		r.Options("/*", noop)
		r.Get("/", HealthHandler(a.store))
	})
}
