// Package web serves the server-rendered LearnSphere pages: the catalog, the
// student dashboard with its payment modal, the hosted checkout page and the
// admin dashboard.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/madhava-poojari/learnsphere/internal/auth"
	"github.com/madhava-poojari/learnsphere/internal/config"
	"github.com/madhava-poojari/learnsphere/internal/models"
	"github.com/madhava-poojari/learnsphere/internal/service"
	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// mdRenderer escapes raw HTML in course descriptions (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type Web struct {
	cfg    *config.Config
	router *chi.Mux
	store  store.Repository
	svc    *service.Services
}

func New(cfg *config.Config, s store.Repository, svc *service.Services) *Web {
	w := &Web{cfg: cfg, router: chi.NewRouter(), store: s, svc: svc}
	w.router.Use(middleware.Logger)
	w.routes()
	return w
}

func (h *Web) Routes() *chi.Mux {
	return h.router
}

func (h *Web) routes() {
	viewer := auth.ViewerMiddleware(h.store, h.cfg.DefaultViewerID, h.deny)

	r := h.router
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.deny(w, r, http.StatusNotFound, "page not found")
	})

	if h.cfg.ReceiptStorage == config.ReceiptsLocal && h.cfg.UploadDir != "" {
		// stored receipts are for reviewers only
		r.With(viewer, auth.RoleMiddleware(h.deny, models.RoleAdmin)).Get("/uploads/*", h.ServeReceipt)
	}
	r.Post("/viewer", h.SwitchViewer)

	r.Group(func(r chi.Router) {
		r.Use(viewer)
		r.Get("/", h.Home)
		r.Get("/courses", h.Catalog)
		r.Get("/courses/{id}", h.CourseDetail)
		r.Post("/courses/{id}/enroll", h.Enroll)
		r.Get("/courses/{id}/quiz", h.Quiz)

		r.Get("/dashboard", h.Dashboard)
		r.Post("/dashboard/courses/{id}/checkout", h.StartCheckout)
		r.Post("/dashboard/courses/{id}/receipt", h.SubmitReceipt)
	})

	// the signed token names the payer
	r.Get("/payments/checkout", h.CheckoutPage)
	r.Post("/payments/checkout", h.CompleteCheckout)

	r.Route("/admin", func(r chi.Router) {
		r.Use(viewer)
		r.Use(auth.RoleMiddleware(h.deny, models.RoleAdmin))
		r.Get("/dashboard", h.AdminDashboard)
		r.Post("/payments/{id}/approve", h.ApprovePayment)
		r.Post("/payments/{id}/reject", h.RejectPayment)
	})
}

// Protect wraps the page router with CSRF checks on every unsafe method.
// Without a configured key a random one is used, which invalidates tokens on
// restart.
func Protect(cfg *config.Config) func(http.Handler) http.Handler {
	key := []byte(cfg.CSRFKey)
	if len(key) == 0 {
		key = utils.RandomKey(32)
		slog.Warn("CSRF_KEY not set, using an ephemeral key")
	}
	return csrf.Protect(key,
		csrf.Secure(cfg.CSRFSecure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slog.Warn("csrf check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
			http.Error(w, "forbidden: invalid csrf token", http.StatusForbidden)
		})),
	)
}

func (h *Web) renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	current := auth.GetUserFromCtx(r.Context())

	funcMap := template.FuncMap{
		"csrfField": func() template.HTML { return csrf.TemplateField(r) },
		"viewer":    func() *models.User { return current },
		"isAdmin":   func() bool { return current != nil && current.Role == models.RoleAdmin },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"money": formatMoney,
		"date":  func(t time.Time) string { return t.Format("2006-01-02") },
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
	if err != nil {
		internalError(w, fmt.Errorf("parse %s: %w", name, err))
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// deny renders the error page; it satisfies auth.Deny.
func (h *Web) deny(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.renderTemplate(w, r, status, "error.html", map[string]any{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// internalError logs the real error and returns a generic message.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func formatMoney(v float64) string {
	if v <= 0 {
		return "Free"
	}
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func idParam(r *http.Request) (uint, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// SwitchViewer stores the chosen viewer id in a cookie. There is no login;
// this only picks which seeded account the pages act as.
func (h *Web) SwitchViewer(w http.ResponseWriter, r *http.Request) {
	id := strings.ToUpper(strings.TrimSpace(r.FormValue("viewer_id")))
	if id != "" && !utils.ValidUserID(id) {
		h.deny(w, r, http.StatusBadRequest, "viewer ids look like USR00ALEX1")
		return
	}
	if id == "" {
		http.SetCookie(w, &http.Cookie{Name: auth.ViewerCookie, Value: "", Path: "/", MaxAge: -1})
	} else {
		http.SetCookie(w, &http.Cookie{
			Name:     auth.ViewerCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	next := r.FormValue("next")
	if !localPath(next) {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// localPath reports whether p is a same-origin path. Browsers treat a leading
// "/\" like "//", a protocol-relative URL.
func localPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	return len(p) == 1 || (p[1] != '/' && p[1] != '\\')
}
