package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/madhava-poojari/learnsphere/internal/auth"
	"github.com/madhava-poojari/learnsphere/internal/catalog"
	"github.com/madhava-poojari/learnsphere/internal/enrollment"
	"github.com/madhava-poojari/learnsphere/internal/models"
	"github.com/madhava-poojari/learnsphere/internal/service"
	"github.com/madhava-poojari/learnsphere/internal/store"
)

// courseTile is one catalog card with the viewer's call-to-action.
type courseTile struct {
	Course models.Course
	Badge  enrollment.Badge
}

func (h *Web) Home(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, http.StatusOK, "home.html", map[string]any{
		"Title": "LearnSphere",
	})
}

// GET /courses?search=&category=&level=
func (h *Web) Catalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current := auth.GetUserFromCtx(ctx)
	qs := r.URL.Query()
	res, err := h.svc.Catalog.Search(ctx, catalog.Query{
		Search:   qs.Get("search"),
		Category: qs.Get("category"),
		Level:    qs.Get("level"),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	states, err := h.svc.Enrollments.States(ctx, current.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	tiles := make([]courseTile, 0, len(res.Courses))
	for _, c := range res.Courses {
		tiles = append(tiles, courseTile{Course: c, Badge: enrollment.CatalogBadge(c.ID, states[c.ID])})
	}
	h.renderTemplate(w, r, http.StatusOK, "courses.html", map[string]any{
		"Title":      "Explore Courses",
		"Query":      res.Query,
		"Courses":    tiles,
		"Categories": res.Categories,
		"Levels":     res.Levels,
		"Total":      res.Total,
	})
}

// GET /courses/{id}
func (h *Web) CourseDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := idParam(r)
	if !ok {
		h.deny(w, r, http.StatusNotFound, "course not found")
		return
	}
	course, err := h.svc.Catalog.Course(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		h.deny(w, r, http.StatusNotFound, "course not found")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	e, st, err := h.svc.Enrollments.State(ctx, auth.GetUserFromCtx(ctx).ID, id)
	if err != nil {
		internalError(w, err)
		return
	}
	data := map[string]any{
		"Title":  course.Title,
		"Course": course,
		"Badge":  enrollment.CatalogBadge(id, st),
		"Flash":  r.URL.Query().Get("flash"),
	}
	if e != nil {
		card := enrollment.Render(*course, st)
		data["Card"] = &card
	}
	h.renderTemplate(w, r, http.StatusOK, "course.html", data)
}

// POST /courses/{id}/enroll
func (h *Web) Enroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := idParam(r)
	if !ok {
		h.deny(w, r, http.StatusNotFound, "course not found")
		return
	}
	e, err := h.svc.Enrollments.Enroll(ctx, auth.GetUserFromCtx(ctx).ID, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.deny(w, r, http.StatusNotFound, "course not found")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	case err != nil:
		internalError(w, err)
	case e.Status == models.EnrollmentRequiresPayment:
		http.Redirect(w, r, enrollment.PayPath(id), http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	}
}

// GET /courses/{id}/quiz is only reachable with an active enrollment.
func (h *Web) Quiz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := idParam(r)
	if !ok {
		h.deny(w, r, http.StatusNotFound, "course not found")
		return
	}
	course, err := h.svc.Enrollments.RequireActive(ctx, auth.GetUserFromCtx(ctx).ID, id)
	switch {
	case errors.Is(err, service.ErrNotEnrolled):
		h.deny(w, r, http.StatusForbidden, "enroll in this course to take its quiz")
		return
	case errors.Is(err, service.ErrNotActive):
		h.deny(w, r, http.StatusForbidden, "complete your payment to take this quiz")
		return
	case err != nil:
		internalError(w, err)
		return
	}
	h.renderTemplate(w, r, http.StatusOK, "quiz.html", map[string]any{
		"Title":  fmt.Sprintf("%s Quiz", course.Title),
		"Course": course,
	})
}
