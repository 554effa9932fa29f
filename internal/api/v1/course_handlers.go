package v1

import (
	"errors"
	"net/http"

	"github.com/madhava-poojari/learnsphere/internal/auth"
	"github.com/madhava-poojari/learnsphere/internal/catalog"
	"github.com/madhava-poojari/learnsphere/internal/enrollment"
	"github.com/madhava-poojari/learnsphere/internal/models"
	"github.com/madhava-poojari/learnsphere/internal/service"
	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

type CourseHandler struct {
	svc *service.Services
}

func NewCourseHandler(svc *service.Services) *CourseHandler {
	return &CourseHandler{svc: svc}
}

// courseItem is a catalog entry plus the viewer's enrollment badge.
type courseItem struct {
	models.Course
	EnrollmentStatus models.EnrollmentStatus `json:"enrollment_status,omitempty"`
	Badge            enrollment.Badge        `json:"badge"`
}

func newCourseItem(c models.Course, st enrollment.State) courseItem {
	item := courseItem{Course: c, Badge: enrollment.CatalogBadge(c.ID, st)}
	if st != nil {
		item.EnrollmentStatus = st.Status()
	}
	return item
}

// GET /courses?search=&category=&level=
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current := auth.GetUserFromCtx(ctx)
	qs := r.URL.Query()
	res, err := h.svc.Catalog.Search(ctx, catalog.Query{
		Search:   qs.Get("search"),
		Category: qs.Get("category"),
		Level:    qs.Get("level"),
	})
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "error fetching courses", nil, err.Error())
		return
	}
	states, err := h.svc.Enrollments.States(ctx, current.ID)
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "error fetching enrollments", nil, err.Error())
		return
	}
	items := make([]courseItem, 0, len(res.Courses))
	for _, c := range res.Courses {
		items = append(items, newCourseItem(c, states[c.ID]))
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", map[string]interface{}{
		"query":      res.Query,
		"courses":    items,
		"categories": res.Categories,
		"levels":     res.Levels,
		"total":      res.Total,
	}, nil)
}

// GET /courses/facets
func (h *CourseHandler) Facets(w http.ResponseWriter, r *http.Request) {
	categories, levels, err := h.svc.Catalog.Facets(r.Context())
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "error fetching facets", nil, err.Error())
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", map[string][]string{
		"categories": categories,
		"levels":     levels,
	}, nil)
}

// GET /courses/{id}
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := uintParam(r, "id")
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid course id", nil, err.Error())
		return
	}
	course, err := h.svc.Catalog.Course(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteJSONResponse(w, http.StatusNotFound, false, "course not found", nil, nil)
		return
	}
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "error fetching course", nil, err.Error())
		return
	}
	_, st, err := h.svc.Enrollments.State(ctx, auth.GetUserFromCtx(ctx).ID, id)
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "error fetching enrollment", nil, err.Error())
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", newCourseItem(*course, st), nil)
}
