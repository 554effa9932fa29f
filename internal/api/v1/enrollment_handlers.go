package v1

import (
	"errors"
	"net/http"

	"github.com/madhava-poojari/learnsphere/internal/auth"
	"github.com/madhava-poojari/learnsphere/internal/service"
	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

type EnrollmentHandler struct {
	svc *service.Services
}

func NewEnrollmentHandler(svc *service.Services) *EnrollmentHandler {
	return &EnrollmentHandler{svc: svc}
}

// GET /me/enrollments
func (h *EnrollmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	current := auth.GetUserFromCtx(r.Context())
	view, err := h.svc.Enrollments.Dashboard(r.Context(), current.ID, 0)
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "error fetching enrollments", nil, err.Error())
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", map[string]interface{}{
		"cards":        view.Cards,
		"active_count": view.ActiveCount,
	}, nil)
}

// POST /me/enrollments {course_id}
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		CourseID uint `json:"course_id" validate:"required,gt=0"`
	}
	if err := utils.ParseJSON(r, &payload); err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid request", nil, err.Error())
		return
	}
	if fields := validateStruct(payload); fields != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid request", nil, fields)
		return
	}
	current := auth.GetUserFromCtx(r.Context())
	e, err := h.svc.Enrollments.Enroll(r.Context(), current.ID, payload.CourseID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.WriteJSONResponse(w, http.StatusNotFound, false, "course not found", nil, nil)
	case errors.Is(err, service.ErrAlreadyEnrolled):
		utils.WriteJSONResponse(w, http.StatusConflict, false, err.Error(), nil, nil)
	case err != nil:
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "error creating enrollment", nil, err.Error())
	default:
		utils.WriteJSONResponse(w, http.StatusCreated, true, "enrolled", e, nil)
	}
}
