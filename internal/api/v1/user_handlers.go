package v1

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/madhava-poojari/learnsphere/internal/auth"
	"github.com/madhava-poojari/learnsphere/internal/service"
	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

type UserHandler struct {
	svc *service.Services
}

func NewUserHandler(svc *service.Services) *UserHandler {
	return &UserHandler{svc: svc}
}

// GET /me - the profile of the requesting viewer
func (h *UserHandler) GetSelfProfile(w http.ResponseWriter, r *http.Request) {
	current := auth.GetUserFromCtx(r.Context())
	if current == nil {
		utils.WriteJSONResponse(w, http.StatusUnauthorized, false, "unauthorized", nil, nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", current, nil)
}

// GET /admin/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "missing id", nil, nil)
		return
	}
	u, err := h.svc.Users.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteJSONResponse(w, http.StatusNotFound, false, "not found", nil, nil)
		return
	}
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "error fetching user", nil, err.Error())
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", u, nil)
}

// POST /admin/students {email, first_name, last_name}
func (h *UserHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email     string `json:"email" validate:"required,email"`
		FirstName string `json:"first_name" validate:"required,max=100"`
		LastName  string `json:"last_name" validate:"max=100"`
	}
	if err := utils.ParseJSON(r, &payload); err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid request", nil, err.Error())
		return
	}
	if fields := validateStruct(payload); fields != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid request", nil, fields)
		return
	}
	u, err := h.svc.Users.CreateStudent(r.Context(), payload.Email, payload.FirstName, payload.LastName)
	if errors.Is(err, store.ErrDuplicate) {
		utils.WriteJSONResponse(w, http.StatusConflict, false, "email already registered", nil, nil)
		return
	}
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "error creating student", nil, err.Error())
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, true, "student created", u, nil)
}
