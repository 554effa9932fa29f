package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/madhava-poojari/learnsphere/internal/admin"
	"github.com/madhava-poojari/learnsphere/internal/auth"
	"github.com/madhava-poojari/learnsphere/internal/service"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

type AdminHandler struct {
	svc *service.Services
}

func NewAdminHandler(svc *service.Services) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// GetAdminDashboard returns stats plus the rows of the requested tab.
// GET /admin/dashboard?tab=overview|payments|courses|students
func (h *AdminHandler) GetAdminDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Approval.Dashboard(r.Context(), admin.ParseTab(r.URL.Query().Get("tab")))
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "error fetching dashboard", nil, err.Error())
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", d, nil)
}

// GetPendingPayments returns receipts waiting for a decision, newest first
func (h *AdminHandler) GetPendingPayments(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Approval.Pending(r.Context())
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusInternalServerError, false, "error fetching pending payments", nil, err.Error())
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, true, "success", rows, nil)
}

// POST /admin/payments/{id}/approve
func (h *AdminHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	current := auth.GetUserFromCtx(r.Context())
	writeResult(w, h.svc.Approval.Approve(r.Context(), chi.URLParam(r, "id"), current.ID))
}

// POST /admin/payments/{id}/reject
func (h *AdminHandler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	current := auth.GetUserFromCtx(r.Context())
	writeResult(w, h.svc.Approval.Reject(r.Context(), chi.URLParam(r, "id"), current.ID))
}
