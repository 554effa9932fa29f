package web

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/madhava-poojari/learnsphere/internal/admin"
	"github.com/madhava-poojari/learnsphere/internal/auth"
	"github.com/madhava-poojari/learnsphere/internal/payment"
)

// GET /admin/dashboard?tab=
func (h *Web) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	h.renderAdmin(w, r, http.StatusOK, admin.ParseTab(r.URL.Query().Get("tab")), r.URL.Query().Get("flash"), nil)
}

func (h *Web) renderAdmin(w http.ResponseWriter, r *http.Request, status int, tab admin.Tab, flash string, res *payment.Result) {
	d, err := h.svc.Approval.Dashboard(r.Context(), tab)
	if err != nil {
		internalError(w, err)
		return
	}
	h.renderTemplate(w, r, status, "admin.html", map[string]any{
		"Title":     "Admin Dashboard",
		"Dashboard": d,
		"Flash":     flash,
		"Result":    res,
	})
}

// POST /admin/payments/{id}/approve
func (h *Web) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	current := auth.GetUserFromCtx(r.Context())
	h.afterDecision(w, r, h.svc.Approval.Approve(r.Context(), chi.URLParam(r, "id"), current.ID))
}

// POST /admin/payments/{id}/reject
func (h *Web) RejectPayment(w http.ResponseWriter, r *http.Request) {
	current := auth.GetUserFromCtx(r.Context())
	h.afterDecision(w, r, h.svc.Approval.Reject(r.Context(), chi.URLParam(r, "id"), current.ID))
}

// afterDecision returns to the payments tab; the decided row is gone from the
// reloaded list because its status changed.
func (h *Web) afterDecision(w http.ResponseWriter, r *http.Request, res payment.Result) {
	if res.OK() {
		http.Redirect(w, r, "/admin/dashboard?tab="+string(admin.TabPayments)+"&flash="+url.QueryEscape(res.Message), http.StatusSeeOther)
		return
	}
	h.renderAdmin(w, r, res.HTTPStatus(), admin.TabPayments, "", &res)
}

// GET /uploads/* serves one stored receipt from local storage. Directories
// are never listed.
func (h *Web) ServeReceipt(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" || strings.HasSuffix(key, "/") {
		h.deny(w, r, http.StatusNotFound, "receipt not found")
		return
	}
	f, err := http.Dir(h.cfg.UploadDir).Open(path.Clean("/" + key))
	if err != nil {
		h.deny(w, r, http.StatusNotFound, "receipt not found")
		return
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		h.deny(w, r, http.StatusNotFound, "receipt not found")
		return
	}
	w.Header().Set("Cache-Control", "private, no-store")
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}
