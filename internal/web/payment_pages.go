package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/madhava-poojari/learnsphere/internal/auth"
	"github.com/madhava-poojari/learnsphere/internal/payment"
)

// GET /dashboard?pay={courseID}
func (h *Web) Dashboard(w http.ResponseWriter, r *http.Request) {
	var payID uint
	if v := r.URL.Query().Get("pay"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err == nil {
			payID = uint(n)
		}
	}
	h.renderDashboard(w, r, http.StatusOK, payID, r.URL.Query().Get("flash"), nil)
}

// renderDashboard draws the enrollment cards. A failed result is shown as an
// error, inside the modal when the modal is open for payID.
func (h *Web) renderDashboard(w http.ResponseWriter, r *http.Request, status int, payID uint, flash string, res *payment.Result) {
	ctx := r.Context()
	current := auth.GetUserFromCtx(ctx)
	view, err := h.svc.Enrollments.Dashboard(ctx, current.ID, payID)
	if err != nil {
		internalError(w, err)
		return
	}
	h.renderTemplate(w, r, status, "dashboard.html", map[string]any{
		"Title":       "My Dashboard",
		"Cards":       view.Cards,
		"ActiveCount": view.ActiveCount,
		"Modal":       view.Modal,
		"Flash":       flash,
		"Result":      res,
		"Bank": map[string]string{
			"AccountName":   h.cfg.BankAccountName,
			"AccountNumber": h.cfg.BankAccountNumber,
			"BankName":      h.cfg.BankName,
		},
		"MaxReceiptMB": float64(h.svc.MaxReceiptBytes) / (1 << 20),
		"ReceiptField": payment.ReceiptField,
		"ReceiptTypes": payment.AllowedReceiptTypes,
	})
}

// POST /dashboard/courses/{id}/checkout hands the student to the gateway.
func (h *Web) StartCheckout(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.deny(w, r, http.StatusNotFound, "course not found")
		return
	}
	res := h.svc.Payments.StartCheckout(r.Context(), auth.GetUserFromCtx(r.Context()).ID, id)
	if res.OK() {
		http.Redirect(w, r, res.RedirectURL, http.StatusSeeOther)
		return
	}
	h.renderDashboard(w, r, res.HTTPStatus(), id, "", &res)
}

// POST /dashboard/courses/{id}/receipt (multipart, field "receipt")
func (h *Web) SubmitReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.deny(w, r, http.StatusNotFound, "course not found")
		return
	}
	rc, err := payment.ReceiptFromForm(w, r, h.svc.MaxReceiptBytes)
	if errors.Is(err, payment.ErrReceiptTooLarge) {
		res := payment.Invalid("receipt is too large", map[string]string{payment.ReceiptField: "file exceeds the size limit"})
		h.renderDashboard(w, r, http.StatusUnprocessableEntity, id, "", &res)
		return
	}
	if err != nil {
		res := payment.Invalid("could not read the upload", nil)
		h.renderDashboard(w, r, http.StatusBadRequest, id, "", &res)
		return
	}
	res := h.svc.Payments.SubmitReceipt(r.Context(), payment.ReceiptUpload{
		UserID:   auth.GetUserFromCtx(r.Context()).ID,
		CourseID: id,
		Receipt:  rc,
	})
	switch {
	case res.OK():
		http.Redirect(w, r, "/dashboard?flash="+url.QueryEscape(res.Message), http.StatusSeeOther)
	case res.Kind == payment.ValidationError:
		h.renderDashboard(w, r, http.StatusUnprocessableEntity, id, "", &res)
	default:
		h.renderDashboard(w, r, res.HTTPStatus(), id, "", &res)
	}
}

// GET /payments/checkout?token= is the mock hosted payment page.
func (h *Web) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	summary, res := h.svc.Payments.DescribeCheckout(r.URL.Query().Get("token"))
	if !res.OK() {
		h.deny(w, r, http.StatusBadRequest, res.Message)
		return
	}
	h.renderTemplate(w, r, http.StatusOK, "checkout.html", map[string]any{
		"Title":    "Checkout",
		"Checkout": summary,
	})
}

// POST /payments/checkout {token, outcome}
func (h *Web) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	res := h.svc.Payments.CompleteCheckout(r.Context(), r.FormValue("token"), r.FormValue("outcome"))
	if !res.OK() {
		h.deny(w, r, res.HTTPStatus(), res.Message)
		return
	}
	target := res.RedirectURL
	if target == "" {
		target = "/dashboard"
	}
	http.Redirect(w, r, target+"?flash="+url.QueryEscape(res.Message), http.StatusSeeOther)
}
