package v1

import (
	"errors"
	"net/http"

	"github.com/madhava-poojari/learnsphere/internal/auth"
	"github.com/madhava-poojari/learnsphere/internal/payment"
	"github.com/madhava-poojari/learnsphere/internal/service"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

type PaymentHandler struct {
	svc *service.Services
}

func NewPaymentHandler(svc *service.Services) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// POST /me/enrollments/{courseID}/checkout
func (h *PaymentHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	courseID, err := uintParam(r, "courseID")
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid course id", nil, err.Error())
		return
	}
	current := auth.GetUserFromCtx(r.Context())
	writeResult(w, h.svc.Payments.StartCheckout(r.Context(), current.ID, courseID))
}

// POST /me/enrollments/{courseID}/receipt (multipart, field "receipt")
func (h *PaymentHandler) SubmitReceipt(w http.ResponseWriter, r *http.Request) {
	courseID, err := uintParam(r, "courseID")
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid course id", nil, err.Error())
		return
	}
	rc, err := payment.ReceiptFromForm(w, r, h.svc.MaxReceiptBytes)
	if errors.Is(err, payment.ErrReceiptTooLarge) {
		writeResult(w, payment.Invalid("receipt is too large", map[string]string{payment.ReceiptField: "file exceeds the size limit"}))
		return
	}
	if err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid form", nil, err.Error())
		return
	}
	current := auth.GetUserFromCtx(r.Context())
	writeResult(w, h.svc.Payments.SubmitReceipt(r.Context(), payment.ReceiptUpload{
		UserID:   current.ID,
		CourseID: courseID,
		Receipt:  rc,
	}))
}

// POST /payments/checkout/complete {token, outcome}
func (h *PaymentHandler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token   string `json:"token" validate:"required"`
		Outcome string `json:"outcome" validate:"required,oneof=paid cancel"`
	}
	if err := utils.ParseJSON(r, &payload); err != nil {
		utils.WriteJSONResponse(w, http.StatusBadRequest, false, "invalid request", nil, err.Error())
		return
	}
	if fields := validateStruct(payload); fields != nil {
		writeResult(w, payment.Invalid("invalid request", fields))
		return
	}
	writeResult(w, h.svc.Payments.CompleteCheckout(r.Context(), payload.Token, payload.Outcome))
}
