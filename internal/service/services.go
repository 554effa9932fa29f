package service

import (
	"github.com/madhava-poojari/learnsphere/internal/catalog"
	"github.com/madhava-poojari/learnsphere/internal/payment"
	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

// Services bundles everything the HTTP layers call into.
type Services struct {
	Users       *UserService
	Enrollments *EnrollmentService
	Payments    *PaymentService
	Approval    *ApprovalService
	Catalog     *catalog.Service

	// MaxReceiptBytes caps a single receipt upload.
	MaxReceiptBytes int64
}

func New(repo store.Repository, cat *catalog.Service, gateway payment.Gateway, receipts utils.ReceiptStorage, maxReceiptBytes int64) *Services {
	return &Services{
		Users:           NewUserService(repo),
		Enrollments:     NewEnrollmentService(repo),
		Payments:        NewPaymentService(repo, gateway, receipts),
		Approval:        NewApprovalService(repo, receipts),
		Catalog:         cat,
		MaxReceiptBytes: maxReceiptBytes,
	}
}
