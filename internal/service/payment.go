package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/madhava-poojari/learnsphere/internal/enrollment"
	"github.com/madhava-poojari/learnsphere/internal/models"
	"github.com/madhava-poojari/learnsphere/internal/payment"
	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

// Checkout outcomes reported by the hosted checkout page.
const (
	OutcomePaid   = "paid"
	OutcomeCancel = "cancel"
)

type PaymentService struct {
	store    store.Repository
	gateway  payment.Gateway
	receipts utils.ReceiptStorage
	now      func() time.Time
}

func NewPaymentService(s store.Repository, g payment.Gateway, receipts utils.ReceiptStorage) *PaymentService {
	return &PaymentService{store: s, gateway: g, receipts: receipts, now: time.Now}
}

// requiresPayment loads the viewer's enrollment and checks it still awaits
// payment. A non-nil Result means the caller should stop.
func (s *PaymentService) requiresPayment(ctx context.Context, userID string, courseID uint) (*models.Enrollment, *payment.Result) {
	e, err := s.store.GetEnrollment(ctx, userID, courseID)
	if errors.Is(err, store.ErrNotFound) {
		r := payment.Missing("you are not enrolled in this course")
		return nil, &r
	}
	if err != nil {
		slog.Error("load enrollment", "user", userID, "course", courseID, "err", err)
		r := payment.Failed("could not load your enrollment, please try again")
		return nil, &r
	}
	st, err := enrollment.StateOf(*e)
	if err != nil {
		slog.Error("decode enrollment", "err", err)
		r := payment.Failed("could not load your enrollment, please try again")
		return nil, &r
	}
	switch st.(type) {
	case enrollment.RequiresPayment:
		return e, nil
	case enrollment.PaymentPending:
		r := payment.Conflicted("a receipt for this course is already awaiting approval")
		return nil, &r
	default:
		r := payment.Conflicted("this course is already paid for")
		return nil, &r
	}
}

// StartCheckout opens a hosted checkout session for a requires_payment
// enrollment and records the pending gateway payment.
func (s *PaymentService) StartCheckout(ctx context.Context, userID string, courseID uint) payment.Result {
	e, stop := s.requiresPayment(ctx, userID, courseID)
	if stop != nil {
		return *stop
	}
	p := &models.Payment{
		ID:           utils.GenerateID(),
		EnrollmentID: e.ID,
		UserID:       userID,
		CourseID:     e.CourseID,
		Method:       models.PaymentMethodGateway,
		Status:       models.PaymentStatusPending,
		Amount:       e.Course.Price,
		SubmittedAt:  s.now(),
	}
	sess, err := s.gateway.CreateSession(ctx, payment.SessionRequest{
		PaymentID:   p.ID,
		UserID:      userID,
		CourseID:    e.CourseID,
		CourseTitle: e.Course.Title,
		Amount:      p.Amount,
	})
	if err != nil {
		slog.Error("create checkout session", "payment", p.ID, "err", err)
		return payment.Failed("the payment provider is unavailable, please try again")
	}
	p.GatewaySession = sess.ID
	p.Metadata = utils.MergeMetadata(nil, map[string]interface{}{"session_expires_at": sess.ExpiresAt.UTC().Format(time.RFC3339)})
	if err := s.store.CreatePayment(ctx, p, nil); err != nil {
		slog.Error("save gateway payment", "payment", p.ID, "err", err)
		return payment.Failed("could not start checkout, please try again")
	}
	slog.Info("checkout started", "payment", p.ID, "user", userID, "course", courseID)
	res := payment.Succeeded(p.ID, "redirecting to checkout")
	res.RedirectURL = sess.RedirectURL
	return res
}

// CheckoutSummary is what the hosted checkout page shows for a token.
type CheckoutSummary struct {
	PaymentID   string
	CourseID    uint
	CourseTitle string
	Amount      float64
	Token       string
}

// DescribeCheckout verifies token without changing anything.
func (s *PaymentService) DescribeCheckout(token string) (*CheckoutSummary, payment.Result) {
	claims, err := s.gateway.VerifySession(token)
	if err != nil {
		return nil, payment.Invalid("this checkout link is invalid or has expired", nil)
	}
	return &CheckoutSummary{
		PaymentID:   claims.PaymentID,
		CourseID:    claims.CourseID,
		CourseTitle: claims.CourseTitle,
		Amount:      claims.Amount,
		Token:       token,
	}, payment.Succeeded(claims.PaymentID, "")
}

// CompleteCheckout settles a gateway payment. "paid" activates the
// enrollment; "cancel" leaves it in requires_payment.
func (s *PaymentService) CompleteCheckout(ctx context.Context, token, outcome string) payment.Result {
	claims, err := s.gateway.VerifySession(token)
	if err != nil {
		return payment.Invalid("this checkout link is invalid or has expired", nil)
	}
	p, err := s.store.GetPayment(ctx, claims.PaymentID)
	if errors.Is(err, store.ErrNotFound) {
		return payment.Missing("payment not found")
	}
	if err != nil {
		slog.Error("load payment", "payment", claims.PaymentID, "err", err)
		return payment.Failed("could not load the payment, please try again")
	}
	if p.Method != models.PaymentMethodGateway || p.GatewaySession != claims.ID || p.UserID != claims.Subject {
		return payment.Invalid("this checkout link does not match the payment", nil)
	}
	if p.Status != models.PaymentStatusPending {
		return payment.Conflicted("this checkout was already completed")
	}

	now := s.now()
	p.DecidedAt = &now
	var change *store.StateChange
	var msg string

	switch outcome {
	case OutcomePaid:
		e, stop := s.requiresPayment(ctx, p.UserID, p.CourseID)
		if stop != nil {
			return *stop
		}
		next, err := enrollment.Transition(enrollment.RequiresPayment{}, enrollment.GatewayPaid, e.Course.MeetingLink)
		if err != nil {
			return payment.Conflicted(err.Error())
		}
		enrollment.Apply(e, next)
		change = &store.StateChange{Enrollment: e, From: models.EnrollmentRequiresPayment}
		p.Status = models.PaymentStatusCompleted
		msg = "payment received, your course is now active"
	case OutcomeCancel:
		p.Status = models.PaymentStatusCancelled
		msg = "checkout cancelled, you have not been charged"
	default:
		return payment.Invalid("unknown checkout outcome", map[string]string{"outcome": "must be paid or cancel"})
	}

	if err := s.store.TransitionPayment(ctx, p, models.PaymentStatusPending, change); err != nil {
		if errors.Is(err, store.ErrStaleState) {
			return payment.Conflicted("this checkout was already completed")
		}
		slog.Error("settle gateway payment", "payment", p.ID, "err", err)
		return payment.Failed("could not record the payment, please try again")
	}
	slog.Info("checkout settled", "payment", p.ID, "outcome", outcome)
	res := payment.Succeeded(p.ID, msg)
	res.RedirectURL = "/dashboard"
	return res
}

// SubmitReceipt stores a bank-transfer receipt and moves the enrollment to
// payment_pending.
func (s *PaymentService) SubmitReceipt(ctx context.Context, up payment.ReceiptUpload) payment.Result {
	if fields := up.Validate(); fields != nil {
		return payment.Invalid("please attach a valid receipt", fields)
	}
	e, stop := s.requiresPayment(ctx, up.UserID, up.CourseID)
	if stop != nil {
		return *stop
	}

	digest := payment.Digest(up.Receipt.Data)
	if _, err := s.store.FindPendingReceiptByDigest(ctx, digest); err == nil {
		return payment.Conflicted("this receipt has already been submitted")
	} else if !errors.Is(err, store.ErrNotFound) {
		slog.Error("lookup receipt digest", "err", err)
		return payment.Failed("could not check the receipt, please try again")
	}

	key, err := s.receipts.SaveFile(ctx, "receipts/"+up.UserID, "receipt"+payment.Extension(up.Receipt.ContentType), bytes.NewReader(up.Receipt.Data))
	if err != nil {
		slog.Error("store receipt", "user", up.UserID, "err", err)
		return payment.Failed("could not upload the receipt, please try again")
	}

	next, err := enrollment.Transition(enrollment.RequiresPayment{}, enrollment.ReceiptSubmitted, "")
	if err != nil {
		return payment.Conflicted(err.Error())
	}
	pending := *e
	enrollment.Apply(&pending, next)

	p := &models.Payment{
		ID:              utils.GenerateID(),
		EnrollmentID:    e.ID,
		UserID:          up.UserID,
		CourseID:        e.CourseID,
		Method:          models.PaymentMethodManual,
		Status:          models.PaymentStatusPending,
		Amount:          e.Course.Price,
		ReceiptKey:      key,
		ReceiptFilename: up.Receipt.Filename,
		ReceiptDigest:   digest,
		Metadata: utils.MergeMetadata(nil, map[string]interface{}{
			"content_type": up.Receipt.ContentType,
			"size":         up.Receipt.Size,
		}),
		SubmittedAt: s.now(),
	}
	change := &store.StateChange{Enrollment: &pending, From: models.EnrollmentRequiresPayment}
	if err := s.store.CreatePayment(ctx, p, change); err != nil {
		if delErr := s.receipts.DeleteFile(ctx, key); delErr != nil {
			slog.Warn("remove orphaned receipt", "key", key, "err", delErr)
		}
		if errors.Is(err, store.ErrStaleState) {
			return payment.Conflicted("this enrollment changed while uploading, please refresh")
		}
		slog.Error("save manual payment", "err", err)
		return payment.Failed("could not record the receipt, please try again")
	}
	slog.Info("receipt submitted", "payment", p.ID, "user", up.UserID, "course", up.CourseID)
	return payment.Succeeded(p.ID, "receipt submitted, an admin will review it shortly")
}
