package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/madhava-poojari/learnsphere/internal/admin"
	"github.com/madhava-poojari/learnsphere/internal/enrollment"
	"github.com/madhava-poojari/learnsphere/internal/models"
	"github.com/madhava-poojari/learnsphere/internal/payment"
	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

// ApprovalService backs the admin dashboard: the pending receipt queue,
// approve/reject decisions and the overview figures.
type ApprovalService struct {
	store    store.Repository
	receipts utils.ReceiptStorage
	now      func() time.Time
}

func NewApprovalService(s store.Repository, receipts utils.ReceiptStorage) *ApprovalService {
	return &ApprovalService{store: s, receipts: receipts, now: time.Now}
}

// Pending lists receipts waiting for a decision, newest first.
func (s *ApprovalService) Pending(ctx context.Context) ([]admin.PendingPaymentRow, error) {
	rows, err := s.store.ListPendingReceipts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]admin.PendingPaymentRow, 0, len(rows))
	for _, p := range rows {
		url, err := s.receipts.URL(ctx, p.ReceiptKey)
		if err != nil {
			slog.Warn("receipt link", "payment", p.ID, "err", err)
		}
		out = append(out, admin.PendingPaymentRow{
			ID:          p.ID,
			Student:     p.User.FullName(),
			Course:      p.Course.Title,
			Amount:      p.Amount,
			SubmittedAt: p.SubmittedAt,
			ReceiptURL:  url,
		})
	}
	return out, nil
}

func (s *ApprovalService) Approve(ctx context.Context, paymentID, adminID string) payment.Result {
	return s.decide(ctx, paymentID, adminID, enrollment.Approved)
}

// Reject returns the enrollment to requires_payment and drops the stored
// receipt. Failing to delete the file does not undo the decision.
func (s *ApprovalService) Reject(ctx context.Context, paymentID, adminID string) payment.Result {
	return s.decide(ctx, paymentID, adminID, enrollment.Rejected)
}

func (s *ApprovalService) decide(ctx context.Context, paymentID, adminID string, ev enrollment.Event) payment.Result {
	p, err := s.store.GetPayment(ctx, paymentID)
	if errors.Is(err, store.ErrNotFound) {
		return payment.Missing("payment not found")
	}
	if err != nil {
		slog.Error("load payment", "payment", paymentID, "err", err)
		return payment.Failed("could not load the payment, please try again")
	}
	if !p.IsPendingReceipt() {
		return payment.Conflicted("this payment has already been decided")
	}

	e, err := s.store.GetEnrollment(ctx, p.UserID, p.CourseID)
	if err != nil {
		slog.Error("load enrollment for payment", "payment", p.ID, "err", err)
		return payment.Failed("could not load the enrollment, please try again")
	}
	st, err := enrollment.StateOf(*e)
	if err != nil {
		slog.Error("decode enrollment", "err", err)
		return payment.Failed("could not load the enrollment, please try again")
	}
	next, err := enrollment.Transition(st, ev, e.Course.MeetingLink)
	if err != nil {
		return payment.Conflicted("the enrollment is no longer awaiting approval")
	}
	enrollment.Apply(e, next)

	now := s.now()
	p.DecidedAt = &now
	p.DecidedBy = adminID
	receiptKey := p.ReceiptKey
	switch ev {
	case enrollment.Approved:
		p.Status = models.PaymentStatusApproved
	case enrollment.Rejected:
		p.Status = models.PaymentStatusRejected
		p.ReceiptKey = ""
	}
	p.Metadata = utils.MergeMetadata(p.Metadata, map[string]interface{}{"decision": string(ev)})

	change := &store.StateChange{Enrollment: e, From: st.Status()}
	if err := s.store.TransitionPayment(ctx, p, models.PaymentStatusPending, change); err != nil {
		if errors.Is(err, store.ErrStaleState) {
			return payment.Conflicted("this payment has already been decided")
		}
		if errors.Is(err, store.ErrNotFound) {
			return payment.Missing("payment not found")
		}
		slog.Error("record decision", "payment", p.ID, "err", err)
		return payment.Failed("could not record the decision, please try again")
	}

	if ev == enrollment.Rejected && receiptKey != "" {
		if err := s.receipts.DeleteFile(ctx, receiptKey); err != nil {
			slog.Warn("delete rejected receipt", "payment", p.ID, "key", receiptKey, "err", err)
		}
	}
	slog.Info("payment decided", "payment", p.ID, "decision", ev, "admin", adminID)
	if ev == enrollment.Approved {
		return payment.Succeeded(p.ID, "payment approved, the student now has access")
	}
	return payment.Succeeded(p.ID, "payment rejected, the student can submit a new receipt")
}

func (s *ApprovalService) Stats(ctx context.Context) (admin.Stats, error) {
	var st admin.Stats
	rev, err := s.store.Revenue(ctx)
	if err != nil {
		return st, err
	}
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return st, err
	}
	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		return st, err
	}
	pending, err := s.store.ListPendingReceipts(ctx)
	if err != nil {
		return st, err
	}
	st.TotalRevenue = rev
	st.TotalStudents = int64(len(students))
	st.TotalCourses = int64(len(courses))
	st.PendingApprovals = int64(len(pending))
	return st, nil
}

// Dashboard builds the admin page for tab. Only the active tab's rows are
// loaded.
func (s *ApprovalService) Dashboard(ctx context.Context, tab admin.Tab) (*admin.Dashboard, error) {
	nav := admin.NewNav(tab)
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	d := &admin.Dashboard{Nav: nav, Tab: nav.Active(), Tabs: admin.Tabs(), Stats: stats}

	switch nav.Active() {
	case admin.TabPayments:
		if d.Pending, err = s.Pending(ctx); err != nil {
			return nil, err
		}
	case admin.TabCourses:
		if d.Courses, err = s.courseRows(ctx); err != nil {
			return nil, err
		}
	case admin.TabStudents:
		if d.Students, err = s.studentRows(ctx); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (s *ApprovalService) courseRows(ctx context.Context) ([]admin.CourseRow, error) {
	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CourseEnrollmentCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]admin.CourseRow, 0, len(courses))
	for _, c := range courses {
		out = append(out, admin.CourseRow{ID: c.ID, Title: c.Title, Students: counts[c.ID], Price: c.Price})
	}
	return out, nil
}

func (s *ApprovalService) studentRows(ctx context.Context) ([]admin.StudentRow, error) {
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.StudentEnrollmentCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]admin.StudentRow, 0, len(students))
	for _, u := range students {
		out = append(out, admin.StudentRow{ID: u.ID, Name: u.FullName(), Email: u.Email, Joined: u.CreatedAt, Courses: counts[u.ID]})
	}
	return out, nil
}
