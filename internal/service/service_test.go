package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/madhava-poojari/learnsphere/internal/admin"
	"github.com/madhava-poojari/learnsphere/internal/enrollment"
	"github.com/madhava-poojari/learnsphere/internal/models"
	"github.com/madhava-poojari/learnsphere/internal/payment"
	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

const (
	alex    = "USR00ALEX1"
	adminID = "USR00ADMIN"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type brokenStorage struct{}

func (brokenStorage) SaveFile(context.Context, string, string, io.Reader) (string, error) {
	return "", errors.New("bucket unavailable")
}
func (brokenStorage) DeleteFile(context.Context, string) error      { return nil }
func (brokenStorage) URL(context.Context, string) (string, error) { return "", nil }

type brokenGateway struct{ payment.Gateway }

func (brokenGateway) CreateSession(context.Context, payment.SessionRequest) (*payment.Session, error) {
	return nil, errors.New("gateway timeout")
}

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	repo     *store.MemStore
	files    *utils.FileStorage
	gateway  *payment.SignedGateway
	users    *UserService
	enrolls  *EnrollmentService
	payments *PaymentService
	approval *ApprovalService
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = store.NewMemStore()
	sd, err := store.LoadSeed("")
	s.Require().NoError(err)
	s.Require().NoError(sd.Apply(s.ctx, s.repo))

	s.files = utils.NewFileStorage(s.T().TempDir(), "http://localhost:8080/uploads")
	s.gateway = payment.NewSignedGateway("test-secret", "http://localhost:8080", time.Minute)
	s.users = NewUserService(s.repo)
	s.enrolls = NewEnrollmentService(s.repo)
	s.payments = NewPaymentService(s.repo, s.gateway, s.files)
	s.approval = NewApprovalService(s.repo, s.files)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) state(userID string, courseID uint) enrollment.State {
	_, st, err := s.enrolls.State(s.ctx, userID, courseID)
	s.Require().NoError(err)
	return st
}

func (s *ServiceSuite) upload(userID string, courseID uint, data []byte) payment.ReceiptUpload {
	rc, err := payment.ReadReceipt(bytes.NewReader(data), "transfer.png", payment.DefaultMaxReceiptBytes)
	s.Require().NoError(err)
	return payment.ReceiptUpload{UserID: userID, CourseID: courseID, Receipt: rc}
}

/* ------------------ Enrollment ------------------ */

func (s *ServiceSuite) TestEnrollPaidCourseRequiresPayment() {
	e, err := s.enrolls.Enroll(s.ctx, alex, 5)
	s.Require().NoError(err)
	s.Equal(models.EnrollmentRequiresPayment, e.Status)
	s.Equal("React State Management", e.Course.Title)

	_, err = s.enrolls.Enroll(s.ctx, alex, 5)
	s.ErrorIs(err, ErrAlreadyEnrolled)

	_, err = s.enrolls.Enroll(s.ctx, alex, 999)
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *ServiceSuite) TestEnrollFreeCourseIsActive() {
	e, err := s.enrolls.Enroll(s.ctx, alex, 8)
	s.Require().NoError(err)
	s.Equal(models.EnrollmentActive, e.Status)

	_, err = s.enrolls.RequireActive(s.ctx, alex, 8)
	s.NoError(err)
}

func (s *ServiceSuite) TestRequireActive() {
	c, err := s.enrolls.RequireActive(s.ctx, alex, 1)
	s.Require().NoError(err)
	s.Equal(uint(1), c.ID)

	_, err = s.enrolls.RequireActive(s.ctx, alex, 3)
	s.ErrorIs(err, ErrNotActive)

	_, err = s.enrolls.RequireActive(s.ctx, alex, 6)
	s.ErrorIs(err, ErrNotEnrolled)
}

func (s *ServiceSuite) TestDashboardCardsAndModal() {
	view, err := s.enrolls.Dashboard(s.ctx, alex, 0)
	s.Require().NoError(err)
	s.Len(view.Cards, 5)
	s.Equal(3, view.ActiveCount)
	s.False(view.Modal.IsOpen())

	view, err = s.enrolls.Dashboard(s.ctx, alex, 4)
	s.Require().NoError(err)
	s.True(view.Modal.IsOpen())
	s.Equal("Introduction to Prisma", view.Modal.Course().Title)

	// payment_pending cannot open the modal
	view, err = s.enrolls.Dashboard(s.ctx, alex, 3)
	s.Require().NoError(err)
	s.False(view.Modal.IsOpen())
}

func (s *ServiceSuite) TestStatesDriveCatalogBadges() {
	states, err := s.enrolls.States(s.ctx, alex)
	s.Require().NoError(err)
	s.Equal("Enrolled", enrollment.CatalogBadge(1, states[1]).Label)
	s.Equal("Payment Pending", enrollment.CatalogBadge(3, states[3]).Label)
	s.Equal("Complete Payment", enrollment.CatalogBadge(4, states[4]).Label)
	s.Equal("View Details", enrollment.CatalogBadge(6, states[6]).Label)
}

/* ------------------ Gateway checkout ------------------ */

func (s *ServiceSuite) tokenFrom(res payment.Result) string {
	u, err := url.Parse(res.RedirectURL)
	s.Require().NoError(err)
	return u.Query().Get("token")
}

func (s *ServiceSuite) TestCheckoutPaidActivatesEnrollment() {
	res := s.payments.StartCheckout(s.ctx, alex, 4)
	s.Require().True(res.OK(), res.Message)
	token := s.tokenFrom(res)

	sum, r := s.payments.DescribeCheckout(token)
	s.Require().True(r.OK())
	s.Equal("Introduction to Prisma", sum.CourseTitle)
	s.InDelta(49.99, sum.Amount, 0.001)

	done := s.payments.CompleteCheckout(s.ctx, token, OutcomePaid)
	s.Require().True(done.OK(), done.Message)
	s.Equal("/dashboard", done.RedirectURL)

	st := s.state(alex, 4)
	s.Require().IsType(enrollment.Active{}, st)
	s.Equal("https://meet.google.com/prs-mnt-int", st.(enrollment.Active).MeetingLink)

	again := s.payments.CompleteCheckout(s.ctx, token, OutcomePaid)
	s.Equal(payment.Conflict, again.Kind)

	p, err := s.repo.GetPayment(s.ctx, res.PaymentID)
	s.Require().NoError(err)
	s.Equal(models.PaymentStatusCompleted, p.Status)
}

func (s *ServiceSuite) TestCheckoutCancelKeepsRequiresPayment() {
	res := s.payments.StartCheckout(s.ctx, alex, 4)
	s.Require().True(res.OK())

	done := s.payments.CompleteCheckout(s.ctx, s.tokenFrom(res), OutcomeCancel)
	s.Require().True(done.OK())
	s.IsType(enrollment.RequiresPayment{}, s.state(alex, 4))

	p, err := s.repo.GetPayment(s.ctx, res.PaymentID)
	s.Require().NoError(err)
	s.Equal(models.PaymentStatusCancelled, p.Status)
}

func (s *ServiceSuite) TestCheckoutRejectsBadInput() {
	s.Equal(payment.Conflict, s.payments.StartCheckout(s.ctx, alex, 1).Kind)
	s.Equal(payment.Conflict, s.payments.StartCheckout(s.ctx, alex, 3).Kind)
	s.Equal(payment.NotFound, s.payments.StartCheckout(s.ctx, alex, 6).Kind)

	s.Equal(payment.ValidationError, s.payments.CompleteCheckout(s.ctx, "garbage", OutcomePaid).Kind)

	res := s.payments.StartCheckout(s.ctx, alex, 4)
	s.Require().True(res.OK())
	s.Equal(payment.ValidationError, s.payments.CompleteCheckout(s.ctx, s.tokenFrom(res), "maybe").Kind)
}

func (s *ServiceSuite) TestCheckoutGatewayFailureIsNetworkError() {
	svc := NewPaymentService(s.repo, brokenGateway{s.gateway}, s.files)
	res := svc.StartCheckout(s.ctx, alex, 4)
	s.Equal(payment.NetworkError, res.Kind)
	s.IsType(enrollment.RequiresPayment{}, s.state(alex, 4))
}

/* ------------------ Manual receipts ------------------ */

func (s *ServiceSuite) TestSubmitReceiptMovesToPaymentPending() {
	res := s.payments.SubmitReceipt(s.ctx, s.upload(alex, 4, pngBytes))
	s.Require().True(res.OK(), res.Message)
	s.IsType(enrollment.PaymentPending{}, s.state(alex, 4))

	p, err := s.repo.GetPayment(s.ctx, res.PaymentID)
	s.Require().NoError(err)
	s.True(p.IsPendingReceipt())
	s.Equal("transfer.png", p.ReceiptFilename)
	_, err = os.Stat(filepath.Join(s.files.BaseDir, filepath.FromSlash(p.ReceiptKey)))
	s.NoError(err)

	pending, err := s.approval.Pending(s.ctx)
	s.Require().NoError(err)
	s.Len(pending, 5)
}

func (s *ServiceSuite) TestSubmitReceiptRequiresFile() {
	res := s.payments.SubmitReceipt(s.ctx, payment.ReceiptUpload{UserID: alex, CourseID: 4})
	s.Equal(payment.ValidationError, res.Kind)
	s.Contains(res.Fields, payment.ReceiptField)
	s.IsType(enrollment.RequiresPayment{}, s.state(alex, 4))

	res = s.payments.SubmitReceipt(s.ctx, s.upload(alex, 4, []byte("plain text is not a receipt")))
	s.Equal(payment.ValidationError, res.Kind)
}

func (s *ServiceSuite) TestSubmitReceiptDuplicateDigestConflicts() {
	_, err := s.enrolls.Enroll(s.ctx, alex, 5)
	s.Require().NoError(err)

	s.Require().True(s.payments.SubmitReceipt(s.ctx, s.upload(alex, 4, pngBytes)).OK())
	res := s.payments.SubmitReceipt(s.ctx, s.upload(alex, 5, pngBytes))
	s.Equal(payment.Conflict, res.Kind)
	s.IsType(enrollment.RequiresPayment{}, s.state(alex, 5))
}

func (s *ServiceSuite) TestSubmitReceiptStorageFailure() {
	svc := NewPaymentService(s.repo, s.gateway, brokenStorage{})
	res := svc.SubmitReceipt(s.ctx, s.upload(alex, 4, pngBytes))
	s.Equal(payment.NetworkError, res.Kind)
	s.IsType(enrollment.RequiresPayment{}, s.state(alex, 4))
}

/* ------------------ Approval queue ------------------ */

func (s *ServiceSuite) pendingFor(userID string) admin.PendingPaymentRow {
	rows, err := s.approval.Pending(s.ctx)
	s.Require().NoError(err)
	for _, r := range rows {
		p, err := s.repo.GetPayment(s.ctx, r.ID)
		s.Require().NoError(err)
		if p.UserID == userID {
			return r
		}
	}
	s.FailNow("no pending payment", userID)
	return admin.PendingPaymentRow{}
}

func (s *ServiceSuite) TestPendingRows() {
	rows, err := s.approval.Pending(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rows, 4)
	s.Equal("Charlie Brown", rows[0].Student)
	s.Equal("Advanced Tailwind CSS", rows[0].Course)
	s.Equal("Linus van Pelt", rows[2].Student)
}

func (s *ServiceSuite) TestApproveActivatesAndRemovesRow() {
	row := s.pendingFor(alex)
	res := s.approval.Approve(s.ctx, row.ID, adminID)
	s.Require().True(res.OK(), res.Message)

	st := s.state(alex, 3)
	s.Require().IsType(enrollment.Active{}, st)
	s.Equal("https://zoom.us/j/3333333333", st.(enrollment.Active).MeetingLink)

	rows, err := s.approval.Pending(s.ctx)
	s.Require().NoError(err)
	s.Len(rows, 3)
	for _, r := range rows {
		s.NotEqual(row.ID, r.ID)
	}

	p, err := s.repo.GetPayment(s.ctx, row.ID)
	s.Require().NoError(err)
	s.Equal(adminID, p.DecidedBy)
	s.Equal("approved", p.Metadata["decision"])

	s.Equal(payment.Conflict, s.approval.Approve(s.ctx, row.ID, adminID).Kind)
	s.Equal(payment.Conflict, s.approval.Reject(s.ctx, row.ID, adminID).Kind)
}

func (s *ServiceSuite) TestRejectReturnsToRequiresPaymentAndDeletesReceipt() {
	res := s.payments.SubmitReceipt(s.ctx, s.upload(alex, 4, pngBytes))
	s.Require().True(res.OK())
	p, err := s.repo.GetPayment(s.ctx, res.PaymentID)
	s.Require().NoError(err)
	path := filepath.Join(s.files.BaseDir, filepath.FromSlash(p.ReceiptKey))

	out := s.approval.Reject(s.ctx, res.PaymentID, adminID)
	s.Require().True(out.OK(), out.Message)
	s.IsType(enrollment.RequiresPayment{}, s.state(alex, 4))

	_, err = os.Stat(path)
	s.True(os.IsNotExist(err))

	// the student may try again with a new receipt
	s.True(s.payments.SubmitReceipt(s.ctx, s.upload(alex, 4, pngBytes)).OK())
}

func (s *ServiceSuite) TestDecideUnknownPayment() {
	s.Equal(payment.NotFound, s.approval.Approve(s.ctx, "missing", adminID).Kind)
}

func (s *ServiceSuite) TestConcurrentApproveHasOneWinner() {
	row := s.pendingFor("USR00LUCYV")
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.approval.Approve(s.ctx, row.ID, adminID).OK() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, wins)
}

func (s *ServiceSuite) TestDashboardTabs() {
	d, err := s.approval.Dashboard(s.ctx, admin.ParseTab(""))
	s.Require().NoError(err)
	s.Equal(admin.TabOverview, d.Tab)
	s.Equal(int64(8), d.Stats.TotalCourses)
	s.Equal(int64(6), d.Stats.TotalStudents)
	s.Equal(int64(4), d.Stats.PendingApprovals)
	s.Nil(d.Pending)
	s.Nil(d.Courses)
	s.Nil(d.Students)

	d, err = s.approval.Dashboard(s.ctx, admin.TabPayments)
	s.Require().NoError(err)
	s.Len(d.Pending, 4)
	s.Nil(d.Courses)

	d, err = s.approval.Dashboard(s.ctx, admin.TabCourses)
	s.Require().NoError(err)
	s.Len(d.Courses, 8)
	s.Equal(int64(3), d.Courses[0].Students)
	s.Nil(d.Pending)

	d, err = s.approval.Dashboard(s.ctx, admin.TabStudents)
	s.Require().NoError(err)
	s.Len(d.Students, 6)
	s.Nil(d.Courses)
}

/* ------------------ Users ------------------ */

func (s *ServiceSuite) TestCreateStudent() {
	u, err := s.users.CreateStudent(s.ctx, "  Peppermint@Example.com ", "Peppermint", "Patty")
	s.Require().NoError(err)
	s.Equal("peppermint@example.com", u.Email)
	s.Equal(models.RoleStudent, u.Role)
	s.Len(u.ID, 10)

	got, err := s.users.Get(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("Peppermint Patty", got.FullName())

	_, err = s.users.CreateStudent(s.ctx, "peppermint@example.com", "Again", "")
	s.ErrorIs(err, store.ErrDuplicate)

	_, err = s.users.CreateStudent(s.ctx, "", "x", "")
	s.Error(err)
}
