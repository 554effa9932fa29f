package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/madhava-poojari/learnsphere/internal/enrollment"
	"github.com/madhava-poojari/learnsphere/internal/models"
	"github.com/madhava-poojari/learnsphere/internal/payment"
	"github.com/madhava-poojari/learnsphere/internal/store"
)

var (
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrNotEnrolled     = errors.New("not enrolled in this course")
	ErrNotActive       = errors.New("enrollment is not active")
)

type EnrollmentService struct {
	store store.Repository
}

func NewEnrollmentService(s store.Repository) *EnrollmentService {
	return &EnrollmentService{store: s}
}

// Enroll creates the viewer's enrollment: active for free courses,
// requires_payment otherwise.
func (s *EnrollmentService) Enroll(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	e := &models.Enrollment{UserID: userID, CourseID: course.ID}
	enrollment.Apply(e, enrollment.Initial(*course))
	if err := s.store.CreateEnrollment(ctx, e); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("create enrollment: %w", err)
	}
	e.Course = *course
	slog.Info("enrollment created", "user", userID, "course", courseID, "status", e.Status)
	return e, nil
}

// State returns the viewer's enrollment and its decoded state for one course.
// Both are nil when the viewer never enrolled.
func (s *EnrollmentService) State(ctx context.Context, userID string, courseID uint) (*models.Enrollment, enrollment.State, error) {
	e, err := s.store.GetEnrollment(ctx, userID, courseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	st, err := enrollment.StateOf(*e)
	if err != nil {
		return nil, nil, err
	}
	return e, st, nil
}

// RequireActive returns the course when the viewer may open its content.
func (s *EnrollmentService) RequireActive(ctx context.Context, userID string, courseID uint) (*models.Course, error) {
	e, st, err := s.State(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotEnrolled
	}
	if _, ok := st.(enrollment.Active); !ok {
		return nil, ErrNotActive
	}
	return &e.Course, nil
}

// States maps course id to the viewer's enrollment state. Rows with an
// unknown status are logged and left out.
func (s *EnrollmentService) States(ctx context.Context, userID string) (map[uint]enrollment.State, error) {
	rows, err := s.store.ListEnrollmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]enrollment.State, len(rows))
	for _, e := range rows {
		st, err := enrollment.StateOf(e)
		if err != nil {
			slog.Warn("skipping enrollment", "err", err)
			continue
		}
		out[e.CourseID] = st
	}
	return out, nil
}

type DashboardView struct {
	Cards       []enrollment.Card
	ActiveCount int
	Modal       payment.Modal
}

// Dashboard renders a card per enrollment. A non-zero payCourseID opens the
// payment modal for that course when its enrollment still requires payment.
func (s *EnrollmentService) Dashboard(ctx context.Context, userID string, payCourseID uint) (*DashboardView, error) {
	rows, err := s.store.ListEnrollmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &DashboardView{Cards: make([]enrollment.Card, 0, len(rows)), Modal: payment.Closed()}
	for _, e := range rows {
		st, err := enrollment.StateOf(e)
		if err != nil {
			slog.Warn("skipping enrollment", "err", err)
			continue
		}
		card := enrollment.Render(e.Course, st)
		if card.IsActive() {
			view.ActiveCount++
		}
		view.Cards = append(view.Cards, card)

		if payCourseID != 0 && e.CourseID == payCourseID {
			m, err := payment.OpenFor(e.Course, st)
			if err != nil {
				slog.Debug("payment modal not opened", "course", e.CourseID, "err", err)
			}
			view.Modal = m
		}
	}
	return view, nil
}
