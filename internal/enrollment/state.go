// Package enrollment models the payment/access status of a student's course
// enrollment as a closed set of states and the transitions between them.
package enrollment

import (
	"errors"
	"fmt"

	"github.com/madhava-poojari/learnsphere/internal/models"
)

var (
	ErrUnknownStatus     = errors.New("enrollment: unknown status")
	ErrInvalidTransition = errors.New("enrollment: invalid transition")
)

// State is one of Active, PaymentPending or RequiresPayment. The interface is
// sealed so a type switch over those three variants is exhaustive.
type State interface {
	Status() models.EnrollmentStatus
	sealed()
}

// Active grants access to course content.
type Active struct {
	Progress    int
	MeetingLink string
}

// PaymentPending means a receipt was submitted and waits for an admin.
type PaymentPending struct{}

// RequiresPayment means the student picked the course but has not paid.
type RequiresPayment struct{}

func (Active) Status() models.EnrollmentStatus          { return models.EnrollmentActive }
func (PaymentPending) Status() models.EnrollmentStatus  { return models.EnrollmentPaymentPending }
func (RequiresPayment) Status() models.EnrollmentStatus { return models.EnrollmentRequiresPayment }

func (Active) sealed()          {}
func (PaymentPending) sealed()  {}
func (RequiresPayment) sealed() {}

// NewActive clamps progress into 0..100.
func NewActive(progress int, meetingLink string) Active {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return Active{Progress: progress, MeetingLink: meetingLink}
}

// StateOf decodes the persisted status of e.
func StateOf(e models.Enrollment) (State, error) {
	switch e.Status {
	case models.EnrollmentActive:
		return NewActive(e.Progress, e.MeetingLink), nil
	case models.EnrollmentPaymentPending:
		return PaymentPending{}, nil
	case models.EnrollmentRequiresPayment:
		return RequiresPayment{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (enrollment %d)", ErrUnknownStatus, e.Status, e.ID)
	}
}

// Apply writes s back onto e. Progress and meeting link are cleared for
// every state except Active.
func Apply(e *models.Enrollment, s State) {
	e.Status = s.Status()
	switch st := s.(type) {
	case Active:
		e.Progress = st.Progress
		e.MeetingLink = st.MeetingLink
	default:
		e.Progress = 0
		e.MeetingLink = ""
	}
}

// Initial is the state of a fresh enrollment in course c.
func Initial(c models.Course) State {
	if c.IsFree() {
		return NewActive(0, c.MeetingLink)
	}
	return RequiresPayment{}
}
