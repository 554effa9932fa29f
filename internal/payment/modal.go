// Package payment holds the pieces of the course payment flow that do not
// touch storage: the modal state, result types, the checkout gateway and
// receipt validation.
package payment

import (
	"errors"

	"github.com/madhava-poojari/learnsphere/internal/enrollment"
	"github.com/madhava-poojari/learnsphere/internal/models"
)

var ErrModalUnavailable = errors.New("payment: modal only opens for enrollments that require payment")

// Modal is either closed or open for exactly one course.
type Modal struct {
	course *models.Course
}

func Closed() Modal { return Modal{} }

// OpenFor opens the modal for c. Only a RequiresPayment enrollment may open it.
func OpenFor(c models.Course, s enrollment.State) (Modal, error) {
	if _, ok := s.(enrollment.RequiresPayment); !ok {
		return Modal{}, ErrModalUnavailable
	}
	return Modal{course: &c}, nil
}

func (m Modal) IsOpen() bool { return m.course != nil }

// Course returns the course the modal is open for, or nil when closed.
func (m Modal) Course() *models.Course { return m.course }

// Close is the transition taken on cancel, on submit and on gateway redirect.
func (m Modal) Close() Modal { return Closed() }
