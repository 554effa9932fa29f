package enrollment

import "fmt"

type Event string

const (
	GatewayPaid      Event = "gateway_paid"
	ReceiptSubmitted Event = "receipt_submitted"
	Approved         Event = "approved"
	Rejected         Event = "rejected"
)

// Transition returns the state reached from s on ev.
//
//	requires_payment --gateway_paid-->      active
//	requires_payment --receipt_submitted--> payment_pending
//	payment_pending  --approved-->          active
//	payment_pending  --rejected-->          requires_payment
//
// meetingLink is handed to the enrollment when it becomes active.
func Transition(s State, ev Event, meetingLink string) (State, error) {
	switch s.(type) {
	case RequiresPayment:
		switch ev {
		case GatewayPaid:
			return NewActive(0, meetingLink), nil
		case ReceiptSubmitted:
			return PaymentPending{}, nil
		}
	case PaymentPending:
		switch ev {
		case Approved:
			return NewActive(0, meetingLink), nil
		case Rejected:
			return RequiresPayment{}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, s.Status())
}
