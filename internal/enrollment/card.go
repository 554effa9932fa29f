package enrollment

import (
	"fmt"

	"github.com/madhava-poojari/learnsphere/internal/models"
)

type ActionKind string

const (
	ActionContinue    ActionKind = "continue"
	ActionJoinSession ActionKind = "join_session"
	ActionTakeQuiz    ActionKind = "take_quiz"
	ActionPay         ActionKind = "complete_payment"
)

type Action struct {
	Kind     ActionKind `json:"kind"`
	Label    string     `json:"label"`
	Href     string     `json:"href"`
	External bool       `json:"external,omitempty"`
}

type Notice struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Card is the dashboard view of one enrollment. Exactly one of the three
// branches is populated: Progress/Actions for active, Notice for
// payment_pending, a single pay Action plus Notice for requires_payment.
type Card struct {
	CourseID   uint                    `json:"course_id"`
	Title      string                  `json:"title"`
	Instructor string                  `json:"instructor"`
	Branch     models.EnrollmentStatus `json:"branch"`
	Progress   *int                    `json:"progress,omitempty"`
	Actions    []Action                `json:"actions"`
	Notice     *Notice                 `json:"notice,omitempty"`
}

func (c Card) IsActive() bool          { return c.Branch == models.EnrollmentActive }
func (c Card) IsPaymentPending() bool  { return c.Branch == models.EnrollmentPaymentPending }
func (c Card) IsRequiresPayment() bool { return c.Branch == models.EnrollmentRequiresPayment }

// Render builds the card for course c in state s.
func Render(c models.Course, s State) Card {
	card := Card{
		CourseID:   c.ID,
		Title:      c.Title,
		Instructor: c.Instructor,
		Branch:     s.Status(),
		Actions:    []Action{},
	}
	switch st := s.(type) {
	case Active:
		p := st.Progress
		card.Progress = &p
		card.Actions = []Action{
			{Kind: ActionContinue, Label: "Continue Learning", Href: CoursePath(c.ID)},
			{Kind: ActionJoinSession, Label: "Join Live Session", Href: st.MeetingLink, External: true},
			{Kind: ActionTakeQuiz, Label: "Take Quiz", Href: QuizPath(c.ID)},
		}
	case PaymentPending:
		card.Notice = &Notice{
			Title: "Payment Pending",
			Body:  "Your payment is being verified by an admin.",
		}
	case RequiresPayment:
		card.Notice = &Notice{
			Title: "Action Required",
			Body:  "Complete your payment to access this course.",
		}
		card.Actions = []Action{
			{Kind: ActionPay, Label: "Complete Payment", Href: PayPath(c.ID)},
		}
	default:
		panic(fmt.Sprintf("enrollment: unhandled state %T", s))
	}
	return card
}

// Badge is the catalog call-to-action for a course given the viewer's
// enrollment state, nil meaning not enrolled.
type Badge struct {
	Label    string `json:"label"`
	Href     string `json:"href"`
	Enrolled bool   `json:"enrolled"`
}

func CatalogBadge(courseID uint, s State) Badge {
	switch s.(type) {
	case nil:
		return Badge{Label: "View Details", Href: CoursePath(courseID)}
	case Active:
		return Badge{Label: "Enrolled", Href: "/dashboard", Enrolled: true}
	case PaymentPending:
		return Badge{Label: "Payment Pending", Href: "/dashboard", Enrolled: true}
	case RequiresPayment:
		return Badge{Label: "Complete Payment", Href: PayPath(courseID), Enrolled: true}
	default:
		panic(fmt.Sprintf("enrollment: unhandled state %T", s))
	}
}

func CoursePath(id uint) string { return fmt.Sprintf("/courses/%d", id) }
func QuizPath(id uint) string   { return fmt.Sprintf("/courses/%d/quiz", id) }
func PayPath(id uint) string    { return fmt.Sprintf("/dashboard?pay=%d", id) }
