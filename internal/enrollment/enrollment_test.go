package enrollment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madhava-poojari/learnsphere/internal/models"
)

var prisma = models.Course{ID: 4, Title: "Introduction to Prisma", Instructor: "Sam Wilson", Price: 49.99, MeetingLink: "https://meet.example.com/prisma"}

func TestStateOf(t *testing.T) {
	s, err := StateOf(models.Enrollment{Status: models.EnrollmentActive, Progress: 140, MeetingLink: "x"})
	require.NoError(t, err)
	assert.Equal(t, Active{Progress: 100, MeetingLink: "x"}, s)

	s, err = StateOf(models.Enrollment{Status: models.EnrollmentPaymentPending, Progress: 30})
	require.NoError(t, err)
	assert.Equal(t, PaymentPending{}, s)

	s, err = StateOf(models.Enrollment{Status: models.EnrollmentRequiresPayment})
	require.NoError(t, err)
	assert.Equal(t, RequiresPayment{}, s)

	_, err = StateOf(models.Enrollment{ID: 9, Status: "archived"})
	assert.True(t, errors.Is(err, ErrUnknownStatus))
}

func TestApplyClearsInactiveFields(t *testing.T) {
	e := models.Enrollment{Status: models.EnrollmentActive, Progress: 50, MeetingLink: "x"}
	Apply(&e, RequiresPayment{})
	assert.Equal(t, models.EnrollmentRequiresPayment, e.Status)
	assert.Zero(t, e.Progress)
	assert.Empty(t, e.MeetingLink)

	Apply(&e, NewActive(-3, "y"))
	assert.Equal(t, models.EnrollmentActive, e.Status)
	assert.Equal(t, 0, e.Progress)
	assert.Equal(t, "y", e.MeetingLink)
}

func TestInitial(t *testing.T) {
	assert.Equal(t, RequiresPayment{}, Initial(prisma))
	free := prisma
	free.Price = 0
	assert.Equal(t, NewActive(0, prisma.MeetingLink), Initial(free))
}

func TestTransition(t *testing.T) {
	cases := []struct {
		name string
		from State
		ev   Event
		want State
	}{
		{"gateway success", RequiresPayment{}, GatewayPaid, NewActive(0, "link")},
		{"receipt submitted", RequiresPayment{}, ReceiptSubmitted, PaymentPending{}},
		{"admin approves", PaymentPending{}, Approved, NewActive(0, "link")},
		{"admin rejects", PaymentPending{}, Rejected, RequiresPayment{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Transition(tc.from, tc.ev, "link")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	invalid := []struct {
		from State
		ev   Event
	}{
		{Active{}, Approved},
		{Active{}, ReceiptSubmitted},
		{PaymentPending{}, ReceiptSubmitted},
		{PaymentPending{}, GatewayPaid},
		{RequiresPayment{}, Approved},
		{RequiresPayment{}, Rejected},
	}
	for _, tc := range invalid {
		_, err := Transition(tc.from, tc.ev, "")
		assert.ErrorIs(t, err, ErrInvalidTransition, "%s on %s", tc.ev, tc.from.Status())
	}
}

func TestRenderActive(t *testing.T) {
	card := Render(prisma, NewActive(75, "https://zoom.example.com/j/1"))

	assert.True(t, card.IsActive())
	require.NotNil(t, card.Progress)
	assert.Equal(t, 75, *card.Progress)
	assert.Nil(t, card.Notice)
	require.Len(t, card.Actions, 3)
	assert.Equal(t, ActionContinue, card.Actions[0].Kind)
	assert.Equal(t, "/courses/4", card.Actions[0].Href)
	assert.Equal(t, ActionJoinSession, card.Actions[1].Kind)
	assert.True(t, card.Actions[1].External)
	assert.Equal(t, "https://zoom.example.com/j/1", card.Actions[1].Href)
	assert.Equal(t, ActionTakeQuiz, card.Actions[2].Kind)
	assert.Equal(t, "/courses/4/quiz", card.Actions[2].Href)
}

func TestRenderPaymentPending(t *testing.T) {
	card := Render(prisma, PaymentPending{})

	assert.True(t, card.IsPaymentPending())
	assert.Nil(t, card.Progress)
	assert.Empty(t, card.Actions)
	require.NotNil(t, card.Notice)
	assert.Equal(t, "Payment Pending", card.Notice.Title)
}

func TestRenderRequiresPayment(t *testing.T) {
	card := Render(prisma, RequiresPayment{})

	assert.True(t, card.IsRequiresPayment())
	assert.Nil(t, card.Progress)
	require.Len(t, card.Actions, 1)
	assert.Equal(t, ActionPay, card.Actions[0].Kind)
	assert.Equal(t, "/dashboard?pay=4", card.Actions[0].Href)
}

func TestRenderBranchesAreExclusive(t *testing.T) {
	for _, s := range []State{NewActive(10, "l"), PaymentPending{}, RequiresPayment{}} {
		card := Render(prisma, s)
		n := 0
		for _, on := range []bool{card.IsActive(), card.IsPaymentPending(), card.IsRequiresPayment()} {
			if on {
				n++
			}
		}
		assert.Equal(t, 1, n, "state %s", s.Status())
	}
}

func TestCatalogBadge(t *testing.T) {
	assert.Equal(t, "View Details", CatalogBadge(4, nil).Label)
	assert.False(t, CatalogBadge(4, nil).Enrolled)
	assert.Equal(t, "Enrolled", CatalogBadge(4, NewActive(1, "")).Label)
	assert.Equal(t, "Payment Pending", CatalogBadge(4, PaymentPending{}).Label)
	assert.Equal(t, "/dashboard?pay=4", CatalogBadge(4, RequiresPayment{}).Href)
}
