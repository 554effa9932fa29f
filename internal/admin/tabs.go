// Package admin holds the admin dashboard's tab navigation and view rows.
package admin

import "time"

type Tab string

const (
	TabOverview Tab = "overview"
	TabPayments Tab = "payments"
	TabCourses  Tab = "courses"
	TabStudents Tab = "students"
)

var tabOrder = []Tab{TabOverview, TabPayments, TabCourses, TabStudents}

var tabLabels = map[Tab]string{
	TabOverview: "Overview",
	TabPayments: "Pending Payments",
	TabCourses:  "Courses",
	TabStudents: "Students",
}

// Tabs returns every tab in display order.
func Tabs() []Tab { return append([]Tab(nil), tabOrder...) }

func (t Tab) Label() string { return tabLabels[t] }

func (t Tab) Valid() bool {
	_, ok := tabLabels[t]
	return ok
}

// ParseTab falls back to the overview for empty or unknown values.
func ParseTab(s string) Tab {
	t := Tab(s)
	if !t.Valid() {
		return TabOverview
	}
	return t
}

// Nav is the single-selection tab state.
type Nav struct {
	active Tab
}

func NewNav(t Tab) Nav {
	if !t.Valid() {
		t = TabOverview
	}
	return Nav{active: t}
}

func (n Nav) Active() Tab { return n.active }

// Select replaces the active tab; unknown tabs leave the state unchanged.
func (n Nav) Select(t Tab) Nav {
	if !t.Valid() {
		return n
	}
	return Nav{active: t}
}

func (n Nav) IsActive(t Tab) bool { return n.active == t }

type Stats struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalStudents    int64   `json:"total_students"`
	TotalCourses     int64   `json:"total_courses"`
	PendingApprovals int64   `json:"pending_approvals"`
}

type PendingPaymentRow struct {
	ID          string    `json:"id"`
	Student     string    `json:"student"`
	Course      string    `json:"course"`
	Amount      float64   `json:"amount"`
	SubmittedAt time.Time `json:"submitted_at"`
	ReceiptURL  string    `json:"receipt_url"`
}

type CourseRow struct {
	ID       uint    `json:"id"`
	Title    string  `json:"title"`
	Students int64   `json:"students"`
	Price    float64 `json:"price"`
}

type StudentRow struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Joined  time.Time `json:"joined"`
	Courses int64     `json:"courses"`
}

// Dashboard is the admin page model; only the slice for the active tab is
// populated, plus Stats which also feeds the payments badge.
type Dashboard struct {
	Nav      Nav                 `json:"-"`
	Tab      Tab                 `json:"tab"`
	Tabs     []Tab               `json:"tabs"`
	Stats    Stats               `json:"stats"`
	Pending  []PendingPaymentRow `json:"pending,omitempty"`
	Courses  []CourseRow         `json:"courses,omitempty"`
	Students []StudentRow        `json:"students,omitempty"`
}
