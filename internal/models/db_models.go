package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:10" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `gorm:"type:text;not null" json:"role"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Instructor  string    `json:"instructor"`
	Category    string    `gorm:"index" json:"category"`
	Level       Level     `gorm:"type:text;index" json:"level"`
	Price       float64   `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	Description string    `gorm:"type:text" json:"description"`
	MeetingLink string    `json:"meeting_link,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsFree reports whether the course can be joined without payment.
func (c Course) IsFree() bool { return c.Price <= 0 }

// Enrollment pairs one student with one course. Status is persisted as a string;
// use the enrollment package to read it as a typed state.
type Enrollment struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	UserID      string           `gorm:"size:10;not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID    uint             `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"course_id"`
	Status      EnrollmentStatus `gorm:"type:text;not null;index" json:"status"`
	Progress    int              `gorm:"default:0" json:"progress"`
	MeetingLink string           `json:"meeting_link,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	Course Course `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	User   User   `gorm:"foreignKey:UserID;references:ID" json:"-"`
}

type Payment struct {
	ID              string            `gorm:"primaryKey;size:36" json:"id"`
	EnrollmentID    uint              `gorm:"index;not null" json:"enrollment_id"`
	UserID          string            `gorm:"index;size:10;not null" json:"user_id"`
	CourseID        uint              `gorm:"index;not null" json:"course_id"`
	Method          PaymentMethod     `gorm:"type:text;not null" json:"method"`
	Status          PaymentStatus     `gorm:"type:text;not null;index" json:"status"`
	Amount          float64           `gorm:"type:numeric(10,2);not null" json:"amount"`
	ReceiptKey      string            `json:"receipt_key,omitempty"`
	ReceiptFilename string            `json:"receipt_filename,omitempty"`
	ReceiptDigest   string            `gorm:"index;size:64" json:"-"`
	GatewaySession  string            `gorm:"size:64" json:"gateway_session,omitempty"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	SubmittedAt     time.Time         `json:"submitted_at"`
	DecidedAt       *time.Time        `json:"decided_at,omitempty"`
	DecidedBy       string            `gorm:"size:10" json:"decided_by,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`

	Course Course `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
	User   User   `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

// IsPendingReceipt reports whether the payment waits for an admin decision.
func (p Payment) IsPendingReceipt() bool {
	return p.Method == PaymentMethodManual && p.Status == PaymentStatusPending
}
