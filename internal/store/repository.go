package store

import (
	"context"
	"errors"

	"github.com/madhava-poojari/learnsphere/internal/models"
)

var (
	ErrNotFound   = errors.New("store: record not found")
	ErrDuplicate  = errors.New("store: duplicate record")
	ErrStaleState = errors.New("store: record is no longer in the expected state")
)

// StateChange writes an enrollment's new status, progress and meeting link,
// provided the stored row is still in From.
type StateChange struct {
	Enrollment *models.Enrollment
	From       models.EnrollmentStatus
}

// Repository is the data-access boundary the services depend on. Store
// (PostgreSQL via gorm) and MemStore implement it.
type Repository interface {
	// Courses
	ListCourses(ctx context.Context) ([]models.Course, error)
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	CreateCourse(ctx context.Context, c *models.Course) error
	CourseEnrollmentCounts(ctx context.Context) (map[uint]int64, error)

	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListStudents(ctx context.Context) ([]models.User, error)
	StudentEnrollmentCounts(ctx context.Context) (map[string]int64, error)

	// Enrollments
	CreateEnrollment(ctx context.Context, e *models.Enrollment) error
	GetEnrollment(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error)
	ListEnrollmentsByUser(ctx context.Context, userID string) ([]models.Enrollment, error)

	// Payments
	CreatePayment(ctx context.Context, p *models.Payment, change *StateChange) error
	TransitionPayment(ctx context.Context, p *models.Payment, from models.PaymentStatus, change *StateChange) error
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	FindPendingReceiptByDigest(ctx context.Context, digest string) (*models.Payment, error)
	ListPendingReceipts(ctx context.Context) ([]models.Payment, error)
	Revenue(ctx context.Context) (float64, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Repository = (*Store)(nil)
	_ Repository = (*MemStore)(nil)
)
