package store

import (
	"context"

	"github.com/madhava-poojari/learnsphere/internal/models"
	"gorm.io/gorm"
)

func (s *Store) CreateEnrollment(ctx context.Context, e *models.Enrollment) error {
	return translate(s.DB.WithContext(ctx).Omit("Course", "User").Create(e).Error)
}

func (s *Store) GetEnrollment(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := s.DB.WithContext(ctx).
		Preload("Course").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// ListEnrollmentsByUser returns the user's enrollments in the order they
// were created, each with its course loaded.
func (s *Store) ListEnrollmentsByUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	var res []models.Enrollment
	if err := s.DB.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// applyStateChange writes the enrollment columns guarded on the expected
// status. Zero affected rows means another request moved it first.
func applyStateChange(tx *gorm.DB, change *StateChange) error {
	if change == nil || change.Enrollment == nil {
		return nil
	}
	e := change.Enrollment
	res := tx.Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", e.ID, change.From).
		Updates(map[string]interface{}{
			"status":       e.Status,
			"progress":     e.Progress,
			"meeting_link": e.MeetingLink,
			"updated_at":   gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}
