package store

import (
	"context"

	"github.com/madhava-poojari/learnsphere/internal/models"
)

// ListPendingReceipts returns manual payments awaiting a decision, newest
// submission first, with student and course loaded.
func (s *Store) ListPendingReceipts(ctx context.Context) ([]models.Payment, error) {
	var res []models.Payment
	if err := s.DB.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Where("method = ? AND status = ?", models.PaymentMethodManual, models.PaymentStatusPending).
		Order("submitted_at desc").
		Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// Revenue sums every settled payment.
func (s *Store) Revenue(ctx context.Context) (float64, error) {
	var total float64
	err := s.DB.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status IN ?", []models.PaymentStatus{models.PaymentStatusApproved, models.PaymentStatusCompleted}).
		Scan(&total).Error
	return total, err
}

// CourseEnrollmentCounts returns active enrollments per course id.
func (s *Store) CourseEnrollmentCounts(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		CourseID uint  `gorm:"column:course_id"`
		N        int64 `gorm:"column:n"`
	}
	if err := s.DB.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("course_id, COUNT(*) AS n").
		Where("status = ?", models.EnrollmentActive).
		Group("course_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.CourseID] = r.N
	}
	return out, nil
}

// StudentEnrollmentCounts returns enrollments of any status per user id.
func (s *Store) StudentEnrollmentCounts(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		UserID string `gorm:"column:user_id"`
		N      int64  `gorm:"column:n"`
	}
	if err := s.DB.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("user_id, COUNT(*) AS n").
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.UserID] = r.N
	}
	return out, nil
}
