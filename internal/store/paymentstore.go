package store

import (
	"context"

	"github.com/madhava-poojari/learnsphere/internal/models"
	"gorm.io/gorm"
)

/* ------------------ Payments ------------------ */

// CreatePayment inserts the payment and applies the enrollment change in one
// transaction.
func (s *Store) CreatePayment(ctx context.Context, p *models.Payment, change *StateChange) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Course", "User").Create(p).Error; err != nil {
			return translate(err)
		}
		return applyStateChange(tx, change)
	})
}

// TransitionPayment persists p's new status and decision fields only when the
// stored row is still in from, then applies the enrollment change.
func (s *Store) TransitionPayment(ctx context.Context, p *models.Payment, from models.PaymentStatus, change *StateChange) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", p.ID, from).
			Updates(map[string]interface{}{
				"status":      p.Status,
				"decided_at":  p.DecidedAt,
				"decided_by":  p.DecidedBy,
				"metadata":    p.Metadata,
				"receipt_key": p.ReceiptKey,
				"updated_at":  gorm.Expr("NOW()"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.Payment{}).Where("id = ?", p.ID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
			return ErrStaleState
		}
		return applyStateChange(tx, change)
	})
}

func (s *Store) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	var p models.Payment
	if err := s.DB.WithContext(ctx).
		Preload("User").
		Preload("Course").
		First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Store) FindPendingReceiptByDigest(ctx context.Context, digest string) (*models.Payment, error) {
	var p models.Payment
	if err := s.DB.WithContext(ctx).
		Where("method = ? AND status = ? AND receipt_digest = ?", models.PaymentMethodManual, models.PaymentStatusPending, digest).
		First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}
