package store

import (
	"context"

	"github.com/madhava-poojari/learnsphere/internal/models"
)

/* ------------------ User CRUD ------------------ */

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.DB.WithContext(ctx).Create(u).Error)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ListStudents returns every student account, newest first.
func (s *Store) ListStudents(ctx context.Context) ([]models.User, error) {
	var res []models.User
	if err := s.DB.WithContext(ctx).
		Where("role = ?", models.RoleStudent).
		Order("created_at desc").
		Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}
