package store

import (
	"context"

	"github.com/madhava-poojari/learnsphere/internal/models"
)

func (s *Store) ListCourses(ctx context.Context) ([]models.Course, error) {
	var res []models.Course
	if err := s.DB.WithContext(ctx).Order("id asc").Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	var c models.Course
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Store) CreateCourse(ctx context.Context, c *models.Course) error {
	return translate(s.DB.WithContext(ctx).Create(c).Error)
}
