package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"laundry-api/internal/domain"
)

type ServiceRepo struct{ db *gorm.DB }

func NewServiceRepo(db *gorm.DB) *ServiceRepo { return &ServiceRepo{db: db} }

func (r *ServiceRepo) Create(ctx context.Context, s *domain.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ServiceRepo) FindByID(ctx context.Context, id uint) (*domain.Service, error) {
	var s domain.Service
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRepo) ListActive(ctx context.Context) ([]domain.Service, error) {
	out := []domain.Service{}
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Save writes every column of s; concurrent writers to the same row are
// last-write-wins.
func (r *ServiceRepo) Save(ctx context.Context, s *domain.Service) error {
	return r.db.WithContext(ctx).Save(s).Error
}
