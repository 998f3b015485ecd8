package repository

import (
	"context"
	"errors"

	"aurelo/internal/models"

	"gorm.io/gorm"
)

// WorkplaceRepository defines persistence operations for workplaces.
type WorkplaceRepository interface {
	GetOwned(ctx context.Context, userID, id uint) (*models.Workplace, error)
	Create(ctx context.Context, wp *models.Workplace) error
	ListByUser(ctx context.Context, userID uint) ([]models.Workplace, error)
}

type workplaceRepository struct {
	db *gorm.DB
}

// NewWorkplaceRepository returns a new WorkplaceRepository implementation.
func NewWorkplaceRepository(db *gorm.DB) WorkplaceRepository {
	return &workplaceRepository{db: db}
}

func (r *workplaceRepository) GetOwned(ctx context.Context, userID, id uint) (*models.Workplace, error) {
	var wp models.Workplace
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&wp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Workplace", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &wp, nil
}

func (r *workplaceRepository) Create(ctx context.Context, wp *models.Workplace) error {
	if err := r.db.WithContext(ctx).Create(wp).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *workplaceRepository) ListByUser(ctx context.Context, userID uint) ([]models.Workplace, error) {
	var wps []models.Workplace
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("institution_name ASC").
		Find(&wps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return wps, nil
}
