package repository

import (
	"context"
	"errors"
	"time"

	"aurelo/internal/models"

	"gorm.io/gorm"
)

// ShiftRepository defines persistence operations for shift records. The swap
// marketplace reads shifts through this boundary but never mutates them
// outside the acceptance transaction.
type ShiftRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Shift, error)
	GetOwned(ctx context.Context, userID, id uint) (*models.Shift, error)
	Create(ctx context.Context, shift *models.Shift) error
	Update(ctx context.Context, shift *models.Shift) error
	SetStatus(ctx context.Context, userID, id uint, status models.ShiftStatus) error
	ListByUser(ctx context.Context, userID uint, from, to *time.Time) ([]models.Shift, error)
}

type shiftRepository struct {
	db *gorm.DB
}

// NewShiftRepository returns a new ShiftRepository implementation.
func NewShiftRepository(db *gorm.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

func (r *shiftRepository) GetByID(ctx context.Context, id uint) (*models.Shift, error) {
	var shift models.Shift
	if err := r.db.WithContext(ctx).
		Preload("Workplace").
		First(&shift, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Shift", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &shift, nil
}

// GetOwned fetches a shift only when it belongs to userID. A shift owned by
// someone else reads as not found rather than forbidden, ownership of shifts
// is not disclosed.
func (r *shiftRepository) GetOwned(ctx context.Context, userID, id uint) (*models.Shift, error) {
	var shift models.Shift
	if err := r.db.WithContext(ctx).
		Preload("Workplace").
		Where("id = ? AND user_id = ?", id, userID).
		First(&shift).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Shift", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &shift, nil
}

func (r *shiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	if err := r.db.WithContext(ctx).Create(shift).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *shiftRepository) Update(ctx context.Context, shift *models.Shift) error {
	if err := r.db.WithContext(ctx).Save(shift).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *shiftRepository) SetStatus(ctx context.Context, userID, id uint, status models.ShiftStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Shift{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", status)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Shift", id)
	}
	return nil
}

func (r *shiftRepository) ListByUser(ctx context.Context, userID uint, from, to *time.Time) ([]models.Shift, error) {
	q := r.db.WithContext(ctx).
		Preload("Workplace").
		Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("start_time >= ?", *from)
	}
	if to != nil {
		q = q.Where("start_time < ?", *to)
	}

	var shifts []models.Shift
	if err := q.Order("start_time ASC").Find(&shifts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return shifts, nil
}
