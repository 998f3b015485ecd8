package repository

import (
	"context"
	"errors"

	"aurelo/internal/cache"
	"aurelo/internal/models"
	"aurelo/internal/observability"

	"gorm.io/gorm"
)

// PostingFilter narrows ListVisible results. Zero values mean no filtering on
// that dimension; Status defaults to open in the service layer.
type PostingFilter struct {
	SwapType   models.SwapType
	Status     models.SwapStatus
	ExcludeOwn bool
	Limit      int
	Offset     int
}

// SwapRepository defines persistence operations for swap postings and
// interests, including the acceptance transaction.
type SwapRepository interface {
	CreatePosting(ctx context.Context, posting *models.SwapPosting) error
	GetPostingByID(ctx context.Context, id uint) (*models.SwapPosting, error)
	ListVisible(ctx context.Context, viewerID uint, ownerIDs []uint, filter PostingFilter) ([]models.SwapPosting, error)
	ListByUser(ctx context.Context, userID uint) ([]models.SwapPosting, error)
	UpdatePostingStatus(ctx context.Context, postingID uint, from, to models.SwapStatus) error
	CreateInterest(ctx context.Context, interest *models.SwapInterest) error
	GetInterestByID(ctx context.Context, id uint) (*models.SwapInterest, error)
	ListInterests(ctx context.Context, swapID uint) ([]models.SwapInterest, error)
	UpdateInterestStatus(ctx context.Context, interestID uint, from, to models.SwapInterestStatus) error
	AcceptInterest(ctx context.Context, postingID, interestID uint) (*models.SwapPosting, *models.SwapInterest, error)
}

type swapRepository struct {
	db *gorm.DB
}

// NewSwapRepository returns a new SwapRepository implementation.
func NewSwapRepository(db *gorm.DB) SwapRepository {
	return &swapRepository{db: db}
}

func (r *swapRepository) CreatePosting(ctx context.Context, posting *models.SwapPosting) error {
	if err := r.db.WithContext(ctx).Create(posting).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *swapRepository) GetPostingByID(ctx context.Context, id uint) (*models.SwapPosting, error) {
	var posting models.SwapPosting
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Shift").
		Preload("Shift.Workplace").
		Preload("DesiredWorkplace").
		First(&posting, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Swap posting", id)
		}
		return nil, models.NewInternalError(err)
	}

	if err := r.db.WithContext(ctx).
		Model(&models.SwapInterest{}).
		Where("swap_id = ?", id).
		Count(&posting.InterestsCount).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &posting, nil
}

// ListVisible returns postings owned by the viewer or by the given owner ids,
// newest first. The friendship filter is the inner WHERE; type, status and
// exclude-own narrow it further.
func (r *swapRepository) ListVisible(ctx context.Context, viewerID uint, ownerIDs []uint, filter PostingFilter) ([]models.SwapPosting, error) {
	visible := make([]uint, 0, len(ownerIDs)+1)
	if !filter.ExcludeOwn {
		visible = append(visible, viewerID)
	}
	visible = append(visible, ownerIDs...)
	if len(visible) == 0 {
		return []models.SwapPosting{}, nil
	}

	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Shift").
		Preload("Shift.Workplace").
		Preload("DesiredWorkplace").
		Where("user_id IN ?", visible)

	if filter.SwapType != "" {
		q = q.Where("swap_type = ?", filter.SwapType)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var postings []models.SwapPosting
	if err := q.Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&postings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return postings, nil
}

func (r *swapRepository) ListByUser(ctx context.Context, userID uint) ([]models.SwapPosting, error) {
	var postings []models.SwapPosting
	if err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Shift.Workplace").
		Preload("DesiredWorkplace").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&postings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return postings, nil
}

// UpdatePostingStatus flips a posting from one status to another with a
// compare-and-set. Zero rows affected on an existing posting means the
// transition lost to a concurrent one.
func (r *swapRepository) UpdatePostingStatus(ctx context.Context, postingID uint, from, to models.SwapStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.SwapPosting{}).
		Where("id = ? AND status = ?", postingID, from).
		Update("status", to)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		var exists int64
		r.db.WithContext(ctx).Model(&models.SwapPosting{}).Where("id = ?", postingID).Count(&exists)
		if exists == 0 {
			return models.NewNotFoundError("Swap posting", postingID)
		}
		return models.NewInvalidStateError("Swap posting is no longer " + string(from))
	}
	cache.InvalidateSwap(ctx, postingID)
	return nil
}

func (r *swapRepository) CreateInterest(ctx context.Context, interest *models.SwapInterest) error {
	if err := r.db.WithContext(ctx).Create(interest).Error; err != nil {
		if IsUniqueViolation(err) {
			return models.NewDuplicateInterestError()
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *swapRepository) GetInterestByID(ctx context.Context, id uint) (*models.SwapInterest, error) {
	var interest models.SwapInterest
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Swap").
		First(&interest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Swap interest", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &interest, nil
}

func (r *swapRepository) ListInterests(ctx context.Context, swapID uint) ([]models.SwapInterest, error) {
	var interests []models.SwapInterest
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("swap_id = ?", swapID).
		Order("created_at ASC").
		Find(&interests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return interests, nil
}

func (r *swapRepository) UpdateInterestStatus(ctx context.Context, interestID uint, from, to models.SwapInterestStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.SwapInterest{}).
		Where("id = ? AND status = ?", interestID, from).
		Update("status", to)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewInvalidStateError("Swap interest is no longer " + string(from))
	}
	return nil
}

// AcceptInterest runs the match as one transaction: the posting flips
// open -> matched with a conditional update, the chosen interest flips
// pending -> accepted, every other pending interest is rejected, and for
// offer postings the underlying shift is cloned to the winner while the
// original is cancelled. Concurrent acceptances serialize on the conditional
// update; the loser sees zero rows and the whole unit rolls back.
func (r *swapRepository) AcceptInterest(ctx context.Context, postingID, interestID uint) (*models.SwapPosting, *models.SwapInterest, error) {
	defer observability.TrackQuery("accept_interest", "swap_postings")()

	var posting models.SwapPosting
	var interest models.SwapInterest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.SwapPosting{}).
			Where("id = ? AND status = ?", postingID, models.SwapStatusOpen).
			Update("status", models.SwapStatusMatched)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			var exists int64
			tx.Model(&models.SwapPosting{}).Where("id = ?", postingID).Count(&exists)
			if exists == 0 {
				return models.NewNotFoundError("Swap posting", postingID)
			}
			observability.SwapMatchConflicts.Inc()
			return models.NewInvalidStateError("Swap posting is no longer open")
		}

		res = tx.Model(&models.SwapInterest{}).
			Where("id = ? AND swap_id = ? AND status = ?",
				interestID, postingID, models.SwapInterestStatusPending).
			Update("status", models.SwapInterestStatusAccepted)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			var exists int64
			tx.Model(&models.SwapInterest{}).
				Where("id = ? AND swap_id = ?", interestID, postingID).
				Count(&exists)
			if exists == 0 {
				return models.NewNotFoundError("Swap interest", interestID)
			}
			return models.NewInvalidStateError("Swap interest is no longer pending")
		}

		if err := tx.Model(&models.SwapInterest{}).
			Where("swap_id = ? AND id != ? AND status = ?",
				postingID, interestID, models.SwapInterestStatusPending).
			Update("status", models.SwapInterestStatusRejected).Error; err != nil {
			return models.NewInternalError(err)
		}

		if err := tx.Preload("Shift").Preload("Shift.Workplace").First(&posting, postingID).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Preload("User").First(&interest, interestID).Error; err != nil {
			return models.NewInternalError(err)
		}

		// Offer postings hand the shift over: the winner gets a copy marked
		// received-via-swap and the original stops being worked.
		if posting.SwapType == models.SwapTypeOffer && posting.Shift != nil {
			clone := models.Shift{
				UserID:          interest.UserID,
				WorkplaceID:     posting.Shift.WorkplaceID,
				StartTime:       posting.Shift.StartTime,
				EndTime:         posting.Shift.EndTime,
				EstimatedValue:  posting.Shift.EstimatedValue,
				Status:          models.ShiftStatusScheduled,
				Notes:           posting.Shift.Notes,
				ReceivedViaSwap: true,
			}
			if err := tx.Create(&clone).Error; err != nil {
				return models.NewInternalError(err)
			}
			if err := tx.Model(&models.Shift{}).
				Where("id = ?", posting.Shift.ID).
				Update("status", models.ShiftStatusCancelled).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	observability.SwapMatchesFormed.WithLabelValues(string(posting.SwapType)).Inc()
	cache.InvalidateSwap(ctx, postingID)
	return &posting, &interest, nil
}
