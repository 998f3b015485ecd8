package repository

import (
	"context"
	"errors"
	"time"

	"aurelo/internal/cache"
	"aurelo/internal/models"
	"aurelo/internal/observability"

	"gorm.io/gorm"
)

// FriendRepository defines persistence operations for friend requests and
// the canonical friendship relation.
type FriendRepository interface {
	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	GetRequestByID(ctx context.Context, id uint) (*models.FriendRequest, error)
	GetRequestByInviteCode(ctx context.Context, code string) (*models.FriendRequest, error)
	GetPendingRequestBetween(ctx context.Context, userA, userB uint) (*models.FriendRequest, error)
	GetReceivedRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	GetSentRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	UpdateRequestStatus(ctx context.Context, requestID uint, from, to models.FriendRequestStatus) error
	AcceptRequest(ctx context.Context, requestID, recipientID uint) (*models.FriendRequest, error)
	GetFriendshipBetween(ctx context.Context, userA, userB uint) (*models.Friendship, error)
	GetFriends(ctx context.Context, userID uint) ([]models.User, error)
	GetFriendIDs(ctx context.Context, userID uint) ([]uint, error)
	RemoveFriendship(ctx context.Context, userA, userB uint) error
}

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository returns a new FriendRepository implementation.
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	if req.ExpiresAt.IsZero() {
		req.ExpiresAt = time.Now().Add(models.DefaultRequestTTL)
	}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if IsUniqueViolation(err) {
			return models.NewDuplicatePendingError()
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) GetRequestByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.WithContext(ctx).
		Preload("FromUser").
		Preload("ToUser").
		First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Friend request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *friendRepository) GetRequestByInviteCode(ctx context.Context, code string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.WithContext(ctx).
		Preload("FromUser").
		Where("invite_code = ?", code).
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

// GetPendingRequestBetween finds a pending request between two users in either
// direction. Returns nil when none exists.
func (r *friendRepository) GetPendingRequestBetween(ctx context.Context, userA, userB uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.FriendRequestStatusPending).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *friendRepository) GetReceivedRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("to_user_id = ? AND status = ?", userID, models.FriendRequestStatusPending).
		Preload("FromUser").
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *friendRepository) GetSentRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND status = ?", userID, models.FriendRequestStatusPending).
		Preload("ToUser").
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

// UpdateRequestStatus flips a request from one status to another. The WHERE
// clause on the current status makes the transition a compare-and-set; zero
// rows affected means the request moved on concurrently.
func (r *friendRepository) UpdateRequestStatus(ctx context.Context, requestID uint, from, to models.FriendRequestStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", requestID, from).
		Update("status", to)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewInvalidStateError("Friend request is no longer " + string(from))
	}
	return nil
}

// AcceptRequest accepts a pending request and creates the friendship row in
// one transaction. recipientID binds the recipient for invite-code requests
// where to_user_id is still null. A friendship that already exists for the
// pair is treated as success, the acceptance is idempotent at the
// relation level.
func (r *friendRepository) AcceptRequest(ctx context.Context, requestID, recipientID uint) (*models.FriendRequest, error) {
	defer observability.TrackQuery("accept_request", "friend_requests")()

	var accepted models.FriendRequest

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", requestID, models.FriendRequestStatusPending).
			Updates(map[string]any{
				"status":     models.FriendRequestStatusAccepted,
				"to_user_id": recipientID,
			})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			var exists int64
			tx.Model(&models.FriendRequest{}).Where("id = ?", requestID).Count(&exists)
			if exists == 0 {
				return models.NewNotFoundError("Friend request", requestID)
			}
			return models.NewInvalidStateError("Friend request is no longer pending")
		}

		if err := tx.Preload("FromUser").First(&accepted, requestID).Error; err != nil {
			return models.NewInternalError(err)
		}

		low, high := models.NormalizePair(accepted.FromUserID, recipientID)
		friendship := models.Friendship{UserLowID: low, UserHighID: high}
		if err := tx.Create(&friendship).Error; err != nil {
			if IsUniqueViolation(err) {
				// Pair already befriended, keep the accepted request
				return nil
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateFriendIDs(ctx, accepted.FromUserID)
	cache.InvalidateFriendIDs(ctx, recipientID)
	return &accepted, nil
}

func (r *friendRepository) GetFriendshipBetween(ctx context.Context, userA, userB uint) (*models.Friendship, error) {
	low, high := models.NormalizePair(userA, userB)
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

func (r *friendRepository) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN friendships f ON (users.id = f.user_low_id OR users.id = f.user_high_id)").
		Where("(f.user_low_id = ? OR f.user_high_id = ?) AND users.id != ?",
			userID, userID, userID).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// GetFriendIDs returns the ids of every accepted friend of userID. The result
// feeds the posting visibility filter, so it is cached briefly.
func (r *friendRepository) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	key := cache.FriendIDsKey(userID)

	err := cache.Aside(ctx, key, &ids, cache.FriendIDsTTL, func() error {
		var friendships []models.Friendship
		if err := r.db.WithContext(ctx).
			Where("user_low_id = ? OR user_high_id = ?", userID, userID).
			Find(&friendships).Error; err != nil {
			return models.NewInternalError(err)
		}
		ids = make([]uint, 0, len(friendships))
		for _, f := range friendships {
			ids = append(ids, f.Other(userID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *friendRepository) RemoveFriendship(ctx context.Context, userA, userB uint) error {
	low, high := models.NormalizePair(userA, userB)
	res := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Delete(&models.Friendship{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Friendship", userB)
	}
	cache.InvalidateFriendIDs(ctx, userA)
	cache.InvalidateFriendIDs(ctx, userB)
	return nil
}
