// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"aurelo/internal/cache"
	"aurelo/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByFriendCode(ctx context.Context, code string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	SetFriendCode(ctx context.Context, userID uint, code string) error
	Search(ctx context.Context, viewerID uint, query string, limit int) ([]models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByFriendCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("friend_code = ?", code).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if IsUniqueViolation(err) {
			return models.NewValidationError("Email is already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// SetFriendCode assigns a friend code to a user that has none. The unique index
// on friend_code is the arbiter when two users race for the same code.
func (r *userRepository) SetFriendCode(ctx context.Context, userID uint, code string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND friend_code IS NULL", userID).
		Update("friend_code", code)
	if res.Error != nil {
		if IsUniqueViolation(res.Error) {
			return models.NewValidationError("Friend code already taken")
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewInvalidStateError("User already has a friend code")
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

// Search finds users by name, role or friend code, excluding the viewer and
// anyone already befriended with them.
func (r *userRepository) Search(ctx context.Context, viewerID uint, query string, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	pattern := "%" + strings.ToLower(query) + "%"
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("id != ?", viewerID).
		Where("LOWER(full_name) LIKE ? OR LOWER(role) LIKE ? OR friend_code = ?", pattern, pattern, strings.ToUpper(query)).
		Where("id NOT IN (?)", r.db.
			Table("friendships").
			Select("CASE WHEN user_low_id = ? THEN user_high_id ELSE user_low_id END", viewerID).
			Where("user_low_id = ? OR user_high_id = ?", viewerID, viewerID)).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// IsUniqueViolation reports whether a DB error is a unique constraint
// violation. Postgres reports SQLSTATE 23505 through pgconn; sqlite (used in
// tests) reports a constraint message.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "23505")
}
