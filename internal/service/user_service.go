// Package service contains the business logic between HTTP handlers and the
// repository layer.
package service

import (
	"context"
	"crypto/rand"
	"strconv"
	"strings"
	"time"

	"aurelo/internal/models"
	"aurelo/internal/repository"
)

const (
	friendCodeLength   = 8
	friendCodeAttempts = 10
	friendCodeCharset  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// UserService provides profile business logic.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	UserID    uint
	FullName  string
	Role      string
	AvatarURL string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxNameLen = 120
	const maxRoleLen = 80

	if in.FullName != "" {
		if len(in.FullName) > maxNameLen {
			return nil, models.NewValidationError("Name too long (max 120 characters)")
		}
		user.FullName = in.FullName
	}
	if in.Role != "" {
		if len(in.Role) > maxRoleLen {
			return nil, models.NewValidationError("Role too long (max 80 characters)")
		}
		user.Role = in.Role
	}
	if in.AvatarURL != "" {
		user.AvatarURL = in.AvatarURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// EnsureFriendCode returns the user's friend code, generating one lazily on
// first use. Generation draws random codes and retries on collision a bounded
// number of times, then falls back to a timestamp-derived code so the call
// always terminates.
func (s *UserService) EnsureFriendCode(ctx context.Context, userID uint) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.FriendCode != nil && *user.FriendCode != "" {
		return *user.FriendCode, nil
	}

	for attempt := 0; attempt < friendCodeAttempts; attempt++ {
		code := randomCode(friendCodeLength)

		existing, err := s.userRepo.GetByFriendCode(ctx, code)
		if err != nil {
			return "", err
		}
		if existing != nil {
			continue
		}

		err = s.userRepo.SetFriendCode(ctx, userID, code)
		if err == nil {
			return code, nil
		}
		if models.CodeOf(err) == models.CodeValidation {
			// Lost the race for this code, draw another
			continue
		}
		if models.CodeOf(err) == models.CodeInvalidState {
			// Another request assigned a code in the meantime
			return s.reloadFriendCode(ctx, userID)
		}
		return "", err
	}

	code := fallbackCode(time.Now())
	if err := s.userRepo.SetFriendCode(ctx, userID, code); err != nil {
		if models.CodeOf(err) == models.CodeInvalidState {
			return s.reloadFriendCode(ctx, userID)
		}
		return "", err
	}
	return code, nil
}

func (s *UserService) reloadFriendCode(ctx context.Context, userID uint) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.FriendCode == nil {
		return "", models.NewInternalError(nil)
	}
	return *user.FriendCode, nil
}

// Search finds profiles matching a name, role or exact friend code, excluding
// the viewer and their existing friends.
func (s *UserService) Search(ctx context.Context, viewerID uint, query string) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, models.NewValidationError("Search query must be at least 2 characters")
	}
	return s.userRepo.Search(ctx, viewerID, query, 20)
}

func randomCode(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure degrades to the timestamp fallback
		return fallbackCode(time.Now())
	}
	for i, b := range buf {
		buf[i] = friendCodeCharset[int(b)%len(friendCodeCharset)]
	}
	return string(buf)
}

// fallbackCode derives a code from the clock. Uniqueness comes from nanosecond
// resolution; the leading letter keeps it visually distinct from random codes.
func fallbackCode(now time.Time) string {
	base := strings.ToUpper(strconv.FormatInt(now.UnixNano(), 36))
	if len(base) > friendCodeLength-1 {
		base = base[len(base)-(friendCodeLength-1):]
	}
	return "A" + base
}
