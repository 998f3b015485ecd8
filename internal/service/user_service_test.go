package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"aurelo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	users := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, FullName: "Dana Reyes", Role: "nurse"}, nil
		},
		updateFn: func(context.Context, *models.User) error { return nil },
	}
	svc := NewUserService(users)

	t.Run("updates supplied fields only", func(t *testing.T) {
		user, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Role: "charge nurse"})
		require.NoError(t, err)
		assert.Equal(t, "Dana Reyes", user.FullName)
		assert.Equal(t, "charge nurse", user.Role)
	})

	t.Run("rejects oversized name", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, FullName: strings.Repeat("x", 121)})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	})
}

func TestUserService_EnsureFriendCode(t *testing.T) {
	ctx := context.Background()

	t.Run("existing code is returned untouched", func(t *testing.T) {
		setCalls := 0
		users := &userRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id, FriendCode: strPtr("AB12CD34")}, nil
			},
			setFriendCodeFn: func(context.Context, uint, string) error {
				setCalls++
				return nil
			},
		}
		svc := NewUserService(users)

		code, err := svc.EnsureFriendCode(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "AB12CD34", code)
		assert.Zero(t, setCalls)
	})

	t.Run("generates an 8 character uppercase code", func(t *testing.T) {
		users := &userRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id}, nil
			},
			getByFriendCodeFn: func(context.Context, string) (*models.User, error) {
				return nil, nil
			},
			setFriendCodeFn: func(context.Context, uint, string) error { return nil },
		}
		svc := NewUserService(users)

		code, err := svc.EnsureFriendCode(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, code, 8)
		assert.Equal(t, strings.ToUpper(code), code)
		for _, r := range code {
			assert.Contains(t, friendCodeCharset, string(r))
		}
	})

	t.Run("collisions draw another code", func(t *testing.T) {
		lookups := 0
		users := &userRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id}, nil
			},
			getByFriendCodeFn: func(context.Context, string) (*models.User, error) {
				lookups++
				if lookups < 3 {
					return &models.User{ID: 99}, nil
				}
				return nil, nil
			},
			setFriendCodeFn: func(context.Context, uint, string) error { return nil },
		}
		svc := NewUserService(users)

		_, err := svc.EnsureFriendCode(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, lookups)
	})

	t.Run("write race on the code retries", func(t *testing.T) {
		setCalls := 0
		users := &userRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id}, nil
			},
			getByFriendCodeFn: func(context.Context, string) (*models.User, error) {
				return nil, nil
			},
			setFriendCodeFn: func(context.Context, uint, string) error {
				setCalls++
				if setCalls == 1 {
					return models.NewValidationError("Friend code is already taken")
				}
				return nil
			},
		}
		svc := NewUserService(users)

		_, err := svc.EnsureFriendCode(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, setCalls)
	})

	t.Run("concurrent assignment returns the winner's code", func(t *testing.T) {
		reloaded := false
		users := &userRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				if reloaded {
					return &models.User{ID: id, FriendCode: strPtr("ZZ99YY88")}, nil
				}
				return &models.User{ID: id}, nil
			},
			getByFriendCodeFn: func(context.Context, string) (*models.User, error) {
				return nil, nil
			},
			setFriendCodeFn: func(context.Context, uint, string) error {
				reloaded = true
				return models.NewInvalidStateError("Friend code already assigned")
			},
		}
		svc := NewUserService(users)

		code, err := svc.EnsureFriendCode(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "ZZ99YY88", code)
	})

	t.Run("exhausted draws fall back to a timestamp code", func(t *testing.T) {
		var assigned string
		users := &userRepoStub{
			getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
				return &models.User{ID: id}, nil
			},
			getByFriendCodeFn: func(context.Context, string) (*models.User, error) {
				// Every random draw collides
				return &models.User{ID: 99}, nil
			},
			setFriendCodeFn: func(_ context.Context, _ uint, code string) error {
				assigned = code
				return nil
			},
		}
		svc := NewUserService(users)

		code, err := svc.EnsureFriendCode(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, assigned, code)
		assert.Len(t, code, 8)
		assert.True(t, strings.HasPrefix(code, "A"))
	})
}

func TestFallbackCode(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 123456789, time.UTC)
	code := fallbackCode(now)
	assert.Len(t, code, friendCodeLength)
	assert.True(t, strings.HasPrefix(code, "A"))
	assert.Equal(t, strings.ToUpper(code), code)
}

func TestUserService_Search(t *testing.T) {
	ctx := context.Background()

	var gotQuery string
	users := &userRepoStub{
		searchFn: func(_ context.Context, _ uint, query string, limit int) ([]models.User, error) {
			gotQuery = query
			assert.Equal(t, 20, limit)
			return []models.User{{ID: 2}}, nil
		},
	}
	svc := NewUserService(users)

	t.Run("too short", func(t *testing.T) {
		_, err := svc.Search(ctx, 1, " a ")
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	})

	t.Run("trims and forwards", func(t *testing.T) {
		results, err := svc.Search(ctx, 1, "  dana  ")
		require.NoError(t, err)
		assert.Len(t, results, 1)
		assert.Equal(t, "dana", gotQuery)
	})
}
