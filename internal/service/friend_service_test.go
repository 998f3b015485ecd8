package service

import (
	"context"
	"testing"
	"time"

	"aurelo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestFriendService_SendRequestByProfile(t *testing.T) {
	ctx := context.Background()

	users := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			if id == 99 {
				return nil, models.NewNotFoundError("User", id)
			}
			return &models.User{ID: id}, nil
		},
	}

	t.Run("self target", func(t *testing.T) {
		svc := NewFriendService(&friendRepoStub{}, users)
		_, err := svc.SendRequestByProfile(ctx, 1, 1)
		require.Error(t, err)
		assert.Equal(t, models.CodeSelfTarget, models.CodeOf(err))
	})

	t.Run("unknown target", func(t *testing.T) {
		svc := NewFriendService(&friendRepoStub{}, users)
		_, err := svc.SendRequestByProfile(ctx, 1, 99)
		require.Error(t, err)
		assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
	})

	t.Run("already friends", func(t *testing.T) {
		friends := &friendRepoStub{
			getFriendshipBetweenFn: func(context.Context, uint, uint) (*models.Friendship, error) {
				return &models.Friendship{UserLowID: 1, UserHighID: 2}, nil
			},
		}
		svc := NewFriendService(friends, users)
		_, err := svc.SendRequestByProfile(ctx, 1, 2)
		require.Error(t, err)
		assert.Equal(t, models.CodeAlreadyFriends, models.CodeOf(err))
	})

	t.Run("pending in the other direction blocks", func(t *testing.T) {
		friends := &friendRepoStub{
			getFriendshipBetweenFn: func(context.Context, uint, uint) (*models.Friendship, error) {
				return nil, nil
			},
			getPendingRequestBetweenFn: func(context.Context, uint, uint) (*models.FriendRequest, error) {
				return &models.FriendRequest{ID: 5, FromUserID: 2, ToUserID: uintPtr(1)}, nil
			},
		}
		svc := NewFriendService(friends, users)
		_, err := svc.SendRequestByProfile(ctx, 1, 2)
		require.Error(t, err)
		assert.Equal(t, models.CodeDuplicatePending, models.CodeOf(err))
	})

	t.Run("success creates a pending request", func(t *testing.T) {
		var created *models.FriendRequest
		friends := &friendRepoStub{
			getFriendshipBetweenFn: func(context.Context, uint, uint) (*models.Friendship, error) {
				return nil, nil
			},
			getPendingRequestBetweenFn: func(context.Context, uint, uint) (*models.FriendRequest, error) {
				return nil, nil
			},
			createRequestFn: func(_ context.Context, req *models.FriendRequest) error {
				req.ID = 10
				created = req
				return nil
			},
		}
		svc := NewFriendService(friends, users)
		req, err := svc.SendRequestByProfile(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, uint(10), req.ID)
		require.NotNil(t, created.ToUserID)
		assert.Equal(t, uint(2), *created.ToUserID)
		assert.Equal(t, models.FriendRequestStatusPending, created.Status)
	})
}

func TestFriendService_SendRequestByCode(t *testing.T) {
	ctx := context.Background()

	users := &userRepoStub{
		getByFriendCodeFn: func(_ context.Context, code string) (*models.User, error) {
			switch code {
			case "AB12CD34":
				return &models.User{ID: 2}, nil
			case "SELF0001":
				return &models.User{ID: 1}, nil
			default:
				return nil, nil
			}
		},
	}
	friends := &friendRepoStub{
		getFriendshipBetweenFn: func(context.Context, uint, uint) (*models.Friendship, error) {
			return nil, nil
		},
		getPendingRequestBetweenFn: func(context.Context, uint, uint) (*models.FriendRequest, error) {
			return nil, nil
		},
		createRequestFn: func(_ context.Context, req *models.FriendRequest) error {
			req.ID = 11
			return nil
		},
	}
	svc := NewFriendService(friends, users)

	t.Run("lowercase input is normalized", func(t *testing.T) {
		req, err := svc.SendRequestByCode(ctx, 1, "ab12cd34")
		require.NoError(t, err)
		assert.Equal(t, uint(11), req.ID)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.SendRequestByCode(ctx, 1, "NOPE0000")
		require.Error(t, err)
		assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
	})

	t.Run("own code", func(t *testing.T) {
		_, err := svc.SendRequestByCode(ctx, 1, "SELF0001")
		require.Error(t, err)
		assert.Equal(t, models.CodeSelfTarget, models.CodeOf(err))
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := svc.SendRequestByCode(ctx, 1, "  ")
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	})
}

func TestFriendService_SendRequestByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("issues an invite code", func(t *testing.T) {
		friends := &friendRepoStub{
			createRequestFn: func(_ context.Context, req *models.FriendRequest) error {
				req.ID = 12
				return nil
			},
		}
		svc := NewFriendService(friends, &userRepoStub{})
		req, err := svc.SendRequestByEmail(ctx, 1, "colleague@example.com", "join me")
		require.NoError(t, err)
		require.NotNil(t, req.InviteCode)
		assert.Len(t, *req.InviteCode, friendCodeLength)
		assert.Nil(t, req.ToUserID)
		assert.Equal(t, "colleague@example.com", req.ToEmail)
	})

	t.Run("invalid email", func(t *testing.T) {
		svc := NewFriendService(&friendRepoStub{}, &userRepoStub{})
		_, err := svc.SendRequestByEmail(ctx, 1, "not-an-email", "")
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	})

	t.Run("code collision redraws once", func(t *testing.T) {
		calls := 0
		friends := &friendRepoStub{
			createRequestFn: func(_ context.Context, req *models.FriendRequest) error {
				calls++
				if calls == 1 {
					return models.NewDuplicatePendingError()
				}
				req.ID = 13
				return nil
			},
		}
		svc := NewFriendService(friends, &userRepoStub{})
		req, err := svc.SendRequestByEmail(ctx, 1, "a@b.com", "")
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, uint(13), req.ID)
	})
}

func TestFriendService_AcceptRequest(t *testing.T) {
	ctx := context.Background()

	pending := func() *models.FriendRequest {
		return &models.FriendRequest{
			ID:         7,
			FromUserID: 1,
			ToUserID:   uintPtr(2),
			Status:     models.FriendRequestStatusPending,
			ExpiresAt:  time.Now().Add(time.Hour),
		}
	}

	t.Run("recipient accepts", func(t *testing.T) {
		friends := &friendRepoStub{
			getRequestByIDFn: func(context.Context, uint) (*models.FriendRequest, error) {
				return pending(), nil
			},
			acceptRequestFn: func(_ context.Context, requestID, recipientID uint) (*models.FriendRequest, error) {
				req := pending()
				req.Status = models.FriendRequestStatusAccepted
				return req, nil
			},
		}
		svc := NewFriendService(friends, &userRepoStub{})
		req, err := svc.AcceptRequest(ctx, 2, 7)
		require.NoError(t, err)
		assert.Equal(t, models.FriendRequestStatusAccepted, req.Status)
	})

	t.Run("non-recipient is denied", func(t *testing.T) {
		friends := &friendRepoStub{
			getRequestByIDFn: func(context.Context, uint) (*models.FriendRequest, error) {
				return pending(), nil
			},
		}
		svc := NewFriendService(friends, &userRepoStub{})
		_, err := svc.AcceptRequest(ctx, 3, 7)
		require.Error(t, err)
		assert.Equal(t, models.CodePermissionDenied, models.CodeOf(err))
	})

	t.Run("expired request is refused and flipped", func(t *testing.T) {
		var expired bool
		friends := &friendRepoStub{
			getRequestByIDFn: func(context.Context, uint) (*models.FriendRequest, error) {
				req := pending()
				req.ExpiresAt = time.Now().Add(-time.Hour)
				return req, nil
			},
			updateRequestStatusFn: func(_ context.Context, _ uint, _, to models.FriendRequestStatus) error {
				expired = to == models.FriendRequestStatusExpired
				return nil
			},
		}
		svc := NewFriendService(friends, &userRepoStub{})
		_, err := svc.AcceptRequest(ctx, 2, 7)
		require.Error(t, err)
		assert.Equal(t, models.CodeInvalidState, models.CodeOf(err))
		assert.True(t, expired)
	})
}

func TestFriendService_RedeemInviteCode(t *testing.T) {
	ctx := context.Background()

	invite := func() *models.FriendRequest {
		code := "INVITE01"
		return &models.FriendRequest{
			ID:         8,
			FromUserID: 1,
			InviteCode: &code,
			Status:     models.FriendRequestStatusPending,
			ExpiresAt:  time.Now().Add(time.Hour),
		}
	}

	t.Run("redemption binds and accepts", func(t *testing.T) {
		var boundTo uint
		friends := &friendRepoStub{
			getRequestByInviteCodeFn: func(context.Context, string) (*models.FriendRequest, error) {
				return invite(), nil
			},
			acceptRequestFn: func(_ context.Context, requestID, recipientID uint) (*models.FriendRequest, error) {
				boundTo = recipientID
				req := invite()
				req.Status = models.FriendRequestStatusAccepted
				req.ToUserID = &recipientID
				return req, nil
			},
		}
		svc := NewFriendService(friends, &userRepoStub{})
		req, err := svc.RedeemInviteCode(ctx, 5, "invite01")
		require.NoError(t, err)
		assert.Equal(t, uint(5), boundTo)
		assert.Equal(t, models.FriendRequestStatusAccepted, req.Status)
	})

	t.Run("sender cannot redeem their own invite", func(t *testing.T) {
		friends := &friendRepoStub{
			getRequestByInviteCodeFn: func(context.Context, string) (*models.FriendRequest, error) {
				return invite(), nil
			},
		}
		svc := NewFriendService(friends, &userRepoStub{})
		_, err := svc.RedeemInviteCode(ctx, 1, "INVITE01")
		require.Error(t, err)
		assert.Equal(t, models.CodeSelfTarget, models.CodeOf(err))
	})

	t.Run("used invite is refused", func(t *testing.T) {
		friends := &friendRepoStub{
			getRequestByInviteCodeFn: func(context.Context, string) (*models.FriendRequest, error) {
				req := invite()
				req.Status = models.FriendRequestStatusAccepted
				return req, nil
			},
		}
		svc := NewFriendService(friends, &userRepoStub{})
		_, err := svc.RedeemInviteCode(ctx, 5, "INVITE01")
		require.Error(t, err)
		assert.Equal(t, models.CodeInvalidState, models.CodeOf(err))
	})

	t.Run("unknown code", func(t *testing.T) {
		friends := &friendRepoStub{
			getRequestByInviteCodeFn: func(context.Context, string) (*models.FriendRequest, error) {
				return nil, nil
			},
		}
		svc := NewFriendService(friends, &userRepoStub{})
		_, err := svc.RedeemInviteCode(ctx, 5, "MISSING1")
		require.Error(t, err)
		assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
	})
}

func TestFriendService_RejectRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("sender may cancel", func(t *testing.T) {
		friends := &friendRepoStub{
			getRequestByIDFn: func(context.Context, uint) (*models.FriendRequest, error) {
				return &models.FriendRequest{ID: 9, FromUserID: 1, ToUserID: uintPtr(2), Status: models.FriendRequestStatusPending}, nil
			},
			updateRequestStatusFn: func(context.Context, uint, models.FriendRequestStatus, models.FriendRequestStatus) error {
				return nil
			},
		}
		svc := NewFriendService(friends, &userRepoStub{})
		req, err := svc.RejectRequest(ctx, 1, 9)
		require.NoError(t, err)
		assert.Equal(t, models.FriendRequestStatusRejected, req.Status)
	})

	t.Run("third party is denied", func(t *testing.T) {
		friends := &friendRepoStub{
			getRequestByIDFn: func(context.Context, uint) (*models.FriendRequest, error) {
				return &models.FriendRequest{ID: 9, FromUserID: 1, ToUserID: uintPtr(2), Status: models.FriendRequestStatusPending}, nil
			},
		}
		svc := NewFriendService(friends, &userRepoStub{})
		_, err := svc.RejectRequest(ctx, 3, 9)
		require.Error(t, err)
		assert.Equal(t, models.CodePermissionDenied, models.CodeOf(err))
	})
}

func TestFriendService_FriendshipStatus(t *testing.T) {
	ctx := context.Background()

	users := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
	}

	t.Run("friends", func(t *testing.T) {
		friends := &friendRepoStub{
			getFriendshipBetweenFn: func(context.Context, uint, uint) (*models.Friendship, error) {
				return &models.Friendship{UserLowID: 1, UserHighID: 2}, nil
			},
		}
		svc := NewFriendService(friends, users)
		status, _, err := svc.FriendshipStatus(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, "friends", status)
	})

	t.Run("pending directions", func(t *testing.T) {
		friends := &friendRepoStub{
			getFriendshipBetweenFn: func(context.Context, uint, uint) (*models.Friendship, error) {
				return nil, nil
			},
			getPendingRequestBetweenFn: func(context.Context, uint, uint) (*models.FriendRequest, error) {
				return &models.FriendRequest{ID: 4, FromUserID: 1, ToUserID: uintPtr(2), Status: models.FriendRequestStatusPending, ExpiresAt: time.Now().Add(time.Hour)}, nil
			},
		}
		svc := NewFriendService(friends, users)

		status, requestID, err := svc.FriendshipStatus(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, "pending_sent", status)
		assert.Equal(t, uint(4), requestID)

		status, _, err = svc.FriendshipStatus(ctx, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, "pending_received", status)
	})

	t.Run("none", func(t *testing.T) {
		friends := &friendRepoStub{
			getFriendshipBetweenFn: func(context.Context, uint, uint) (*models.Friendship, error) {
				return nil, nil
			},
			getPendingRequestBetweenFn: func(context.Context, uint, uint) (*models.FriendRequest, error) {
				return nil, nil
			},
		}
		svc := NewFriendService(friends, users)
		status, _, err := svc.FriendshipStatus(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, "none", status)
	})
}
