package service

import (
	"context"
	"strings"
	"time"

	"aurelo/internal/models"
	"aurelo/internal/repository"
)

// FriendService provides friend-request, invite and friendship business logic.
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
}

// NewFriendService returns a new FriendService.
func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// SendRequestByProfile sends a friend request to a known profile.
func (s *FriendService) SendRequestByProfile(ctx context.Context, actorID, targetID uint) (*models.FriendRequest, error) {
	if actorID == targetID {
		return nil, models.NewSelfTargetError()
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	return s.createPendingRequest(ctx, actorID, targetID, "")
}

// SendRequestByCode sends a friend request to the profile owning a friend code.
func (s *FriendService) SendRequestByCode(ctx context.Context, actorID uint, code string) (*models.FriendRequest, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, models.NewValidationError("Friend code is required")
	}

	target, err := s.userRepo.GetByFriendCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("Profile with friend code", code)
	}
	if target.ID == actorID {
		return nil, models.NewSelfTargetError()
	}
	return s.createPendingRequest(ctx, actorID, target.ID, "")
}

// SendRequestByEmail creates a placeholder request addressed to an email. The
// recipient is unknown until someone redeems the returned invite code, so no
// existence or duplicate check is possible and the call always succeeds.
func (s *FriendService) SendRequestByEmail(ctx context.Context, actorID uint, email, message string) (*models.FriendRequest, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, models.NewValidationError("A valid email address is required")
	}

	code := randomCode(friendCodeLength)
	req := &models.FriendRequest{
		FromUserID: actorID,
		ToEmail:    email,
		InviteCode: &code,
		Message:    message,
		Status:     models.FriendRequestStatusPending,
	}
	if err := s.friendRepo.CreateRequest(ctx, req); err != nil {
		// Email invites carry no recipient id, so the pending-pair index
		// never applies to them; a unique violation here can only be the
		// random invite code clashing. One redraw is enough at this keyspace.
		if models.CodeOf(err) == models.CodeDuplicatePending {
			retry := randomCode(friendCodeLength)
			req.InviteCode = &retry
			if err := s.friendRepo.CreateRequest(ctx, req); err != nil {
				return nil, err
			}
			return req, nil
		}
		return nil, err
	}
	return req, nil
}

func (s *FriendService) createPendingRequest(ctx context.Context, actorID, targetID uint, message string) (*models.FriendRequest, error) {
	friendship, err := s.friendRepo.GetFriendshipBetween(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if friendship != nil {
		return nil, models.NewAlreadyFriendsError()
	}

	pending, err := s.friendRepo.GetPendingRequestBetween(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, models.NewDuplicatePendingError()
	}

	req := &models.FriendRequest{
		FromUserID: actorID,
		ToUserID:   &targetID,
		Message:    message,
		Status:     models.FriendRequestStatusPending,
	}
	if err := s.friendRepo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// AcceptRequest accepts a pending request addressed to the actor. Requests
// past their expiry are flipped to expired lazily and refused.
func (s *FriendService) AcceptRequest(ctx context.Context, actorID, requestID uint) (*models.FriendRequest, error) {
	req, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ToUserID == nil || *req.ToUserID != actorID {
		return nil, models.NewPermissionDeniedError("You can only accept requests sent to you")
	}
	if req.Status != models.FriendRequestStatusPending {
		return nil, models.NewInvalidStateError("Friend request is no longer pending")
	}
	if req.Expired(time.Now()) {
		s.expireLazily(ctx, req.ID)
		return nil, models.NewInvalidStateError("Friend request has expired")
	}

	return s.friendRepo.AcceptRequest(ctx, requestID, actorID)
}

// RedeemInviteCode accepts the placeholder request carrying the code, binding
// the actor as its recipient.
func (s *FriendService) RedeemInviteCode(ctx context.Context, actorID uint, code string) (*models.FriendRequest, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	req, err := s.friendRepo.GetRequestByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, models.NewNotFoundError("Invite code", code)
	}
	if req.FromUserID == actorID {
		return nil, models.NewSelfTargetError()
	}
	if req.Status != models.FriendRequestStatusPending {
		return nil, models.NewInvalidStateError("Invite code has already been used")
	}
	if req.Expired(time.Now()) {
		s.expireLazily(ctx, req.ID)
		return nil, models.NewInvalidStateError("Invite code has expired")
	}

	// An invite may reach someone the sender already befriended through
	// another channel; AcceptRequest tolerates the existing relation.
	return s.friendRepo.AcceptRequest(ctx, req.ID, actorID)
}

// RejectRequest rejects a request the actor received, or cancels one they sent.
func (s *FriendService) RejectRequest(ctx context.Context, actorID, requestID uint) (*models.FriendRequest, error) {
	req, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	isRecipient := req.ToUserID != nil && *req.ToUserID == actorID
	if !isRecipient && req.FromUserID != actorID {
		return nil, models.NewPermissionDeniedError("You can only reject or cancel your own requests")
	}
	if req.Status != models.FriendRequestStatusPending {
		return nil, models.NewInvalidStateError("Friend request is no longer pending")
	}

	if err := s.friendRepo.UpdateRequestStatus(ctx, requestID,
		models.FriendRequestStatusPending, models.FriendRequestStatusRejected); err != nil {
		return nil, err
	}
	req.Status = models.FriendRequestStatusRejected
	return req, nil
}

// Friends returns the actor's accepted friends.
func (s *FriendService) Friends(ctx context.Context, actorID uint) ([]models.User, error) {
	return s.friendRepo.GetFriends(ctx, actorID)
}

// FriendIDs returns the ids of the actor's accepted friends.
func (s *FriendService) FriendIDs(ctx context.Context, actorID uint) ([]uint, error) {
	return s.friendRepo.GetFriendIDs(ctx, actorID)
}

// ReceivedRequests lists pending requests addressed to the actor, expiring
// stale ones on the way out.
func (s *FriendService) ReceivedRequests(ctx context.Context, actorID uint) ([]models.FriendRequest, error) {
	reqs, err := s.friendRepo.GetReceivedRequests(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.filterExpired(ctx, reqs), nil
}

// SentRequests lists pending requests the actor sent.
func (s *FriendService) SentRequests(ctx context.Context, actorID uint) ([]models.FriendRequest, error) {
	reqs, err := s.friendRepo.GetSentRequests(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.filterExpired(ctx, reqs), nil
}

// RemoveFriend destroys the relation between the actor and a friend. The
// relation is symmetric, so removal by either side removes it for both.
func (s *FriendService) RemoveFriend(ctx context.Context, actorID, friendID uint) error {
	return s.friendRepo.RemoveFriendship(ctx, actorID, friendID)
}

// FriendshipStatus describes where the actor stands with another user:
// "none", "friends", "pending_sent" or "pending_received".
func (s *FriendService) FriendshipStatus(ctx context.Context, actorID, otherID uint) (string, uint, error) {
	if _, err := s.userRepo.GetByID(ctx, otherID); err != nil {
		return "", 0, err
	}

	friendship, err := s.friendRepo.GetFriendshipBetween(ctx, actorID, otherID)
	if err != nil {
		return "", 0, err
	}
	if friendship != nil {
		return "friends", 0, nil
	}

	pending, err := s.friendRepo.GetPendingRequestBetween(ctx, actorID, otherID)
	if err != nil {
		return "", 0, err
	}
	if pending == nil || pending.Expired(time.Now()) {
		return "none", 0, nil
	}
	if pending.FromUserID == actorID {
		return "pending_sent", pending.ID, nil
	}
	return "pending_received", pending.ID, nil
}

func (s *FriendService) filterExpired(ctx context.Context, reqs []models.FriendRequest) []models.FriendRequest {
	now := time.Now()
	live := reqs[:0]
	for _, req := range reqs {
		if req.Expired(now) {
			s.expireLazily(ctx, req.ID)
			continue
		}
		live = append(live, req)
	}
	return live
}

// expireLazily flips a stale request to expired. Losing the race to another
// transition is fine, the request is gone either way.
func (s *FriendService) expireLazily(ctx context.Context, requestID uint) {
	_ = s.friendRepo.UpdateRequestStatus(ctx, requestID,
		models.FriendRequestStatusPending, models.FriendRequestStatusExpired)
}
