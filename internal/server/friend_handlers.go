package server

import (
	"time"

	"aurelo/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendFriendRequest handles POST /api/friends/requests. The target can be
// addressed three ways; exactly one of target_user_id, friend_code or email
// must be set.
//
//	@Summary		Send a friend request
//	@Tags			friends
//	@Accept			json
//	@Produce		json
//	@Param			request	body	object	true	"target_user_id, friend_code or email"
//	@Success		201	{object}	models.FriendRequest
//	@Router			/friends/requests [post]
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		TargetUserID uint   `json:"target_user_id"`
		FriendCode   string `json:"friend_code"`
		Email        string `json:"email"`
		Message      string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var (
		request *models.FriendRequest
		err     error
	)
	switch {
	case req.TargetUserID != 0:
		request, err = s.friendService.SendRequestByProfile(ctx, userID, req.TargetUserID)
	case req.FriendCode != "":
		request, err = s.friendService.SendRequestByCode(ctx, userID, req.FriendCode)
	case req.Email != "":
		request, err = s.friendService.SendRequestByEmail(ctx, userID, req.Email, req.Message)
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("One of target_user_id, friend_code or email is required"))
	}
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	// Email invites have no recipient account yet; nothing to notify.
	if request.ToUserID != nil {
		sender, lookupErr := s.userRepo.GetByID(ctx, userID)
		if lookupErr == nil {
			s.notifyUser(ctx, *request.ToUserID, models.NotificationFriendRequest,
				"New friend request",
				sender.FullName+" wants to add you as a friend",
				"/friends/requests",
				EventFriendRequestReceived, map[string]interface{}{
					"request_id": request.ID,
					"from_user":  userSummaryPtr(sender),
					"timestamp":  time.Now().Format(time.RFC3339Nano),
				})
		}
		s.publishUserEvent(userID, EventFriendRequestSent, map[string]interface{}{
			"request_id": request.ID,
			"to_user_id": *request.ToUserID,
			"timestamp":  time.Now().Format(time.RFC3339Nano),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

// GetReceivedRequests handles GET /api/friends/requests
func (s *Server) GetReceivedRequests(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	requests, err := s.friendService.ReceivedRequests(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(requests)
}

// GetSentRequests handles GET /api/friends/requests/sent
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	requests, err := s.friendService.SentRequests(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(requests)
}

// AcceptFriendRequest handles POST /api/friends/requests/:requestId/accept
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	request, err := s.friendService.AcceptRequest(ctx, userID, requestID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	accepter, lookupErr := s.userRepo.GetByID(ctx, userID)
	if lookupErr == nil {
		s.notifyUser(ctx, request.FromUserID, models.NotificationFriendAdded,
			"Friend request accepted",
			accepter.FullName+" accepted your friend request",
			"/friends",
			EventFriendRequestAccepted, map[string]interface{}{
				"request_id": request.ID,
				"friend":     userSummaryPtr(accepter),
				"timestamp":  time.Now().Format(time.RFC3339Nano),
			})
	}
	s.publishUserEvent(userID, EventFriendAdded, map[string]interface{}{
		"request_id": request.ID,
		"friend":     userSummaryPtr(&request.FromUser),
		"timestamp":  time.Now().Format(time.RFC3339Nano),
	})

	return c.JSON(request)
}

// RejectFriendRequest handles POST /api/friends/requests/:requestId/reject.
// The recipient rejects; the sender cancels. Both run through here.
func (s *Server) RejectFriendRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	request, err := s.friendService.RejectRequest(ctx, userID, requestID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	if request.FromUserID == userID {
		if request.ToUserID != nil {
			s.publishUserEvent(*request.ToUserID, EventFriendRequestCancelled, map[string]interface{}{
				"request_id": request.ID,
				"timestamp":  time.Now().Format(time.RFC3339Nano),
			})
		}
	} else {
		s.publishUserEvent(request.FromUserID, EventFriendRequestRejected, map[string]interface{}{
			"request_id": request.ID,
			"timestamp":  time.Now().Format(time.RFC3339Nano),
		})
	}

	return c.JSON(request)
}

// RedeemInviteCode handles POST /api/friends/redeem
//
//	@Summary		Redeem an emailed invite code
//	@Tags			friends
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	models.FriendRequest
//	@Router			/friends/redeem [post]
func (s *Server) RedeemInviteCode(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invite code is required"))
	}

	request, err := s.friendService.RedeemInviteCode(ctx, userID, req.Code)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	redeemer, lookupErr := s.userRepo.GetByID(ctx, userID)
	if lookupErr == nil {
		s.notifyUser(ctx, request.FromUserID, models.NotificationFriendAdded,
			"Invite accepted",
			redeemer.FullName+" accepted your invite",
			"/friends",
			EventFriendRequestAccepted, map[string]interface{}{
				"request_id": request.ID,
				"friend":     userSummaryPtr(redeemer),
				"timestamp":  time.Now().Format(time.RFC3339Nano),
			})
	}
	s.publishUserEvent(userID, EventFriendAdded, map[string]interface{}{
		"request_id": request.ID,
		"friend":     userSummaryPtr(&request.FromUser),
		"timestamp":  time.Now().Format(time.RFC3339Nano),
	})

	return c.JSON(request)
}

// GetFriends handles GET /api/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	friends, err := s.friendService.Friends(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	online := make([]uint, 0)
	if s.hub != nil {
		for _, friend := range friends {
			if s.hub.IsOnline(friend.ID) {
				online = append(online, friend.ID)
			}
		}
	}

	return c.JSON(fiber.Map{
		"friends":         friends,
		"online_user_ids": online,
	})
}

// GetFriendshipStatus handles GET /api/friends/status/:userId
func (s *Server) GetFriendshipStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	otherID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	status, requestID, err := s.friendService.FriendshipStatus(c.Context(), userID, otherID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	resp := fiber.Map{"status": status}
	if requestID != 0 {
		resp["request_id"] = requestID
	}
	return c.JSON(resp)
}

// RemoveFriend handles DELETE /api/friends/:userId
func (s *Server) RemoveFriend(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	friendID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.friendService.RemoveFriend(ctx, userID, friendID); err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	s.publishUserEvent(friendID, EventFriendRemoved, map[string]interface{}{
		"user_id":   userID,
		"timestamp": time.Now().Format(time.RFC3339Nano),
	})

	return c.JSON(fiber.Map{"message": "Friend removed"})
}
