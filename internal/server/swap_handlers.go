package server

import (
	"time"

	"aurelo/internal/models"
	"aurelo/internal/repository"
	"aurelo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateSwapPosting handles POST /api/swaps
//
//	@Summary		Open a swap posting
//	@Tags			swaps
//	@Accept			json
//	@Produce		json
//	@Success		201	{object}	models.SwapPosting
//	@Router			/swaps [post]
func (s *Server) CreateSwapPosting(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req struct {
		SwapType           string  `json:"swap_type"`
		ShiftID            *uint   `json:"shift_id"`
		DesiredDate        *string `json:"desired_date"`
		DesiredWorkplaceID *uint   `json:"desired_workplace_id"`
		Description        string  `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	in := service.CreatePostingInput{
		SwapType:           models.SwapType(req.SwapType),
		ShiftID:            req.ShiftID,
		DesiredWorkplaceID: req.DesiredWorkplaceID,
		Description:        req.Description,
	}
	if req.DesiredDate != nil {
		desired, err := time.Parse(time.RFC3339, *req.DesiredDate)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("desired_date must be RFC3339"))
		}
		in.DesiredDate = &desired
	}

	posting, err := s.swapService.CreatePosting(ctx, userID, in)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	s.publishUserEvent(userID, EventSwapPostingCreated, map[string]interface{}{
		"posting_id": posting.ID,
		"swap_type":  string(posting.SwapType),
		"timestamp":  time.Now().Format(time.RFC3339Nano),
	})

	return c.Status(fiber.StatusCreated).JSON(posting)
}

// GetSwapPostings handles GET /api/swaps. Only postings from the caller's
// friends (plus their own, unless exclude_own) are visible.
func (s *Server) GetSwapPostings(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	pagination := parsePagination(c, 50)
	filter := repository.PostingFilter{
		SwapType:   models.SwapType(c.Query("swap_type")),
		Status:     models.SwapStatus(c.Query("status")),
		ExcludeOwn: c.QueryBool("exclude_own", false),
		Limit:      pagination.Limit,
		Offset:     pagination.Offset,
	}

	postings, err := s.swapService.ListVisiblePostings(c.Context(), userID, filter)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(postings)
}

// GetMySwapPostings handles GET /api/swaps/mine
func (s *Server) GetMySwapPostings(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postings, err := s.swapService.MyPostings(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(postings)
}

// GetSwapPosting handles GET /api/swaps/:id
func (s *Server) GetSwapPosting(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postingID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	posting, err := s.swapService.GetPosting(c.Context(), userID, postingID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(posting)
}

// CreateSwapInterest handles POST /api/swaps/:id/interests
func (s *Server) CreateSwapInterest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	postingID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	interest, err := s.swapService.CreateInterest(ctx, userID, postingID, req.Message)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	posting, lookupErr := s.swapService.GetPosting(ctx, userID, postingID)
	if lookupErr == nil {
		sender, senderErr := s.userRepo.GetByID(ctx, userID)
		if senderErr == nil {
			s.notifyUser(ctx, posting.UserID, models.NotificationSwapInterest,
				"New interest in your swap",
				sender.FullName+" is interested in your swap posting",
				"/swaps/"+c.Params("id"),
				EventSwapInterestReceived, map[string]interface{}{
					"posting_id":  posting.ID,
					"interest_id": interest.ID,
					"from_user":   userSummaryPtr(sender),
					"message":     interest.Message,
					"timestamp":   time.Now().Format(time.RFC3339Nano),
				})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(interest)
}

// GetSwapInterests handles GET /api/swaps/:id/interests, owner only.
func (s *Server) GetSwapInterests(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postingID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	interests, err := s.swapService.ListInterests(c.Context(), userID, postingID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(interests)
}

// AcceptSwapInterest handles POST /api/swaps/:id/interests/:interestId/accept.
// On success the posting is matched, every other pending interest is
// rejected, and the referenced shift changes hands.
func (s *Server) AcceptSwapInterest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	postingID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	interestID, err := s.parseID(c, "interestId")
	if err != nil {
		return nil
	}

	posting, interest, err := s.swapService.AcceptInterest(ctx, userID, postingID, interestID)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	owner, lookupErr := s.userRepo.GetByID(ctx, userID)
	if lookupErr == nil {
		s.notifyUser(ctx, interest.UserID, models.NotificationSwapMatch,
			"Swap matched",
			owner.FullName+" accepted your interest",
			"/swaps/"+c.Params("id"),
			EventSwapMatched, map[string]interface{}{
				"posting_id":  posting.ID,
				"interest_id": interest.ID,
				"owner":       userSummaryPtr(owner),
				"timestamp":   time.Now().Format(time.RFC3339Nano),
			})
	}
	s.publishUserEvent(userID, EventSwapMatched, map[string]interface{}{
		"posting_id":  posting.ID,
		"interest_id": interest.ID,
		"timestamp":   time.Now().Format(time.RFC3339Nano),
	})

	return c.JSON(fiber.Map{
		"posting":  posting,
		"interest": interest,
	})
}

// RejectSwapInterest handles POST /api/swaps/:id/interests/:interestId/reject
func (s *Server) RejectSwapInterest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	postingID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	interestID, err := s.parseID(c, "interestId")
	if err != nil {
		return nil
	}

	interest, lookupErr := s.swapRepo.GetInterestByID(ctx, interestID)

	if err := s.swapService.RejectInterest(ctx, userID, postingID, interestID); err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	if lookupErr == nil {
		s.publishUserEvent(interest.UserID, EventSwapInterestRejected, map[string]interface{}{
			"posting_id":  postingID,
			"interest_id": interestID,
			"timestamp":   time.Now().Format(time.RFC3339Nano),
		})
	}

	return c.JSON(fiber.Map{"message": "Interest rejected"})
}

// CancelSwapPosting handles POST /api/swaps/:id/cancel
func (s *Server) CancelSwapPosting(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	postingID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	// Collect the pending parties before the cancel flips their interests.
	var pendingUserIDs []uint
	if interests, lookupErr := s.swapService.ListInterests(ctx, userID, postingID); lookupErr == nil {
		for _, interest := range interests {
			if interest.Status == models.SwapInterestStatusPending {
				pendingUserIDs = append(pendingUserIDs, interest.UserID)
			}
		}
	}

	if err := s.swapService.CancelPosting(ctx, userID, postingID); err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	for _, id := range pendingUserIDs {
		s.publishUserEvent(id, EventSwapCancelled, map[string]interface{}{
			"posting_id": postingID,
			"timestamp":  time.Now().Format(time.RFC3339Nano),
		})
	}

	return c.JSON(fiber.Map{"message": "Swap posting cancelled"})
}

// CompleteSwapPosting handles POST /api/swaps/:id/complete
func (s *Server) CompleteSwapPosting(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postingID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.swapService.CompletePosting(c.Context(), userID, postingID); err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(fiber.Map{"message": "Swap posting completed"})
}

// GetSwapMatches handles GET /api/swaps/:id/matches
//
//	@Summary		Rank visible candidates against one of your postings
//	@Tags			swaps
//	@Produce		json
//	@Param			limit	query	int	false	"max best matches"	default(5)
//	@Success		200	{object}	service.MatchResults
//	@Router			/swaps/{id}/matches [get]
func (s *Server) GetSwapMatches(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	postingID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	limit := c.QueryInt("limit", 0)
	results, err := s.swapService.Matches(c.Context(), userID, postingID, limit)
	if err != nil {
		return models.RespondWithError(c, models.HTTPStatus(err), err)
	}

	return c.JSON(results)
}
