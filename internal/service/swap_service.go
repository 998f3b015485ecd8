package service

import (
	"context"
	"time"

	"aurelo/internal/matching"
	"aurelo/internal/models"
	"aurelo/internal/observability"
	"aurelo/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// SwapService provides the marketplace business logic: posting lifecycle,
// interests, the acceptance flow and scored match lookup.
type SwapService struct {
	swapRepo   repository.SwapRepository
	shiftRepo  repository.ShiftRepository
	friendRepo repository.FriendRepository
}

// NewSwapService returns a new SwapService.
func NewSwapService(swapRepo repository.SwapRepository, shiftRepo repository.ShiftRepository, friendRepo repository.FriendRepository) *SwapService {
	return &SwapService{
		swapRepo:   swapRepo,
		shiftRepo:  shiftRepo,
		friendRepo: friendRepo,
	}
}

// CreatePostingInput carries the fields for a new posting.
type CreatePostingInput struct {
	SwapType           models.SwapType
	ShiftID            *uint
	DesiredDate        *time.Time
	DesiredWorkplaceID *uint
	Description        string
}

// CreatePosting validates the per-type required fields and opens a posting.
// Offer and exchange postings must reference one of the owner's shifts;
// request and exchange postings must carry the desired date.
func (s *SwapService) CreatePosting(ctx context.Context, ownerID uint, in CreatePostingInput) (*models.SwapPosting, error) {
	switch in.SwapType {
	case models.SwapTypeOffer, models.SwapTypeRequest, models.SwapTypeExchange:
	default:
		return nil, models.NewValidationError("swap_type must be offer, request or exchange")
	}

	needsShift := in.SwapType == models.SwapTypeOffer || in.SwapType == models.SwapTypeExchange
	needsDate := in.SwapType == models.SwapTypeRequest || in.SwapType == models.SwapTypeExchange

	if needsShift {
		if in.ShiftID == nil {
			return nil, models.NewValidationError("shift_id is required for offer and exchange postings")
		}
		shift, err := s.shiftRepo.GetOwned(ctx, ownerID, *in.ShiftID)
		if err != nil {
			return nil, err
		}
		if shift.Status != models.ShiftStatusScheduled {
			return nil, models.NewInvalidStateError("Only scheduled shifts can be posted")
		}
	}
	if needsDate && in.DesiredDate == nil {
		return nil, models.NewValidationError("desired_date is required for request and exchange postings")
	}

	posting := &models.SwapPosting{
		UserID:             ownerID,
		ShiftID:            in.ShiftID,
		SwapType:           in.SwapType,
		DesiredDate:        in.DesiredDate,
		DesiredWorkplaceID: in.DesiredWorkplaceID,
		Description:        in.Description,
		Status:             models.SwapStatusOpen,
	}
	if err := s.swapRepo.CreatePosting(ctx, posting); err != nil {
		return nil, err
	}
	return s.swapRepo.GetPostingByID(ctx, posting.ID)
}

// ListVisiblePostings returns the postings the viewer may see: their own and
// their accepted friends'. Filters narrow the result afterwards; status
// defaults to open.
func (s *SwapService) ListVisiblePostings(ctx context.Context, viewerID uint, filter repository.PostingFilter) ([]models.SwapPosting, error) {
	friendIDs, err := s.friendRepo.GetFriendIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if filter.Status == "" {
		filter.Status = models.SwapStatusOpen
	}
	return s.swapRepo.ListVisible(ctx, viewerID, friendIDs, filter)
}

// GetPosting fetches a posting the viewer may see. A posting outside the
// viewer's friend graph reads as not found, visibility is never disclosed.
func (s *SwapService) GetPosting(ctx context.Context, viewerID, postingID uint) (*models.SwapPosting, error) {
	posting, err := s.swapRepo.GetPostingByID(ctx, postingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisible(ctx, viewerID, posting); err != nil {
		return nil, err
	}
	return posting, nil
}

// MyPostings lists every posting the actor owns, regardless of status.
func (s *SwapService) MyPostings(ctx context.Context, actorID uint) ([]models.SwapPosting, error) {
	return s.swapRepo.ListByUser(ctx, actorID)
}

// CreateInterest registers the actor's bid on an open, visible posting.
func (s *SwapService) CreateInterest(ctx context.Context, actorID, postingID uint, message string) (*models.SwapInterest, error) {
	posting, err := s.swapRepo.GetPostingByID(ctx, postingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkVisible(ctx, actorID, posting); err != nil {
		return nil, err
	}
	if posting.UserID == actorID {
		return nil, models.NewSelfInterestError()
	}
	if !posting.Open() {
		return nil, models.NewInvalidStateError("Swap posting is no longer open")
	}

	interest := &models.SwapInterest{
		SwapID:  postingID,
		UserID:  actorID,
		Message: message,
		Status:  models.SwapInterestStatusPending,
	}
	if err := s.swapRepo.CreateInterest(ctx, interest); err != nil {
		return nil, err
	}
	return interest, nil
}

// ListInterests returns the interests on a posting, owner only.
func (s *SwapService) ListInterests(ctx context.Context, actorID, postingID uint) ([]models.SwapInterest, error) {
	posting, err := s.swapRepo.GetPostingByID(ctx, postingID)
	if err != nil {
		return nil, err
	}
	if posting.UserID != actorID {
		return nil, models.NewPermissionDeniedError("Only the posting owner can list interests")
	}
	return s.swapRepo.ListInterests(ctx, postingID)
}

// AcceptInterest turns one pending interest into the posting's sole winner.
// Only the owner may accept; everything else is enforced atomically inside
// the repository transaction.
func (s *SwapService) AcceptInterest(ctx context.Context, actorID, postingID, interestID uint) (*models.SwapPosting, *models.SwapInterest, error) {
	span, ctx := observability.NewSpan(ctx, "swap.accept_interest")
	defer span.End()
	span.AddAttributes(
		attribute.Int64("swap.posting_id", int64(postingID)),
		attribute.Int64("swap.interest_id", int64(interestID)),
	)

	posting, err := s.swapRepo.GetPostingByID(ctx, postingID)
	if err != nil {
		span.SetError(err)
		return nil, nil, err
	}
	if posting.UserID != actorID {
		return nil, nil, models.NewPermissionDeniedError("Only the posting owner can accept an interest")
	}

	posting, interest, err := s.swapRepo.AcceptInterest(ctx, postingID, interestID)
	if err != nil {
		span.SetError(err)
	}
	return posting, interest, err
}

// RejectInterest declines one pending interest without matching the posting.
func (s *SwapService) RejectInterest(ctx context.Context, actorID, postingID, interestID uint) error {
	posting, err := s.swapRepo.GetPostingByID(ctx, postingID)
	if err != nil {
		return err
	}
	if posting.UserID != actorID {
		return models.NewPermissionDeniedError("Only the posting owner can reject an interest")
	}
	if !posting.Open() {
		return models.NewInvalidStateError("Swap posting is no longer open")
	}

	interest, err := s.swapRepo.GetInterestByID(ctx, interestID)
	if err != nil {
		return err
	}
	if interest.SwapID != postingID {
		return models.NewNotFoundError("Swap interest", interestID)
	}

	return s.swapRepo.UpdateInterestStatus(ctx, interestID,
		models.SwapInterestStatusPending, models.SwapInterestStatusRejected)
}

// CancelPosting withdraws an open posting, owner only.
func (s *SwapService) CancelPosting(ctx context.Context, actorID, postingID uint) error {
	posting, err := s.swapRepo.GetPostingByID(ctx, postingID)
	if err != nil {
		return err
	}
	if posting.UserID != actorID {
		return models.NewPermissionDeniedError("Only the posting owner can cancel it")
	}
	return s.swapRepo.UpdatePostingStatus(ctx, postingID,
		models.SwapStatusOpen, models.SwapStatusCancelled)
}

// CompletePosting marks a matched posting as carried out, owner only.
func (s *SwapService) CompletePosting(ctx context.Context, actorID, postingID uint) error {
	posting, err := s.swapRepo.GetPostingByID(ctx, postingID)
	if err != nil {
		return err
	}
	if posting.UserID != actorID {
		return models.NewPermissionDeniedError("Only the posting owner can complete it")
	}
	return s.swapRepo.UpdatePostingStatus(ctx, postingID,
		models.SwapStatusMatched, models.SwapStatusCompleted)
}

// MatchResults holds the scored candidates for one of the actor's postings.
type MatchResults struct {
	Best []matching.Result `json:"best_matches"`
	Auto []matching.Result `json:"auto_matches"`
}

// Matches ranks the actor's visible open candidates against one of their own
// postings. Read-only; never mutates state.
func (s *SwapService) Matches(ctx context.Context, actorID, postingID uint, limit int) (*MatchResults, error) {
	reference, err := s.swapRepo.GetPostingByID(ctx, postingID)
	if err != nil {
		return nil, err
	}
	if reference.UserID != actorID {
		return nil, models.NewPermissionDeniedError("You can only match against your own postings")
	}

	friendIDs, err := s.friendRepo.GetFriendIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.swapRepo.ListVisible(ctx, actorID, friendIDs, repository.PostingFilter{
		Status:     models.SwapStatusOpen,
		ExcludeOwn: true,
	})
	if err != nil {
		return nil, err
	}

	return &MatchResults{
		Best: matching.BestMatches(*reference, candidates, limit),
		Auto: matching.AutoMatches(*reference, candidates),
	}, nil
}

func (s *SwapService) checkVisible(ctx context.Context, viewerID uint, posting *models.SwapPosting) error {
	if posting.UserID == viewerID {
		return nil
	}
	friendship, err := s.friendRepo.GetFriendshipBetween(ctx, viewerID, posting.UserID)
	if err != nil {
		return err
	}
	if friendship == nil {
		return models.NewNotFoundError("Swap posting", posting.ID)
	}
	return nil
}
