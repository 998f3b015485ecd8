package service

import (
	"context"
	"time"

	"aurelo/internal/models"
	"aurelo/internal/repository"
)

type userRepoStub struct {
	getByIDFn         func(context.Context, uint) (*models.User, error)
	getByEmailFn      func(context.Context, string) (*models.User, error)
	getByFriendCodeFn func(context.Context, string) (*models.User, error)
	createFn          func(context.Context, *models.User) error
	updateFn          func(context.Context, *models.User) error
	setFriendCodeFn   func(context.Context, uint, string) error
	searchFn          func(context.Context, uint, string, int) ([]models.User, error)
	listFn            func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByFriendCode(ctx context.Context, code string) (*models.User, error) {
	return s.getByFriendCodeFn(ctx, code)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) SetFriendCode(ctx context.Context, userID uint, code string) error {
	return s.setFriendCodeFn(ctx, userID, code)
}
func (s *userRepoStub) Search(ctx context.Context, viewerID uint, query string, limit int) ([]models.User, error) {
	return s.searchFn(ctx, viewerID, query, limit)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

type friendRepoStub struct {
	createRequestFn            func(context.Context, *models.FriendRequest) error
	getRequestByIDFn           func(context.Context, uint) (*models.FriendRequest, error)
	getRequestByInviteCodeFn   func(context.Context, string) (*models.FriendRequest, error)
	getPendingRequestBetweenFn func(context.Context, uint, uint) (*models.FriendRequest, error)
	getReceivedRequestsFn      func(context.Context, uint) ([]models.FriendRequest, error)
	getSentRequestsFn          func(context.Context, uint) ([]models.FriendRequest, error)
	updateRequestStatusFn      func(context.Context, uint, models.FriendRequestStatus, models.FriendRequestStatus) error
	acceptRequestFn            func(context.Context, uint, uint) (*models.FriendRequest, error)
	getFriendshipBetweenFn     func(context.Context, uint, uint) (*models.Friendship, error)
	getFriendsFn               func(context.Context, uint) ([]models.User, error)
	getFriendIDsFn             func(context.Context, uint) ([]uint, error)
	removeFriendshipFn         func(context.Context, uint, uint) error
}

func (s *friendRepoStub) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	return s.createRequestFn(ctx, req)
}
func (s *friendRepoStub) GetRequestByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	return s.getRequestByIDFn(ctx, id)
}
func (s *friendRepoStub) GetRequestByInviteCode(ctx context.Context, code string) (*models.FriendRequest, error) {
	return s.getRequestByInviteCodeFn(ctx, code)
}
func (s *friendRepoStub) GetPendingRequestBetween(ctx context.Context, a, b uint) (*models.FriendRequest, error) {
	return s.getPendingRequestBetweenFn(ctx, a, b)
}
func (s *friendRepoStub) GetReceivedRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	return s.getReceivedRequestsFn(ctx, userID)
}
func (s *friendRepoStub) GetSentRequests(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	return s.getSentRequestsFn(ctx, userID)
}
func (s *friendRepoStub) UpdateRequestStatus(ctx context.Context, id uint, from, to models.FriendRequestStatus) error {
	return s.updateRequestStatusFn(ctx, id, from, to)
}
func (s *friendRepoStub) AcceptRequest(ctx context.Context, requestID, recipientID uint) (*models.FriendRequest, error) {
	return s.acceptRequestFn(ctx, requestID, recipientID)
}
func (s *friendRepoStub) GetFriendshipBetween(ctx context.Context, a, b uint) (*models.Friendship, error) {
	return s.getFriendshipBetweenFn(ctx, a, b)
}
func (s *friendRepoStub) GetFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.getFriendsFn(ctx, userID)
}
func (s *friendRepoStub) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.getFriendIDsFn(ctx, userID)
}
func (s *friendRepoStub) RemoveFriendship(ctx context.Context, a, b uint) error {
	return s.removeFriendshipFn(ctx, a, b)
}

type shiftRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.Shift, error)
	getOwnedFn   func(context.Context, uint, uint) (*models.Shift, error)
	createFn     func(context.Context, *models.Shift) error
	updateFn     func(context.Context, *models.Shift) error
	setStatusFn  func(context.Context, uint, uint, models.ShiftStatus) error
	listByUserFn func(context.Context, uint, *time.Time, *time.Time) ([]models.Shift, error)
}

func (s *shiftRepoStub) GetByID(ctx context.Context, id uint) (*models.Shift, error) {
	return s.getByIDFn(ctx, id)
}
func (s *shiftRepoStub) GetOwned(ctx context.Context, userID, id uint) (*models.Shift, error) {
	return s.getOwnedFn(ctx, userID, id)
}
func (s *shiftRepoStub) Create(ctx context.Context, shift *models.Shift) error {
	return s.createFn(ctx, shift)
}
func (s *shiftRepoStub) Update(ctx context.Context, shift *models.Shift) error {
	return s.updateFn(ctx, shift)
}
func (s *shiftRepoStub) SetStatus(ctx context.Context, userID, id uint, status models.ShiftStatus) error {
	return s.setStatusFn(ctx, userID, id, status)
}
func (s *shiftRepoStub) ListByUser(ctx context.Context, userID uint, from, to *time.Time) ([]models.Shift, error) {
	return s.listByUserFn(ctx, userID, from, to)
}

type swapRepoStub struct {
	createPostingFn        func(context.Context, *models.SwapPosting) error
	getPostingByIDFn       func(context.Context, uint) (*models.SwapPosting, error)
	listVisibleFn          func(context.Context, uint, []uint, repository.PostingFilter) ([]models.SwapPosting, error)
	listByUserFn           func(context.Context, uint) ([]models.SwapPosting, error)
	updatePostingStatusFn  func(context.Context, uint, models.SwapStatus, models.SwapStatus) error
	createInterestFn       func(context.Context, *models.SwapInterest) error
	getInterestByIDFn      func(context.Context, uint) (*models.SwapInterest, error)
	listInterestsFn        func(context.Context, uint) ([]models.SwapInterest, error)
	updateInterestStatusFn func(context.Context, uint, models.SwapInterestStatus, models.SwapInterestStatus) error
	acceptInterestFn       func(context.Context, uint, uint) (*models.SwapPosting, *models.SwapInterest, error)
}

func (s *swapRepoStub) CreatePosting(ctx context.Context, posting *models.SwapPosting) error {
	return s.createPostingFn(ctx, posting)
}
func (s *swapRepoStub) GetPostingByID(ctx context.Context, id uint) (*models.SwapPosting, error) {
	return s.getPostingByIDFn(ctx, id)
}
func (s *swapRepoStub) ListVisible(ctx context.Context, viewerID uint, ownerIDs []uint, filter repository.PostingFilter) ([]models.SwapPosting, error) {
	return s.listVisibleFn(ctx, viewerID, ownerIDs, filter)
}
func (s *swapRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.SwapPosting, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *swapRepoStub) UpdatePostingStatus(ctx context.Context, postingID uint, from, to models.SwapStatus) error {
	return s.updatePostingStatusFn(ctx, postingID, from, to)
}
func (s *swapRepoStub) CreateInterest(ctx context.Context, interest *models.SwapInterest) error {
	return s.createInterestFn(ctx, interest)
}
func (s *swapRepoStub) GetInterestByID(ctx context.Context, id uint) (*models.SwapInterest, error) {
	return s.getInterestByIDFn(ctx, id)
}
func (s *swapRepoStub) ListInterests(ctx context.Context, swapID uint) ([]models.SwapInterest, error) {
	return s.listInterestsFn(ctx, swapID)
}
func (s *swapRepoStub) UpdateInterestStatus(ctx context.Context, interestID uint, from, to models.SwapInterestStatus) error {
	return s.updateInterestStatusFn(ctx, interestID, from, to)
}
func (s *swapRepoStub) AcceptInterest(ctx context.Context, postingID, interestID uint) (*models.SwapPosting, *models.SwapInterest, error) {
	return s.acceptInterestFn(ctx, postingID, interestID)
}
