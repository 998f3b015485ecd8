package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"aurelo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShift(t *testing.T, userID uint, start time.Time) *models.Shift {
	t.Helper()
	s := &models.Shift{
		UserID:         userID,
		StartTime:      start,
		EndTime:        start.Add(8 * time.Hour),
		EstimatedValue: 1200,
		Status:         models.ShiftStatusScheduled,
	}
	require.NoError(t, testDB.Create(s).Error)
	return s
}

func TestSwapRepository_PostingLifecycle(t *testing.T) {
	repo := NewSwapRepository(testDB)
	ctx := context.Background()

	owner := newTestUser(t, "sw1")
	shift := newTestShift(t, owner.ID, time.Now().Add(48*time.Hour))

	posting := &models.SwapPosting{
		UserID:   owner.ID,
		ShiftID:  &shift.ID,
		SwapType: models.SwapTypeOffer,
		Status:   models.SwapStatusOpen,
	}
	require.NoError(t, repo.CreatePosting(ctx, posting))

	t.Run("GetPostingByID preloads and counts interests", func(t *testing.T) {
		got, err := repo.GetPostingByID(ctx, posting.ID)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, got.User.ID)
		require.NotNil(t, got.Shift)
		assert.Equal(t, shift.ID, got.Shift.ID)
		assert.Equal(t, int64(0), got.InterestsCount)
	})

	t.Run("cancel transitions open to cancelled once", func(t *testing.T) {
		err := repo.UpdatePostingStatus(ctx, posting.ID, models.SwapStatusOpen, models.SwapStatusCancelled)
		require.NoError(t, err)

		err = repo.UpdatePostingStatus(ctx, posting.ID, models.SwapStatusOpen, models.SwapStatusCancelled)
		require.Error(t, err)
		assert.Equal(t, models.CodeInvalidState, models.CodeOf(err))
	})

	t.Run("unknown posting reads as not found", func(t *testing.T) {
		err := repo.UpdatePostingStatus(ctx, 999999, models.SwapStatusOpen, models.SwapStatusCancelled)
		require.Error(t, err)
		assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
	})
}

func TestSwapRepository_AcceptInterest(t *testing.T) {
	repo := NewSwapRepository(testDB)
	ctx := context.Background()

	owner := newTestUser(t, "ac1")
	bidder1 := newTestUser(t, "ac2")
	bidder2 := newTestUser(t, "ac3")
	shift := newTestShift(t, owner.ID, time.Now().Add(72*time.Hour))

	posting := &models.SwapPosting{
		UserID:   owner.ID,
		ShiftID:  &shift.ID,
		SwapType: models.SwapTypeOffer,
		Status:   models.SwapStatusOpen,
	}
	require.NoError(t, repo.CreatePosting(ctx, posting))

	i1 := &models.SwapInterest{SwapID: posting.ID, UserID: bidder1.ID, Status: models.SwapInterestStatusPending}
	i2 := &models.SwapInterest{SwapID: posting.ID, UserID: bidder2.ID, Status: models.SwapInterestStatusPending}
	require.NoError(t, repo.CreateInterest(ctx, i1))
	require.NoError(t, repo.CreateInterest(ctx, i2))

	t.Run("duplicate interest per user is rejected", func(t *testing.T) {
		dup := &models.SwapInterest{SwapID: posting.ID, UserID: bidder1.ID}
		err := repo.CreateInterest(ctx, dup)
		require.Error(t, err)
		assert.Equal(t, models.CodeDuplicateInterest, models.CodeOf(err))
	})

	t.Run("acceptance matches, rejects siblings and hands the shift over", func(t *testing.T) {
		matched, winner, err := repo.AcceptInterest(ctx, posting.ID, i1.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SwapStatusMatched, matched.Status)
		assert.Equal(t, bidder1.ID, winner.UserID)
		assert.Equal(t, models.SwapInterestStatusAccepted, winner.Status)

		var sibling models.SwapInterest
		require.NoError(t, testDB.First(&sibling, i2.ID).Error)
		assert.Equal(t, models.SwapInterestStatusRejected, sibling.Status)

		// Winner received a scheduled copy of the shift
		var clones []models.Shift
		require.NoError(t, testDB.
			Where("user_id = ? AND received_via_swap = ?", bidder1.ID, true).
			Find(&clones).Error)
		require.Len(t, clones, 1)
		assert.Equal(t, shift.StartTime.Unix(), clones[0].StartTime.Unix())
		assert.Equal(t, models.ShiftStatusScheduled, clones[0].Status)

		// Original shift is off the schedule
		var original models.Shift
		require.NoError(t, testDB.First(&original, shift.ID).Error)
		assert.Equal(t, models.ShiftStatusCancelled, original.Status)
	})

	t.Run("second acceptance fails with invalid state", func(t *testing.T) {
		_, _, err := repo.AcceptInterest(ctx, posting.ID, i2.ID)
		require.Error(t, err)
		assert.Equal(t, models.CodeInvalidState, models.CodeOf(err))
	})
}

// TestSwapRepository_ConcurrentAcceptance hammers one open posting with many
// concurrent acceptances. Exactly one must win; every loser must observe
// InvalidState, and the posting must end matched with a single accepted
// interest.
func TestSwapRepository_ConcurrentAcceptance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrency test in short mode")
	}

	repo := NewSwapRepository(testDB)
	ctx := context.Background()

	owner := newTestUser(t, "cc0")
	shift := newTestShift(t, owner.ID, time.Now().Add(96*time.Hour))

	posting := &models.SwapPosting{
		UserID:   owner.ID,
		ShiftID:  &shift.ID,
		SwapType: models.SwapTypeOffer,
		Status:   models.SwapStatusOpen,
	}
	require.NoError(t, repo.CreatePosting(ctx, posting))

	const bidders = 50
	interestIDs := make([]uint, bidders)
	for i := 0; i < bidders; i++ {
		bidder := newTestUser(t, "cc")
		interest := &models.SwapInterest{
			SwapID: posting.ID,
			UserID: bidder.ID,
			Status: models.SwapInterestStatusPending,
		}
		require.NoError(t, repo.CreateInterest(ctx, interest))
		interestIDs[i] = interest.ID
	}

	const attempts = 1000
	var wins, conflicts int64
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			_, _, err := repo.AcceptInterest(ctx, posting.ID, interestIDs[i%bidders])
			switch {
			case err == nil:
				atomic.AddInt64(&wins, 1)
			case models.CodeOf(err) == models.CodeInvalidState:
				atomic.AddInt64(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
	assert.Equal(t, int64(attempts-1), conflicts)

	got, err := repo.GetPostingByID(ctx, posting.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapStatusMatched, got.Status)

	var acceptedCount int64
	testDB.Model(&models.SwapInterest{}).
		Where("swap_id = ? AND status = ?", posting.ID, models.SwapInterestStatusAccepted).
		Count(&acceptedCount)
	assert.Equal(t, int64(1), acceptedCount)
}

func TestSwapRepository_ListVisible(t *testing.T) {
	repo := NewSwapRepository(testDB)
	ctx := context.Background()

	viewer := newTestUser(t, "lv1")
	friend := newTestUser(t, "lv2")
	stranger := newTestUser(t, "lv3")

	mine := &models.SwapPosting{UserID: viewer.ID, SwapType: models.SwapTypeRequest, Status: models.SwapStatusOpen, DesiredDate: ptrTime(time.Now().Add(24 * time.Hour))}
	theirs := &models.SwapPosting{UserID: friend.ID, SwapType: models.SwapTypeRequest, Status: models.SwapStatusOpen, DesiredDate: ptrTime(time.Now().Add(48 * time.Hour))}
	hidden := &models.SwapPosting{UserID: stranger.ID, SwapType: models.SwapTypeRequest, Status: models.SwapStatusOpen, DesiredDate: ptrTime(time.Now().Add(48 * time.Hour))}
	require.NoError(t, repo.CreatePosting(ctx, mine))
	require.NoError(t, repo.CreatePosting(ctx, theirs))
	require.NoError(t, repo.CreatePosting(ctx, hidden))

	t.Run("viewer sees own and friends' postings only", func(t *testing.T) {
		postings, err := repo.ListVisible(ctx, viewer.ID, []uint{friend.ID}, PostingFilter{Status: models.SwapStatusOpen})
		require.NoError(t, err)
		ids := postingIDs(postings)
		assert.Contains(t, ids, mine.ID)
		assert.Contains(t, ids, theirs.ID)
		assert.NotContains(t, ids, hidden.ID)
	})

	t.Run("exclude_own drops the viewer's postings", func(t *testing.T) {
		postings, err := repo.ListVisible(ctx, viewer.ID, []uint{friend.ID}, PostingFilter{
			Status:     models.SwapStatusOpen,
			ExcludeOwn: true,
		})
		require.NoError(t, err)
		ids := postingIDs(postings)
		assert.NotContains(t, ids, mine.ID)
		assert.Contains(t, ids, theirs.ID)
	})

	t.Run("no friends and exclude_own yields empty", func(t *testing.T) {
		postings, err := repo.ListVisible(ctx, viewer.ID, nil, PostingFilter{ExcludeOwn: true})
		require.NoError(t, err)
		assert.Empty(t, postings)
	})
}

func postingIDs(postings []models.SwapPosting) []uint {
	ids := make([]uint, 0, len(postings))
	for _, p := range postings {
		ids = append(ids, p.ID)
	}
	return ids
}

func ptrTime(t time.Time) *time.Time { return &t }
