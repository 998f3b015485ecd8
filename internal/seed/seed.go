// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"aurelo/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SharedPassword is the plaintext password assigned to every seeded user.
const SharedPassword = "Password123!!"

// Seeder populates the database with plausible development data.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder returns a Seeder backed by db. The generator is seeded from the
// clock; pass a fixed value to NewSeederWithSource for reproducible runs.
func NewSeeder(db *gorm.DB) *Seeder {
	return NewSeederWithSource(db, time.Now().UnixNano())
}

// NewSeederWithSource returns a Seeder with a deterministic random source.
func NewSeederWithSource(db *gorm.DB, source int64) *Seeder {
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(source)),
	}
}

// ClearAll removes every seeded row. Deletion order respects foreign keys.
func (s *Seeder) ClearAll() error {
	tables := []string{
		"notifications",
		"swap_interests",
		"swap_postings",
		"friend_requests",
		"friendships",
		"shifts",
		"workplaces",
		"users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	log.Println("Cleared all seed tables")
	return nil
}

// SeedRoster creates numUsers users, each with one or two workplaces and a
// couple of weeks of upcoming shifts, then weaves a friendship mesh between
// them. Returns the created users.
func (s *Seeder) SeedRoster(numUsers int) ([]models.User, error) {
	if numUsers < 2 {
		return nil, fmt.Errorf("need at least 2 users, got %d", numUsers)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(SharedPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash shared password: %w", err)
	}

	users := make([]models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user := s.fakeUser(i, string(hashed))
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user %s: %w", user.Email, err)
		}

		for w := 0; w < 1+s.rng.Intn(2); w++ {
			wp := s.fakeWorkplace(user.ID)
			if err := s.db.Create(&wp).Error; err != nil {
				return nil, fmt.Errorf("create workplace: %w", err)
			}
			for sh := 0; sh < 3+s.rng.Intn(4); sh++ {
				shift := s.fakeShift(user.ID, wp.ID)
				if err := s.db.Create(&shift).Error; err != nil {
					return nil, fmt.Errorf("create shift: %w", err)
				}
			}
		}

		users = append(users, user)
	}

	if err := s.seedFriendMesh(users); err != nil {
		return nil, err
	}

	log.Printf("Seeded %d users with workplaces and shifts", len(users))
	return users, nil
}

// seedFriendMesh befriends each user with a handful of others. A few extra
// requests are left pending so inboxes are not empty.
func (s *Seeder) seedFriendMesh(users []models.User) error {
	for i := range users {
		degree := 2 + s.rng.Intn(3)
		for d := 0; d < degree; d++ {
			j := s.rng.Intn(len(users))
			if j == i {
				continue
			}
			low, high := models.NormalizePair(users[i].ID, users[j].ID)
			friendship := models.Friendship{UserLowID: low, UserHighID: high}
			// The pair index makes repeats a no-op.
			if err := s.db.Where(models.Friendship{UserLowID: low, UserHighID: high}).
				FirstOrCreate(&friendship).Error; err != nil {
				return fmt.Errorf("create friendship: %w", err)
			}
		}
	}

	// Pending requests between the first few non-friend pairs
	pending := 0
	for i := 0; i < len(users) && pending < len(users)/4; i++ {
		j := (i + len(users)/2) % len(users)
		if i == j {
			continue
		}
		low, high := models.NormalizePair(users[i].ID, users[j].ID)
		var existing int64
		s.db.Model(&models.Friendship{}).
			Where("user_low_id = ? AND user_high_id = ?", low, high).
			Count(&existing)
		if existing > 0 {
			continue
		}
		to := users[j].ID
		req := models.FriendRequest{
			FromUserID: users[i].ID,
			ToUserID:   &to,
			Message:    "Met you on the ward, let's trade shifts",
			Status:     models.FriendRequestStatusPending,
			ExpiresAt:  time.Now().Add(models.DefaultRequestTTL),
		}
		if err := s.db.Create(&req).Error; err != nil {
			return fmt.Errorf("create pending request: %w", err)
		}
		pending++
	}
	return nil
}

// SeedMarketplace opens swap postings for a share of the users' shifts and
// registers interests from their friends. Returns the number of postings.
func (s *Seeder) SeedMarketplace(users []models.User) (int, error) {
	created := 0
	for _, user := range users {
		var shifts []models.Shift
		if err := s.db.Where("user_id = ? AND status = ?", user.ID,
			models.ShiftStatusScheduled).Limit(2).Find(&shifts).Error; err != nil {
			return created, fmt.Errorf("load shifts: %w", err)
		}

		for _, shift := range shifts {
			if s.rng.Intn(3) != 0 {
				continue
			}
			shiftID := shift.ID
			posting := models.SwapPosting{
				UserID:      user.ID,
				ShiftID:     &shiftID,
				SwapType:    models.SwapTypeOffer,
				Description: s.fakePostingDescription(),
				Status:      models.SwapStatusOpen,
			}
			if s.rng.Intn(4) == 0 {
				desired := shift.StartTime.Add(time.Duration(24+s.rng.Intn(72)) * time.Hour)
				posting.SwapType = models.SwapTypeExchange
				posting.DesiredDate = &desired
			}
			if err := s.db.Create(&posting).Error; err != nil {
				return created, fmt.Errorf("create posting: %w", err)
			}
			created++

			if err := s.seedInterests(&posting); err != nil {
				return created, err
			}
		}

		// Some users also ask for extra shifts
		if s.rng.Intn(4) == 0 {
			desired := time.Now().Add(time.Duration(48+s.rng.Intn(240)) * time.Hour).Truncate(time.Hour)
			request := models.SwapPosting{
				UserID:      user.ID,
				SwapType:    models.SwapTypeRequest,
				DesiredDate: &desired,
				Description: "Looking to pick up an extra shift",
				Status:      models.SwapStatusOpen,
			}
			if err := s.db.Create(&request).Error; err != nil {
				return created, fmt.Errorf("create request posting: %w", err)
			}
			created++
		}
	}

	log.Printf("Seeded %d swap postings", created)
	return created, nil
}

// seedInterests registers pending interests on a posting from up to two of
// the owner's friends.
func (s *Seeder) seedInterests(posting *models.SwapPosting) error {
	var friendIDs []uint
	if err := s.db.Raw(`
		SELECT CASE WHEN user_low_id = ? THEN user_high_id ELSE user_low_id END
		FROM friendships
		WHERE user_low_id = ? OR user_high_id = ?`,
		posting.UserID, posting.UserID, posting.UserID).
		Scan(&friendIDs).Error; err != nil {
		return fmt.Errorf("load friend ids: %w", err)
	}

	s.rng.Shuffle(len(friendIDs), func(i, j int) {
		friendIDs[i], friendIDs[j] = friendIDs[j], friendIDs[i]
	})
	for i, friendID := range friendIDs {
		if i >= 2 || s.rng.Intn(2) == 0 {
			break
		}
		interest := models.SwapInterest{
			SwapID:  posting.ID,
			UserID:  friendID,
			Message: "I could take this one",
			Status:  models.SwapInterestStatusPending,
		}
		if err := s.db.Create(&interest).Error; err != nil {
			return fmt.Errorf("create interest: %w", err)
		}
	}
	return nil
}
