package seed

import (
	"fmt"
	"strings"
	"time"

	"aurelo/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

var roles = []string{"nurse", "doctor", "paramedic", "midwife", "care assistant"}

var institutionSuffixes = []string{
	"General Hospital", "University Hospital", "Medical Center",
	"Community Clinic", "Regional Hospital", "Care Home",
}

var postingPhrases = []string{
	"Family plans came up, happy to hand this over.",
	"Double-booked that week, any takers?",
	"Would trade for something later in the month.",
	"Can't make this one, sorry for the short notice.",
	"Open to offers, message me.",
}

func (s *Seeder) fakeUser(i int, hashedPassword string) models.User {
	name := gofakeit.Name()
	email := fmt.Sprintf("%s%d@example.com",
		strings.ToLower(strings.ReplaceAll(name, " ", ".")), i)
	return models.User{
		FullName: name,
		Email:    email,
		Password: hashedPassword,
		Role:     roles[s.rng.Intn(len(roles))],
	}
}

func (s *Seeder) fakeWorkplace(userID uint) models.Workplace {
	name := gofakeit.City() + " " + institutionSuffixes[s.rng.Intn(len(institutionSuffixes))]
	return models.Workplace{
		UserID:          userID,
		InstitutionName: name,
	}
}

// fakeShift places a shift one to thirty days out, starting at 07, 15 or 23
// o'clock so all three scoring buckets are represented.
func (s *Seeder) fakeShift(userID, workplaceID uint) models.Shift {
	day := time.Now().AddDate(0, 0, 1+s.rng.Intn(30)).Truncate(24 * time.Hour)
	startHours := []int{7, 15, 23}
	start := day.Add(time.Duration(startHours[s.rng.Intn(3)]) * time.Hour)
	return models.Shift{
		UserID:         userID,
		WorkplaceID:    &workplaceID,
		StartTime:      start,
		EndTime:        start.Add(8 * time.Hour),
		EstimatedValue: float64(1200 + s.rng.Intn(800)),
		Status:         models.ShiftStatusScheduled,
		Notes:          gofakeit.Sentence(6),
	}
}

func (s *Seeder) fakePostingDescription() string {
	return postingPhrases[s.rng.Intn(len(postingPhrases))]
}
