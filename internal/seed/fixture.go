package seed

import (
	"fmt"
	"os"
	"time"

	"aurelo/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Fixture describes a deterministic data set loaded from a YAML file. It is
// meant for demo environments where the faker's random roster would make
// walkthroughs impossible to script.
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
}

// FixtureUser is one user entry in a fixture file.
type FixtureUser struct {
	FullName     string         `yaml:"full_name"`
	Email        string         `yaml:"email"`
	Role         string         `yaml:"role"`
	FriendCode   string         `yaml:"friend_code,omitempty"`
	Institutions []string       `yaml:"institutions,omitempty"`
	Shifts       []FixtureShift `yaml:"shifts,omitempty"`
	FriendsWith  []string       `yaml:"friends_with,omitempty"`
}

// FixtureShift is one shift entry; times are RFC3339.
type FixtureShift struct {
	Start          string  `yaml:"start"`
	End            string  `yaml:"end"`
	Institution    string  `yaml:"institution,omitempty"`
	EstimatedValue float64 `yaml:"estimated_value,omitempty"`
	Notes          string  `yaml:"notes,omitempty"`
}

// LoadFixture reads and parses a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Users) == 0 {
		return nil, fmt.Errorf("fixture %s contains no users", path)
	}
	return &f, nil
}

// Apply creates the fixture's users, workplaces, shifts and friendships.
// Emails already present in the database are skipped, so applying the same
// fixture twice is safe.
func (s *Seeder) Apply(f *Fixture) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(SharedPassword), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hash shared password: %w", err)
	}

	byEmail := make(map[string]uint, len(f.Users))
	for _, fu := range f.Users {
		var existing models.User
		err := s.db.Where("email = ?", fu.Email).First(&existing).Error
		if err == nil {
			byEmail[fu.Email] = existing.ID
			continue
		}

		user := models.User{
			FullName: fu.FullName,
			Email:    fu.Email,
			Password: string(hashed),
			Role:     fu.Role,
		}
		if fu.FriendCode != "" {
			code := fu.FriendCode
			user.FriendCode = &code
		}
		if err := s.db.Create(&user).Error; err != nil {
			return fmt.Errorf("create fixture user %s: %w", fu.Email, err)
		}
		byEmail[fu.Email] = user.ID

		workplaceByName := make(map[string]uint, len(fu.Institutions))
		for _, inst := range fu.Institutions {
			wp := models.Workplace{UserID: user.ID, InstitutionName: inst}
			if err := s.db.Create(&wp).Error; err != nil {
				return fmt.Errorf("create fixture workplace %s: %w", inst, err)
			}
			workplaceByName[inst] = wp.ID
		}

		for _, fs := range fu.Shifts {
			start, err := time.Parse(time.RFC3339, fs.Start)
			if err != nil {
				return fmt.Errorf("fixture shift start %q: %w", fs.Start, err)
			}
			end, err := time.Parse(time.RFC3339, fs.End)
			if err != nil {
				return fmt.Errorf("fixture shift end %q: %w", fs.End, err)
			}
			shift := models.Shift{
				UserID:         user.ID,
				StartTime:      start,
				EndTime:        end,
				EstimatedValue: fs.EstimatedValue,
				Status:         models.ShiftStatusScheduled,
				Notes:          fs.Notes,
			}
			if wpID, ok := workplaceByName[fs.Institution]; ok {
				shift.WorkplaceID = &wpID
			}
			if err := s.db.Create(&shift).Error; err != nil {
				return fmt.Errorf("create fixture shift: %w", err)
			}
		}
	}

	for _, fu := range f.Users {
		for _, friendEmail := range fu.FriendsWith {
			friendID, ok := byEmail[friendEmail]
			if !ok {
				return fmt.Errorf("fixture user %s lists unknown friend %s", fu.Email, friendEmail)
			}
			low, high := models.NormalizePair(byEmail[fu.Email], friendID)
			friendship := models.Friendship{UserLowID: low, UserHighID: high}
			if err := s.db.Where(models.Friendship{UserLowID: low, UserHighID: high}).
				FirstOrCreate(&friendship).Error; err != nil {
				return fmt.Errorf("create fixture friendship: %w", err)
			}
		}
	}

	return nil
}
