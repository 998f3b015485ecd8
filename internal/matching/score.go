// Package matching ranks swap postings by compatibility. Scoring is a pure
// function over two postings; nothing here reads or writes storage.
package matching

import (
	"fmt"
	"math"
	"sort"

	"aurelo/internal/models"
)

// Result pairs a candidate posting with its compatibility score and the
// human-readable reasons that produced it.
type Result struct {
	Posting models.SwapPosting `json:"posting"`
	Score   int                `json:"score"`
	Reasons []string           `json:"reasons"`
}

// AutoMatchThreshold is the minimum score considered worth notifying about.
const AutoMatchThreshold = 50

type dayBucket string

const (
	bucketMorning   dayBucket = "morning"
	bucketAfternoon dayBucket = "afternoon"
	bucketNight     dayBucket = "night"
)

func bucketOf(hour int) dayBucket {
	switch {
	case hour >= 6 && hour < 12:
		return bucketMorning
	case hour >= 12 && hour < 18:
		return bucketAfternoon
	default:
		return bucketNight
	}
}

// Score computes the compatibility of candidate against reference. Rules are
// cumulative and each triggers independently; the result is clamped to
// [0, 100]. Two postings by the same owner always score 0.
func Score(reference, candidate models.SwapPosting) Result {
	if reference.UserID == candidate.UserID {
		return Result{Posting: candidate, Score: 0, Reasons: []string{"Own posting"}}
	}

	score := 0
	var reasons []string

	// Complementary types: one gives a shift away, the other wants one
	if (reference.SwapType == models.SwapTypeOffer && candidate.SwapType == models.SwapTypeRequest) ||
		(reference.SwapType == models.SwapTypeRequest && candidate.SwapType == models.SwapTypeOffer) {
		score += 30
		reasons = append(reasons, "Complementary types")
	}

	// Date proximity, checked in both directions: a concrete shift on one
	// side against the desired date on the other. Both directions may
	// contribute when data exists on both sides.
	if reference.Shift != nil && candidate.DesiredDate != nil {
		if pts, reason := dateProximity(reference, candidate); pts > 0 {
			score += pts
			reasons = append(reasons, reason)
		}
	}
	if candidate.Shift != nil && reference.DesiredDate != nil {
		if pts, reason := dateProximity(candidate, reference); pts > 0 {
			score += pts
			reasons = append(reasons, reason)
		}
	}

	if refInst, candInst := reference.InstitutionName(), candidate.InstitutionName(); refInst != "" && refInst == candInst {
		score += 20
		reasons = append(reasons, "Same institution")
	}

	if reference.Shift != nil && candidate.Shift != nil {
		if bucketOf(reference.Shift.StartTime.Hour()) == bucketOf(candidate.Shift.StartTime.Hour()) {
			score += 15
			reasons = append(reasons, "Same shift period")
		}
	}

	if reference.SwapType == models.SwapTypeExchange && candidate.SwapType == models.SwapTypeExchange {
		score += 10
		reasons = append(reasons, "Both want to exchange")
	}

	// Crowding penalty: a posting with many interests is likely resolved soon
	if candidate.InterestsCount > 3 {
		score -= 10
		reasons = append(reasons, "Already has many interests")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return Result{Posting: candidate, Score: score, Reasons: reasons}
}

// dateProximity scores shiftSide's shift start against dateSide's desired date.
func dateProximity(shiftSide, dateSide models.SwapPosting) (int, string) {
	diff := dateSide.DesiredDate.Sub(shiftSide.Shift.StartTime)
	days := int(math.Abs(math.Floor(diff.Hours() / 24)))

	switch {
	case days <= 3:
		return 25, fmt.Sprintf("Close date (%d days apart)", days)
	case days <= 7:
		return 15, fmt.Sprintf("Close date (%d days apart)", days)
	default:
		return 0, ""
	}
}

// BestMatches scores every open candidate against reference and returns the
// strongest matches in descending score order, dropping non-positive scores.
// A limit of zero or less defaults to 5.
func BestMatches(reference models.SwapPosting, candidates []models.SwapPosting, limit int) []Result {
	if limit <= 0 {
		limit = 5
	}

	results := make([]Result, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == reference.ID || candidate.Status != models.SwapStatusOpen {
			continue
		}
		if r := Score(reference, candidate); r.Score > 0 {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// AutoMatches returns up to three matches strong enough to surface as a
// notification without the user asking.
func AutoMatches(reference models.SwapPosting, candidates []models.SwapPosting) []Result {
	matches := BestMatches(reference, candidates, 3)
	strong := matches[:0]
	for _, m := range matches {
		if m.Score >= AutoMatchThreshold {
			strong = append(strong, m)
		}
	}
	return strong
}
