// Package rating implements the Elo update rule shared by the live vote
// path and the replay engine.
//
// CRITICAL: This is the ONLY place the update arithmetic lives. The merge
// coordinator recomputes every rating by replaying the vote history, and
// that is only correct if replay applies bit-for-bit the same function the
// vote path applied when the votes were first recorded. Do not duplicate or
// "improve" this math elsewhere.
package rating

import "math"

const (
	// Initial is the rating every photo starts at, including photos added
	// after other votes already exist.
	Initial = 1200

	// KFactor is the maximum rating swing for a single match.
	KFactor = 32

	// base is the rating difference giving one side 10-to-1 odds.
	base = 400
)

// Expected returns the expected score of a player rated self against an
// opponent rated opponent. Result is in (0, 1); 0.5 for equal ratings.
func Expected(self, opponent int) float64 {
	return 1 / (1 + math.Pow(10, float64(opponent-self)/base))
}

// Update returns the post-match ratings for the winner and loser of a
// pairwise outcome. Ratings are rounded to the nearest integer and floored
// at 0. Pure arithmetic; no error conditions.
func Update(winner, loser int) (newWinner, newLoser int) {
	ew := Expected(winner, loser)
	el := Expected(loser, winner)

	newWinner = int(math.Round(float64(winner) + KFactor*(1-ew)))
	newLoser = int(math.Round(float64(loser) + KFactor*(0-el)))

	if newWinner < 0 {
		newWinner = 0
	}
	if newLoser < 0 {
		newLoser = 0
	}
	return newWinner, newLoser
}
