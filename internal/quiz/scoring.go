// Package quiz implements the quiz progression engine: CORE and generated
// quiz sessions, full-quiz attempt scoring and the unlock gate between
// them.
package quiz

import "github.com/abhisek/gameiq/internal/store"

// PassThreshold is the minimum best score, in percent, that passes a
// session.
const PassThreshold = 70

// Score returns the integer percentage of correct answers, truncated.
// 10 of 15 scores 66, 11 of 15 scores 73.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return correct * 100 / total
}

// Passed reports whether a best score passes.
func Passed(bestScore int) bool {
	return bestScore >= PassThreshold
}

// ApplyAttemptResult returns the session aggregates after recording one
// more attempt with the given score. The input is not modified.
//
// bestScore never decreases and bestAttemptID only moves on a strict
// improvement, so the earliest attempt reaching the best score keeps it.
// The first attempt always sets bestAttemptID, even when it scores 0.
func ApplyAttemptResult(s store.Session, attemptID string, score int) store.Session {
	s.TotalAttempts++
	s.IsCompleted = true
	if score > s.BestScore || s.BestAttemptID == "" {
		s.BestScore = max(s.BestScore, score)
		s.BestAttemptID = attemptID
	}
	return s
}
