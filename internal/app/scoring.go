package app

import (
	"sort"

	"github.com/viethoang1520/quiz-competition/internal/domain"
)

// answerPoints maps (phase, correctness, star) to a point delta at the moment
// an answer is judged. The star doubles the delta, negative case included,
// and only applies in the buzzer round.
func answerPoints(phase domain.Phase, correct, starActive bool) int {
	switch phase {
	case domain.PhaseQualification:
		if correct {
			return 1
		}
		return 0
	case domain.PhaseWarmup:
		if correct {
			return 10
		}
		return 0
	case domain.PhaseBuzzer:
		points := -10
		if correct {
			points = 20
		}
		if starActive {
			points *= 2
		}
		return points
	default:
		return 0
	}
}

// rankQualification orders players by exam score descending, ties broken by
// the earlier last answer time.
func rankQualification(players []*domain.Player) []*domain.Player {
	ranked := make([]*domain.Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].LastAnswerTime < ranked[j].LastAnswerTime
	})
	return ranked
}

// rankWarmup orders players by round score descending, ties broken by the
// lower accumulated answer time.
func rankWarmup(players []*domain.Player) []*domain.Player {
	ranked := make([]*domain.Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].WarmupScore != ranked[j].WarmupScore {
			return ranked[i].WarmupScore > ranked[j].WarmupScore
		}
		return ranked[i].WarmupTotalTimeSec < ranked[j].WarmupTotalTimeSec
	})
	return ranked
}

// finalLeaderboard sorts a roster copy by total score descending for the
// finished-phase display.
func finalLeaderboard(players []domain.Player) []domain.Player {
	board := make([]domain.Player, len(players))
	copy(board, players)
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})
	return board
}
