package app

import (
	"testing"

	"github.com/viethoang1520/quiz-competition/internal/domain"
)

// TestFullGameScript drives four players through every phase and checks the
// final leaderboard against hand-computed scores.
func TestFullGameScript(t *testing.T) {
	s, ids := newTestSession(t, testSet(2, 2, 2), SessionConfig{
		QualificationAdvance: 3,
		WarmupAdvance:        2,
	}, 4)
	s.Start(host(s))

	// Exam: p0 and p1 score 2, p2 scores 1, p3 never answers. The cut of
	// three sends p3 out.
	submitQual := func(id string, index, choice int, ts int64) {
		t.Helper()
		if _, ok := s.SubmitQualificationAnswer(asPlayer(s, id), QualificationSubmission{
			QuestionIndex: index,
			Choice:        choice,
			Timestamp:     ts,
		}); !ok {
			t.Fatalf("qualification answer dropped for %s", id)
		}
	}
	submitQual(ids[0], 0, 0, 100)
	submitQual(ids[0], 1, 0, 200)
	submitQual(ids[1], 0, 0, 300)
	submitQual(ids[1], 1, 0, 400)
	submitQual(ids[2], 0, 0, 500)
	submitQual(ids[2], 1, 1, 600)

	s.Advance(host(s))
	if !findSnapshotPlayer(t, s, ids[3]).Eliminated {
		t.Fatalf("silent player survived the qualification cut")
	}
	if findSnapshotPlayer(t, s, ids[2]).Eliminated {
		t.Fatalf("third place went out on a cut of three")
	}

	// Warmup: p0 sweeps, p1 gets one, p2 misses both. The cut of two sends
	// p2 out with the round scores banked first.
	submitWarmup := func(id string, index, choice, taken int) {
		t.Helper()
		if _, ok := s.SubmitWarmupAnswer(asPlayer(s, id), WarmupSubmission{
			QuestionIndex: index,
			Choice:        choice,
			TimeTakenSec:  taken,
		}); !ok {
			t.Fatalf("warmup answer dropped for %s", id)
		}
	}
	submitWarmup(ids[0], 0, 0, 2)
	submitWarmup(ids[0], 1, 0, 2)
	submitWarmup(ids[1], 0, 0, 5)
	submitWarmup(ids[1], 1, 1, 5)
	submitWarmup(ids[2], 0, 1, 3)
	submitWarmup(ids[2], 1, 1, 3)

	if got := s.Phase(); got != domain.PhaseWarmupHonor {
		t.Fatalf("phase = %s, want warmup-honor", got)
	}
	if got := playerScore(t, s, ids[0]); got != 20 {
		t.Fatalf("p0 score = %d, want 20", got)
	}
	if got := playerScore(t, s, ids[1]); got != 10 {
		t.Fatalf("p1 score = %d, want 10", got)
	}
	if !findSnapshotPlayer(t, s, ids[2]).Eliminated {
		t.Fatalf("p2 survived the warmup cut")
	}

	// Buzzer question one: p1 wins the race, doubles it with the star.
	s.Advance(host(s))
	s.EnableBuzzer(host(s))
	s.PressBuzzer(asPlayer(s, ids[1]))
	s.ActivateStar(asPlayer(s, ids[1]))
	s.JudgeAnswer(host(s), ids[1], true)
	if got := playerScore(t, s, ids[1]); got != 50 {
		t.Fatalf("p1 score = %d, want 50", got)
	}

	// Buzzer question two: p0 answers plain.
	s.Advance(host(s))
	s.EnableBuzzer(host(s))
	s.PressBuzzer(asPlayer(s, ids[0]))
	s.JudgeAnswer(host(s), ids[0], true)
	if got := playerScore(t, s, ids[0]); got != 40 {
		t.Fatalf("p0 score = %d, want 40", got)
	}

	s.Advance(host(s))
	if got := s.Phase(); got != domain.PhaseFinished {
		t.Fatalf("phase = %s, want finished", got)
	}

	board := s.FinalLeaderboard()
	if len(board) != 4 {
		t.Fatalf("leaderboard holds %d entries, want 4", len(board))
	}
	if board[0].ID != ids[1] || board[0].Score != 50 {
		t.Fatalf("leader = %s/%d, want %s/50", board[0].ID, board[0].Score, ids[1])
	}
	if board[1].ID != ids[0] || board[1].Score != 40 {
		t.Fatalf("runner-up = %s/%d, want %s/40", board[1].ID, board[1].Score, ids[0])
	}
}
