package app

import (
	"testing"

	"github.com/viethoang1520/quiz-competition/internal/domain"
)

func TestAnswerPoints(t *testing.T) {
	cases := []struct {
		name    string
		phase   domain.Phase
		correct bool
		star    bool
		want    int
	}{
		{"qualification correct", domain.PhaseQualification, true, false, 1},
		{"qualification wrong", domain.PhaseQualification, false, false, 0},
		{"warmup correct", domain.PhaseWarmup, true, false, 10},
		{"warmup wrong", domain.PhaseWarmup, false, false, 0},
		{"buzzer correct", domain.PhaseBuzzer, true, false, 20},
		{"buzzer wrong", domain.PhaseBuzzer, false, false, -10},
		{"buzzer correct with star", domain.PhaseBuzzer, true, true, 40},
		{"buzzer wrong with star", domain.PhaseBuzzer, false, true, -20},
		{"waiting phase scores nothing", domain.PhaseWaiting, true, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := answerPoints(tc.phase, tc.correct, tc.star)
			if got != tc.want {
				t.Fatalf("answerPoints(%s, %v, %v) = %d, want %d", tc.phase, tc.correct, tc.star, got, tc.want)
			}
		})
	}
}

func TestRankQualificationTieBreak(t *testing.T) {
	players := []*domain.Player{
		{ID: "a", Score: 5, LastAnswerTime: 300},
		{ID: "b", Score: 8, LastAnswerTime: 500},
		{ID: "c", Score: 5, LastAnswerTime: 100},
	}
	ranked := rankQualification(players)
	wantOrder := []string{"b", "c", "a"}
	for i, id := range wantOrder {
		if ranked[i].ID != id {
			t.Fatalf("rank %d: got %s, want %s", i, ranked[i].ID, id)
		}
	}
	// The input slice order must be untouched.
	if players[0].ID != "a" || players[1].ID != "b" {
		t.Fatalf("rankQualification mutated its input")
	}
}

func TestRankWarmupTieBreak(t *testing.T) {
	players := []*domain.Player{
		{ID: "slow", WarmupScore: 30, WarmupTotalTimeSec: 90},
		{ID: "fast", WarmupScore: 30, WarmupTotalTimeSec: 45},
		{ID: "low", WarmupScore: 10, WarmupTotalTimeSec: 5},
	}
	ranked := rankWarmup(players)
	wantOrder := []string{"fast", "slow", "low"}
	for i, id := range wantOrder {
		if ranked[i].ID != id {
			t.Fatalf("rank %d: got %s, want %s", i, ranked[i].ID, id)
		}
	}
}

func TestFinalLeaderboard(t *testing.T) {
	roster := []domain.Player{
		{ID: "a", Score: 10},
		{ID: "b", Score: 70},
		{ID: "c", Score: 40},
	}
	board := finalLeaderboard(roster)
	wantOrder := []string{"b", "c", "a"}
	for i, id := range wantOrder {
		if board[i].ID != id {
			t.Fatalf("rank %d: got %s, want %s", i, board[i].ID, id)
		}
	}
}
