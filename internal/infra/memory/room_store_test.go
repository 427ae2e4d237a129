package memory

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/viethoang1520/quiz-competition/internal/app"
	"github.com/viethoang1520/quiz-competition/internal/domain"
)

func TestRoomStoreLifecycle(t *testing.T) {
	store := NewRoomStore()
	bank := NewQuestionBank(NewStaticSetLoader(sampleSets()), time.Minute)
	registry := app.NewRegistry(store, bank, "set-1", app.SessionConfig{}, 0, zerolog.Nop())

	if store.Has("NOPE99") {
		t.Fatalf("empty store claims a room")
	}
	if _, ok := store.Get("NOPE99"); ok {
		t.Fatalf("empty store returned a session")
	}

	session, err := registry.CreateRoom(context.Background())
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	code := session.Code()

	if !store.Has(code) {
		t.Fatalf("store does not know code %s", code)
	}
	got, ok := store.Get(code)
	if !ok || got != session {
		t.Fatalf("Get(%s) = %v, %v", code, got, ok)
	}

	// A taken code cannot be claimed again.
	if store.PutIfAbsent(code, session) {
		t.Fatalf("second claim of %s accepted", code)
	}
}

func sampleSets() map[string]domain.QuestionSet {
	one := 1
	return map[string]domain.QuestionSet{
		"set-1": {
			ID: "set-1",
			Qualification: []domain.Question{
				{ID: "q1", Prompt: "What is 2 + 2?", Options: []string{"3", "4"}, CorrectIndex: &one},
			},
			Warmup: []domain.Question{
				{ID: "w1", Prompt: "5 x 5?", Options: []string{"20", "25"}, CorrectIndex: &one},
			},
			Buzzer: []domain.Question{
				{ID: "b1", Prompt: "Largest planet?", Options: []string{"Earth", "Jupiter"}, CorrectIndex: &one, TimeLimitSec: 30},
			},
		},
	}
}
