package app

import "github.com/viethoang1520/quiz-competition/internal/domain"

// EventType names a broadcast emitted by a session. The vocabulary matches
// what clients subscribe to on the wire.
type EventType string

const (
	EventGameState          EventType = "game-state"
	EventPlayerJoined       EventType = "player-joined"
	EventPlayerDisconnected EventType = "player-disconnected"
	EventPhaseChanged       EventType = "phase-changed"
	EventQualificationStart EventType = "qualification-start"
	EventWarmupStart        EventType = "warmup-start"
	EventWarmupProgress     EventType = "warmup-player-progress"
	EventWarmupTimerUpdate  EventType = "warmup-timer-update"
	EventWarmupEnded        EventType = "warmup-ended"
	EventQuestionStarted    EventType = "question-started"
	EventTimerUpdate        EventType = "timer-update"
	EventBuzzerPressed      EventType = "buzzer-pressed"
	EventStarActivated      EventType = "star-activated"
	EventAnswerResult       EventType = "answer-result"
)

// Event is one broadcast delivered to every subscriber of a room.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// WarmupStartPayload announces the sequential-quiz round to the room.
type WarmupStartPayload struct {
	Questions []domain.Question `json:"questions"`
	Duration  int               `json:"duration"`
}

// WarmupProgressPayload lets the host scoreboard follow each player.
type WarmupProgressPayload struct {
	PlayerID      string `json:"playerId"`
	PlayerName    string `json:"playerName"`
	QuestionIndex int    `json:"questionIndex"`
	Score         int    `json:"score"`
	Completed     bool   `json:"completed"`
}

// WarmupEndedPayload carries the honor-board ranking, eliminated included.
type WarmupEndedPayload struct {
	Ranking []domain.Player `json:"ranking"`
	Phase   domain.Phase    `json:"phase"`
}

// AnswerJudgedPayload reports a judged answer and its point delta.
type AnswerJudgedPayload struct {
	PlayerID string `json:"playerId"`
	Correct  bool   `json:"correct"`
	Points   int    `json:"points"`
}

// QualificationResult is the point-to-point reply to an exam submission.
// Questions repeats the full exam list as a fallback for a missed batch push.
type QualificationResult struct {
	Correct    bool              `json:"correct"`
	Points     int               `json:"points"`
	TotalScore int               `json:"totalScore"`
	IsComplete bool              `json:"isComplete"`
	Questions  []domain.Question `json:"questions"`
}

// WarmupResult is the point-to-point reply to a sequential-quiz submission.
type WarmupResult struct {
	Correct       bool             `json:"correct"`
	Points        int              `json:"points"`
	TotalScore    int              `json:"totalScore"`
	QuestionIndex int              `json:"questionIndex"`
	IsComplete    bool             `json:"isComplete"`
	NextQuestion  *domain.Question `json:"nextQuestion"`
}
