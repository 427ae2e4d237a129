package domain

// Phase names a stage of the competition. Transitions only move forward:
// waiting → qualification → warmup → warmup-honor → buzzer → finished.
type Phase string

const (
	PhaseWaiting       Phase = "waiting"
	PhaseQualification Phase = "qualification"
	PhaseWarmup        Phase = "warmup"
	PhaseWarmupHonor   Phase = "warmup-honor"
	PhaseBuzzer        Phase = "buzzer"
	PhaseFinished      Phase = "finished"
)

// Question is one item of a fixed question list. CorrectIndex is nil for
// buzzer-type questions, whose correctness the host judges manually.
// Immutable once loaded.
type Question struct {
	ID           string   `json:"id"`
	Prompt       string   `json:"text"`
	Options      []string `json:"options,omitempty"`
	CorrectIndex *int     `json:"correctAnswer"`
	TimeLimitSec int      `json:"timeLimit"`
}

// QuestionSet bundles the three ordered lists a room plays through.
type QuestionSet struct {
	ID            string     `json:"id"`
	Qualification []Question `json:"qualification"`
	Warmup        []Question `json:"warmup"`
	Buzzer        []Question `json:"buzzer"`
}

// RecordedAnswer is one submitted answer kept on the player's progress block.
type RecordedAnswer struct {
	QuestionID   string `json:"questionId"`
	Choice       int    `json:"answer"`
	Correct      bool   `json:"correct"`
	Timestamp    int64  `json:"timestamp,omitempty"`
	TimeTakenSec int    `json:"timeTaken,omitempty"`
}

// Player is one roster entry. Round-scoped progress fields are meaningful
// only while that round is active and are reinitialized when it begins.
type Player struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Score          int    `json:"score"`
	HasUsedStar    bool   `json:"hasUsedStar"`
	StarActivated  bool   `json:"starActivated"`
	Connected      bool   `json:"connected"`
	LastAnswerTime int64  `json:"lastAnswerTime,omitempty"`

	Eliminated   bool  `json:"eliminated,omitempty"`
	EliminatedAt Phase `json:"eliminatedAt,omitempty"`

	QualificationCompleted bool             `json:"qualificationCompleted,omitempty"`
	QualificationIndex     int              `json:"qualificationQuestionIndex,omitempty"`
	QualificationAnswers   []RecordedAnswer `json:"qualificationAnswers,omitempty"`

	WarmupIndex        int              `json:"warmupQuestionIndex,omitempty"`
	WarmupScore        int              `json:"warmupScore,omitempty"`
	WarmupTotalTimeSec int              `json:"warmupTotalTime,omitempty"`
	WarmupCompleted    bool             `json:"warmupCompleted,omitempty"`
	WarmupAnswers      []RecordedAnswer `json:"warmupAnswers,omitempty"`
}

// BuzzerEntry records one buzz press. Append-only per enabled window;
// the first entry is the authoritative winner.
type BuzzerEntry struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Timestamp  int64  `json:"timestamp"`
}

// Snapshot is the full room state pushed to clients after every mutating
// command. Fields belonging to inactive phases are stale by definition and
// must be ignored by readers.
type Snapshot struct {
	RoomCode             string        `json:"roomCode"`
	Phase                Phase         `json:"phase"`
	Players              []Player      `json:"players"`
	CurrentQuestion      *Question     `json:"currentQuestion"`
	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	BuzzerEnabled        bool          `json:"buzzerEnabled"`
	BuzzerQueue          []BuzzerEntry `json:"buzzerQueue"`
	TimeRemaining        int           `json:"timeRemaining"`
	WarmupTimeRemaining  int           `json:"warmupTimeRemaining"`
	GameStarted          bool          `json:"gameStarted"`
	WarmupRanking        []Player      `json:"warmupRanking,omitempty"`
}
