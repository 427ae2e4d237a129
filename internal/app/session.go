package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/viethoang1520/quiz-competition/internal/domain"
)

// Role tags a connection as the room's moderator or as a player.
type Role string

const (
	RoleHost   Role = "host"
	RolePlayer Role = "player"
)

// Actor is the authorization context bound to a connection when it creates or
// joins a room. Every command carries it; a command whose actor does not match
// the session or the required role is silently dropped.
type Actor struct {
	RoomCode string
	Role     Role
	PlayerID string
}

// SessionConfig holds the per-room gameplay tunables.
type SessionConfig struct {
	// WarmupDurationSec is the fixed sequential-quiz round length.
	WarmupDurationSec int
	// QualificationAdvance players survive the qualification cut.
	QualificationAdvance int
	// WarmupAdvance players survive the warmup cut.
	WarmupAdvance int
	// TickInterval is the countdown resolution; one second in production,
	// shortened in tests.
	TickInterval time.Duration
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.WarmupDurationSec <= 0 {
		c.WarmupDurationSec = 180
	}
	if c.QualificationAdvance <= 0 {
		c.QualificationAdvance = 8
	}
	if c.WarmupAdvance <= 0 {
		c.WarmupAdvance = 4
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	return c
}

// Session is the authoritative state for one room. Every mutation funnels
// through its mutex; timer ticks reacquire it, so commands and ticks for the
// same room never interleave their read-modify-write.
type Session struct {
	code string
	cfg  SessionConfig
	log  zerolog.Logger
	now  func() time.Time

	mu          sync.Mutex
	phase       domain.Phase
	gameStarted bool
	players     []*domain.Player
	questions   domain.QuestionSet

	currentQuestion *domain.Question
	currentIndex    int
	timeRemaining   int
	buzzerEnabled   bool
	buzzerQueue     []domain.BuzzerEntry

	warmupTimeRemaining int
	warmupRanking       []domain.Player

	sharedTimer *countdown
	warmupTimer *countdown

	subscribers map[chan Event]struct{}
}

func newSession(code string, set domain.QuestionSet, cfg SessionConfig, log zerolog.Logger) *Session {
	return newSessionWithClock(code, set, cfg, log, time.Now)
}

func newSessionWithClock(code string, set domain.QuestionSet, cfg SessionConfig, log zerolog.Logger, now func() time.Time) *Session {
	return &Session{
		code: code,
		cfg:  cfg.withDefaults(),
		log:  log.With().Str("room", code).Logger(),
		now:  now,
		// Lists are copied at creation time so later edits to the shared
		// bank never affect an in-flight room.
		questions: domain.QuestionSet{
			ID:            set.ID,
			Qualification: append([]domain.Question(nil), set.Qualification...),
			Warmup:        append([]domain.Question(nil), set.Warmup...),
			Buzzer:        append([]domain.Question(nil), set.Buzzer...),
		},
		phase:       domain.PhaseWaiting,
		subscribers: make(map[chan Event]struct{}),
	}
}

// Code returns the room code this session is registered under.
func (s *Session) Code() string { return s.code }

// Phase returns the current phase.
func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Snapshot returns a deep copy of the room state.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// FinalLeaderboard returns the roster sorted by total score descending.
func (s *Session) FinalLeaderboard() []domain.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	roster := make([]domain.Player, 0, len(s.players))
	for _, p := range s.players {
		roster = append(roster, clonePlayer(p))
	}
	return finalLeaderboard(roster)
}

// Subscribe registers a listener for room events. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := Event{Type: EventGameState, Payload: s.snapshotLocked()}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// join appends a new player to the roster. Called by the registry.
func (s *Session) join(name string) (domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gameStarted {
		return domain.Player{}, domain.ErrGameAlreadyStarted
	}

	p := &domain.Player{
		ID:        uuid.NewString(),
		Name:      name,
		Connected: true,
	}
	s.players = append(s.players, p)
	s.log.Info().Str("player", name).Msg("player joined")

	s.publishStateLocked()
	s.publishLocked(Event{Type: EventPlayerJoined, Payload: clonePlayer(p)})
	return clonePlayer(p), nil
}

// Start moves the room from waiting into the qualification exam. Each player
// proceeds independently from here; there is no shared question or timer.
func (s *Session) Start(a Actor) {
	if !s.fromHost(a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseWaiting {
		return
	}
	s.gameStarted = true
	s.phase = domain.PhaseQualification
	s.currentQuestion = nil
	s.currentIndex = 0
	for _, p := range s.players {
		p.QualificationCompleted = false
		p.QualificationIndex = 0
		p.QualificationAnswers = nil
	}
	s.log.Info().Int("players", len(s.players)).Msg("game started")

	s.publishStateLocked()
	s.publishLocked(Event{Type: EventPhaseChanged, Payload: domain.PhaseQualification})
	s.publishLocked(Event{Type: EventQualificationStart, Payload: s.questions.Qualification})
}

// QualificationSubmission is one exam answer from a player.
type QualificationSubmission struct {
	QuestionIndex int   `json:"questionIndex"`
	Choice        int   `json:"answer"`
	Timestamp     int64 `json:"timestamp"`
}

// SubmitQualificationAnswer validates and scores one exam answer. The second
// return is false when the command was dropped.
func (s *Session) SubmitQualificationAnswer(a Actor, sub QualificationSubmission) (QualificationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseQualification {
		return QualificationResult{}, false
	}
	p := s.playerLocked(a)
	if p == nil || p.QualificationCompleted {
		return QualificationResult{}, false
	}
	if sub.QuestionIndex < 0 || sub.QuestionIndex >= len(s.questions.Qualification) {
		return QualificationResult{}, false
	}
	q := s.questions.Qualification[sub.QuestionIndex]

	correct := q.CorrectIndex != nil && *q.CorrectIndex == sub.Choice
	points := answerPoints(domain.PhaseQualification, correct, false)
	p.Score += points
	p.LastAnswerTime = sub.Timestamp
	p.QualificationAnswers = append(p.QualificationAnswers, domain.RecordedAnswer{
		QuestionID: q.ID,
		Choice:     sub.Choice,
		Correct:    correct,
		Timestamp:  sub.Timestamp,
	})
	p.QualificationIndex = sub.QuestionIndex + 1

	isComplete := sub.QuestionIndex+1 >= len(s.questions.Qualification)
	if isComplete {
		p.QualificationCompleted = true
	}

	s.publishStateLocked()
	return QualificationResult{
		Correct:    correct,
		Points:     points,
		TotalScore: p.Score,
		IsComplete: isComplete,
		Questions:  s.questions.Qualification,
	}, true
}

// WarmupSubmission is one sequential-quiz answer from a player.
type WarmupSubmission struct {
	QuestionIndex int `json:"questionIndex"`
	Choice        int `json:"answer"`
	TimeTakenSec  int `json:"timeTaken"`
}

// SubmitWarmupAnswer validates and scores one sequential-quiz answer. Strictly
// in-order: a submission whose index is not the player's expected next index
// is dropped without state change.
func (s *Session) SubmitWarmupAnswer(a Actor, sub WarmupSubmission) (WarmupResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseWarmup {
		return WarmupResult{}, false
	}
	p := s.playerLocked(a)
	if p == nil || p.WarmupCompleted || p.Eliminated {
		return WarmupResult{}, false
	}
	if sub.QuestionIndex < 0 || sub.QuestionIndex >= len(s.questions.Warmup) {
		return WarmupResult{}, false
	}
	if sub.QuestionIndex != p.WarmupIndex {
		return WarmupResult{}, false
	}
	q := s.questions.Warmup[sub.QuestionIndex]

	correct := q.CorrectIndex != nil && *q.CorrectIndex == sub.Choice
	points := answerPoints(domain.PhaseWarmup, correct, false)
	p.WarmupScore += points
	p.WarmupTotalTimeSec += sub.TimeTakenSec
	p.WarmupAnswers = append(p.WarmupAnswers, domain.RecordedAnswer{
		QuestionID:   q.ID,
		Choice:       sub.Choice,
		Correct:      correct,
		TimeTakenSec: sub.TimeTakenSec,
	})
	p.WarmupIndex = sub.QuestionIndex + 1

	isComplete := sub.QuestionIndex+1 >= len(s.questions.Warmup)
	if isComplete {
		p.WarmupCompleted = true
	}

	var next *domain.Question
	if !isComplete {
		q := s.questions.Warmup[p.WarmupIndex]
		next = &q
	}
	result := WarmupResult{
		Correct:       correct,
		Points:        points,
		TotalScore:    p.WarmupScore,
		QuestionIndex: p.WarmupIndex,
		IsComplete:    isComplete,
		NextQuestion:  next,
	}

	s.publishLocked(Event{Type: EventWarmupProgress, Payload: WarmupProgressPayload{
		PlayerID:      p.ID,
		PlayerName:    p.Name,
		QuestionIndex: p.WarmupIndex,
		Score:         p.WarmupScore,
		Completed:     p.WarmupCompleted,
	}})

	if s.allActiveCompletedLocked() {
		s.endWarmupRoundLocked()
	}
	return result, true
}

// Advance is the host's phase-sensitive "next" control: it ends the
// qualification round, leaves the honor board for the buzzer round, or moves
// to the next buzzer question (and eventually to finished).
func (s *Session) Advance(a Actor) {
	if !s.fromHost(a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case domain.PhaseQualification:
		s.endQualificationLocked()
	case domain.PhaseWarmupHonor:
		s.startBuzzerLocked()
	case domain.PhaseBuzzer:
		s.advanceBuzzerLocked()
	}
}

func (s *Session) endQualificationLocked() {
	ranked := rankQualification(s.players)
	for i, p := range ranked {
		if i >= s.cfg.QualificationAdvance {
			p.Eliminated = true
			p.EliminatedAt = domain.PhaseQualification
		}
	}
	// The exam score was ranking-only; the next rounds start from zero.
	for _, p := range s.players {
		p.Score = 0
	}

	s.phase = domain.PhaseWarmup
	s.currentIndex = 0
	s.currentQuestion = nil
	for _, p := range s.players {
		if p.Eliminated {
			continue
		}
		p.WarmupIndex = 0
		p.WarmupScore = 0
		p.WarmupTotalTimeSec = 0
		p.WarmupCompleted = false
		p.WarmupAnswers = nil
	}
	s.warmupTimeRemaining = s.cfg.WarmupDurationSec
	s.log.Info().Int("advancing", s.cfg.QualificationAdvance).Msg("qualification ended")

	s.publishStateLocked()
	s.publishLocked(Event{Type: EventPhaseChanged, Payload: domain.PhaseWarmup})
	s.publishLocked(Event{Type: EventWarmupStart, Payload: WarmupStartPayload{
		Questions: s.questions.Warmup,
		Duration:  s.cfg.WarmupDurationSec,
	}})
	s.startWarmupCountdownLocked()
}

func (s *Session) startWarmupCountdownLocked() {
	if s.warmupTimer != nil {
		s.warmupTimer.Stop()
	}
	s.warmupTimer = startCountdown(s.cfg.TickInterval, s.warmupTick)
}

func (s *Session) warmupTick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A tick that fires after the round moved on must not mutate anything.
	if s.phase != domain.PhaseWarmup {
		return false
	}
	s.warmupTimeRemaining--
	s.publishLocked(Event{Type: EventWarmupTimerUpdate, Payload: s.warmupTimeRemaining})

	if s.warmupTimeRemaining <= 0 {
		s.endWarmupRoundLocked()
		return false
	}
	return true
}

func (s *Session) allActiveCompletedLocked() bool {
	active := 0
	for _, p := range s.players {
		if p.Eliminated {
			continue
		}
		active++
		if !p.WarmupCompleted {
			return false
		}
	}
	return active > 0
}

// endWarmupRoundLocked runs the end-of-round procedure exactly once per round,
// whether triggered by the countdown or by every active player finishing.
func (s *Session) endWarmupRoundLocked() {
	if s.phase != domain.PhaseWarmup {
		return
	}
	if s.warmupTimer != nil {
		s.warmupTimer.Stop()
	}

	active := make([]*domain.Player, 0, len(s.players))
	for _, p := range s.players {
		if !p.Eliminated {
			active = append(active, p)
		}
	}
	ranked := rankWarmup(active)

	for _, p := range active {
		p.Score += p.WarmupScore
	}
	for i, p := range ranked {
		if i >= s.cfg.WarmupAdvance {
			p.Eliminated = true
			p.EliminatedAt = domain.PhaseWarmup
		}
	}

	s.phase = domain.PhaseWarmupHonor
	s.currentQuestion = nil
	s.warmupRanking = make([]domain.Player, 0, len(ranked))
	for _, p := range ranked {
		s.warmupRanking = append(s.warmupRanking, clonePlayer(p))
	}
	s.log.Info().Int("ranked", len(ranked)).Msg("warmup round ended")

	s.publishStateLocked()
	s.publishLocked(Event{Type: EventPhaseChanged, Payload: domain.PhaseWarmupHonor})
	s.publishLocked(Event{Type: EventWarmupEnded, Payload: WarmupEndedPayload{
		Ranking: s.warmupRanking,
		Phase:   domain.PhaseWarmupHonor,
	}})
}

func (s *Session) startBuzzerLocked() {
	if len(s.questions.Buzzer) == 0 {
		s.finishLocked()
		return
	}
	s.phase = domain.PhaseBuzzer
	s.currentIndex = 0
	s.loadBuzzerQuestionLocked()

	s.publishStateLocked()
	s.publishLocked(Event{Type: EventPhaseChanged, Payload: domain.PhaseBuzzer})
	s.publishLocked(Event{Type: EventQuestionStarted, Payload: s.currentQuestion})
	s.startSharedCountdownLocked()
}

func (s *Session) advanceBuzzerLocked() {
	s.currentIndex++
	if s.currentIndex >= len(s.questions.Buzzer) {
		s.finishLocked()
		return
	}
	s.loadBuzzerQuestionLocked()

	s.publishStateLocked()
	s.publishLocked(Event{Type: EventQuestionStarted, Payload: s.currentQuestion})
	s.startSharedCountdownLocked()
}

func (s *Session) loadBuzzerQuestionLocked() {
	q := s.questions.Buzzer[s.currentIndex]
	s.currentQuestion = &q
	s.timeRemaining = q.TimeLimitSec
	s.buzzerEnabled = false
	s.buzzerQueue = nil
}

func (s *Session) finishLocked() {
	if s.sharedTimer != nil {
		s.sharedTimer.Stop()
	}
	s.phase = domain.PhaseFinished
	s.currentQuestion = nil
	s.timeRemaining = 0
	s.buzzerEnabled = false
	s.log.Info().Msg("game finished")

	s.publishStateLocked()
	s.publishLocked(Event{Type: EventPhaseChanged, Payload: domain.PhaseFinished})
}

func (s *Session) startSharedCountdownLocked() {
	// Only one shared countdown may tick per room.
	if s.sharedTimer != nil {
		s.sharedTimer.Stop()
	}
	if s.currentQuestion == nil {
		return
	}
	s.sharedTimer = startCountdown(s.cfg.TickInterval, s.sharedTick)
}

func (s *Session) sharedTick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseBuzzer || s.currentQuestion == nil {
		return false
	}
	s.timeRemaining--
	s.publishLocked(Event{Type: EventTimerUpdate, Payload: s.timeRemaining})

	// Running out of time neither scores nor advances; the host stays in
	// control of the question.
	return s.timeRemaining > 0
}

// EnableBuzzer opens a fresh acceptance window.
func (s *Session) EnableBuzzer(a Actor) {
	if !s.fromHost(a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseBuzzer {
		return
	}
	s.buzzerEnabled = true
	s.buzzerQueue = nil
	s.publishStateLocked()
}

// DisableBuzzer closes the acceptance window.
func (s *Session) DisableBuzzer(a Actor) {
	if !s.fromHost(a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseBuzzer {
		return
	}
	s.buzzerEnabled = false
	s.publishStateLocked()
}

// ResetBuzzer clears the queue, re-opens acceptance, and clears every
// player's transient star flag for the next attempt at the same question.
func (s *Session) ResetBuzzer(a Actor) {
	if !s.fromHost(a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseBuzzer {
		return
	}
	s.buzzerQueue = nil
	s.buzzerEnabled = true
	for _, p := range s.players {
		p.StarActivated = false
	}
	s.publishStateLocked()
}

// PressBuzzer appends a timestamped entry and immediately closes the window:
// the first press wins, later presses in the same window are rejected.
func (s *Session) PressBuzzer(a Actor) {
	if a.Role != RolePlayer || a.RoomCode != s.code {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.buzzerEnabled {
		return
	}
	p := s.playerLocked(a)
	if p == nil || p.Eliminated {
		return
	}

	entry := domain.BuzzerEntry{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Timestamp:  s.now().UnixMilli(),
	}
	s.buzzerQueue = append(s.buzzerQueue, entry)
	s.buzzerEnabled = false

	s.publishStateLocked()
	s.publishLocked(Event{Type: EventBuzzerPressed, Payload: entry})
}

// JudgeAnswer applies the host's correct/incorrect verdict to a player.
// In the buzzer round an activated star doubles the delta and is consumed in
// the same update.
func (s *Session) JudgeAnswer(a Actor, playerID string, correct bool) {
	if !s.fromHost(a) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseWarmup && s.phase != domain.PhaseBuzzer {
		return
	}
	p := s.findPlayerLocked(playerID)
	if p == nil {
		return
	}

	starActive := s.phase == domain.PhaseBuzzer && p.StarActivated
	points := answerPoints(s.phase, correct, starActive)
	if starActive {
		p.HasUsedStar = true
		p.StarActivated = false
	}
	p.Score += points

	s.publishStateLocked()
	s.publishLocked(Event{Type: EventAnswerResult, Payload: AnswerJudgedPayload{
		PlayerID: p.ID,
		Correct:  correct,
		Points:   points,
	}})
}

// ActivateStar lets a player arm their lifetime one-shot bonus.
func (s *Session) ActivateStar(a Actor) {
	if a.Role != RolePlayer || a.RoomCode != s.code {
		return
	}
	s.activateStar(a.PlayerID)
}

// ActivateStarFor is the host-side equivalent of ActivateStar.
func (s *Session) ActivateStarFor(a Actor, playerID string) {
	if !s.fromHost(a) {
		return
	}
	s.activateStar(playerID)
}

func (s *Session) activateStar(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseBuzzer {
		return
	}
	p := s.findPlayerLocked(playerID)
	if p == nil || p.HasUsedStar {
		return
	}
	p.StarActivated = true

	s.publishStateLocked()
	s.publishLocked(Event{Type: EventStarActivated, Payload: playerID})
}

// MarkDisconnected flags a player's connection as gone. The roster never
// shrinks; the player may still appear on rankings.
func (s *Session) MarkDisconnected(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findPlayerLocked(playerID)
	if p == nil {
		return
	}
	p.Connected = false

	s.publishStateLocked()
	s.publishLocked(Event{Type: EventPlayerDisconnected, Payload: playerID})
}

func (s *Session) fromHost(a Actor) bool {
	return a.Role == RoleHost && a.RoomCode == s.code
}

func (s *Session) playerLocked(a Actor) *domain.Player {
	if a.Role != RolePlayer || a.RoomCode != s.code {
		return nil
	}
	return s.findPlayerLocked(a.PlayerID)
}

func (s *Session) findPlayerLocked(playerID string) *domain.Player {
	for _, p := range s.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (s *Session) snapshotLocked() domain.Snapshot {
	players := make([]domain.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, clonePlayer(p))
	}
	var question *domain.Question
	if s.currentQuestion != nil {
		q := *s.currentQuestion
		question = &q
	}
	return domain.Snapshot{
		RoomCode:             s.code,
		Phase:                s.phase,
		Players:              players,
		CurrentQuestion:      question,
		CurrentQuestionIndex: s.currentIndex,
		BuzzerEnabled:        s.buzzerEnabled,
		BuzzerQueue:          append([]domain.BuzzerEntry(nil), s.buzzerQueue...),
		TimeRemaining:        s.timeRemaining,
		WarmupTimeRemaining:  s.warmupTimeRemaining,
		GameStarted:          s.gameStarted,
		WarmupRanking:        append([]domain.Player(nil), s.warmupRanking...),
	}
}

func (s *Session) publishStateLocked() {
	s.publishLocked(Event{Type: EventGameState, Payload: s.snapshotLocked()})
}

func (s *Session) publishLocked(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest update so a slow client never blocks the room.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func clonePlayer(p *domain.Player) domain.Player {
	c := *p
	c.QualificationAnswers = append([]domain.RecordedAnswer(nil), p.QualificationAnswers...)
	c.WarmupAnswers = append([]domain.RecordedAnswer(nil), p.WarmupAnswers...)
	return c
}
