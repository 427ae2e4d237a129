package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/viethoang1520/quiz-competition/internal/domain"
)

// RoomStore abstracts where live sessions are kept (in-memory, Redis-marked, ...).
// PutIfAbsent must claim the code atomically so two rooms can never share one.
type RoomStore interface {
	PutIfAbsent(code string, s *Session) bool
	Get(code string) (*Session, bool)
	Has(code string) bool
}

// QuestionBank loads the question set a new room copies.
type QuestionBank interface {
	QuestionSet(ctx context.Context, id string) (domain.QuestionSet, error)
}

// Codes avoid 0/O and 1/I, which read ambiguously on a projected screen.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const defaultCodeLength = 6

// Registry maps short room codes to sessions. It owns code generation and the
// join path; everything after join goes through the session directly.
type Registry struct {
	store   RoomStore
	bank    QuestionBank
	setID   string
	cfg     SessionConfig
	codeLen int
	log     zerolog.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewRegistry(store RoomStore, bank QuestionBank, setID string, cfg SessionConfig, codeLen int, log zerolog.Logger) *Registry {
	if codeLen <= 0 {
		codeLen = defaultCodeLength
	}
	return &Registry{
		store:   store,
		bank:    bank,
		setID:   setID,
		cfg:     cfg,
		codeLen: codeLen,
		log:     log.With().Str("component", "registry").Logger(),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateRoom generates a unique code and registers a fresh waiting-phase
// session with its own copy of the question lists. The caller becomes the
// room's host.
func (r *Registry) CreateRoom(ctx context.Context) (*Session, error) {
	set, err := r.bank.QuestionSet(ctx, r.setID)
	if err != nil {
		return nil, fmt.Errorf("load question set: %w", err)
	}

	for {
		code := r.randomCode()
		session := newSession(code, set, r.cfg, r.log)
		if !r.store.PutIfAbsent(code, session) {
			continue
		}
		r.log.Info().Str("room", code).Msg("room created")
		return session, nil
	}
}

// JoinRoom appends a player to the room's roster and returns the new player
// record. Fails with ErrRoomNotFound or ErrGameAlreadyStarted.
func (r *Registry) JoinRoom(code, displayName string) (domain.Player, *Session, error) {
	session, ok := r.store.Get(code)
	if !ok {
		return domain.Player{}, nil, domain.ErrRoomNotFound
	}
	player, err := session.join(displayName)
	if err != nil {
		return domain.Player{}, nil, err
	}
	return player, session, nil
}

// Room resolves a code to its live session.
func (r *Registry) Room(code string) (*Session, bool) {
	return r.store.Get(code)
}

func (r *Registry) randomCode() string {
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	buf := make([]byte, r.codeLen)
	for i := range buf {
		buf[i] = codeAlphabet[r.rnd.Intn(len(codeAlphabet))]
	}
	return string(buf)
}
