package domain

import "errors"

var (
	// ErrRoomNotFound is returned when a join targets an unknown room code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrGameAlreadyStarted is returned when a join arrives after the host started the game.
	ErrGameAlreadyStarted = errors.New("game already started")
	// ErrQuestionSetNotFound indicates the configured question content could not be loaded.
	ErrQuestionSetNotFound = errors.New("question set not found")
)
