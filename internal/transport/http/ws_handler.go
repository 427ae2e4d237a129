package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/viethoang1520/quiz-competition/internal/app"
)

// WSHandler upgrades connections and wires them into the room registry and
// session commands. One connection is bound to at most one room: the first
// create-room or join-room command fixes its actor tag, and every later
// command is authorized against that tag. Commands that fail authorization
// are dropped without a reply.
type WSHandler struct {
	registry *app.Registry
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(registry *app.Registry, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log.With().Str("component", "ws").Logger(),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type joinPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type roomCreatedPayload struct {
	RoomCode string `json:"roomCode"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type joinResultPayload struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	RoomCode string `json:"roomCode,omitempty"`
	PlayerID string `json:"playerId,omitempty"`
}

type markAnswerPayload struct {
	PlayerID string `json:"playerId"`
	Correct  bool   `json:"correct"`
}

type starPayload struct {
	PlayerID string `json:"playerId"`
}

// ServeWS runs the command/broadcast loop for one connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage, 64)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()

	var (
		actor     app.Actor
		session   *app.Session
		cancelSub func()
	)

	subscribe := func(s *app.Session) {
		session = s
		updates, cancel := s.Subscribe()
		cancelSub = cancel
		go func() {
			defer close(updatesDone)
			for {
				select {
				case ev, ok := <-updates:
					if !ok {
						return
					}
					select {
					case send <- outboundMessage{Type: string(ev.Type), Payload: ev.Payload}:
					case <-closeSignals:
						return
					}
				case <-closeSignals:
					return
				}
			}
		}()
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		// The first accepted command binds the actor; until then only
		// create-room and join-room mean anything.
		if session == nil {
			switch inbound.Type {
			case "create-room":
				s, err := h.registry.CreateRoom(r.Context())
				if err != nil {
					h.log.Error().Err(err).Msg("create room failed")
					send <- outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}}
					continue
				}
				actor = app.Actor{RoomCode: s.Code(), Role: app.RoleHost}
				subscribe(s)
				send <- outboundMessage{Type: "room-created", Payload: roomCreatedPayload{RoomCode: s.Code()}}
			case "join-room":
				var payload joinPayload
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					continue
				}
				player, s, err := h.registry.JoinRoom(payload.RoomCode, payload.PlayerName)
				if err != nil {
					// Join failures are the only errors surfaced to clients.
					send <- outboundMessage{Type: "join-result", Payload: joinResultPayload{
						Success: false,
						Message: err.Error(),
					}}
					continue
				}
				actor = app.Actor{RoomCode: payload.RoomCode, Role: app.RolePlayer, PlayerID: player.ID}
				subscribe(s)
				send <- outboundMessage{Type: "join-result", Payload: joinResultPayload{
					Success:  true,
					RoomCode: payload.RoomCode,
					PlayerID: player.ID,
				}}
			}
			continue
		}

		h.dispatch(session, actor, inbound, send)
	}

	if session != nil && actor.Role == app.RolePlayer {
		session.MarkDisconnected(actor.PlayerID)
	}
	if cancelSub != nil {
		cancelSub()
	}
	close(closeSignals)
	if session != nil {
		<-updatesDone
	}
	close(send)
	<-writerDone
}

// dispatch routes one bound-connection command into the session. Replies that
// go only to the submitting connection are pushed on send; everything else
// reaches the client through the room subscription.
func (h *WSHandler) dispatch(session *app.Session, actor app.Actor, inbound inboundMessage, send chan<- outboundMessage) {
	switch inbound.Type {
	case "start-game":
		session.Start(actor)
	case "next-question":
		session.Advance(actor)
	case "enable-buzzer":
		session.EnableBuzzer(actor)
	case "disable-buzzer":
		session.DisableBuzzer(actor)
	case "reset-buzzer":
		session.ResetBuzzer(actor)
	case "mark-answer":
		var payload markAnswerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return
		}
		session.JudgeAnswer(actor, payload.PlayerID, payload.Correct)
	case "activate-player-star":
		var payload starPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return
		}
		session.ActivateStarFor(actor, payload.PlayerID)
	case "submit-qualification-answer":
		var sub app.QualificationSubmission
		if err := json.Unmarshal(inbound.Payload, &sub); err != nil {
			return
		}
		if result, ok := session.SubmitQualificationAnswer(actor, sub); ok {
			send <- outboundMessage{Type: "qualification-result", Payload: result}
		}
	case "submit-warmup-answer":
		var sub app.WarmupSubmission
		if err := json.Unmarshal(inbound.Payload, &sub); err != nil {
			return
		}
		if result, ok := session.SubmitWarmupAnswer(actor, sub); ok {
			send <- outboundMessage{Type: "warmup-answer-result", Payload: result}
		}
	case "press-buzzer":
		session.PressBuzzer(actor)
	case "activate-star":
		session.ActivateStar(actor)
	default:
		h.log.Debug().Str("type", inbound.Type).Msg("unknown command dropped")
	}
}
