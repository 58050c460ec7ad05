// Package converse hosts a full dialogue engine per websocket connection so
// thin clients can drive the conversation without implementing the state
// machine themselves.
package converse

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/routethis/assistant/internal/model/convo"
	"github.com/routethis/assistant/internal/service/ai"
	"github.com/routethis/assistant/internal/service/dialogue"
	diagservice "github.com/routethis/assistant/internal/service/diagnostic"
	"github.com/routethis/assistant/internal/service/oracle"
)

// Handler upgrades connections and runs one engine per socket.
type Handler struct {
	diagSvc  *diagservice.Service
	aiSvc    *ai.Service
	upgrader websocket.Upgrader
}

// New creates the converse handler.
func New(diagSvc *diagservice.Service, aiSvc *ai.Service) *Handler {
	return &Handler{
		diagSvc: diagSvc,
		aiSvc:   aiSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/converse/ws", h.handleConverse)
}

type inboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outboundFrame struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type textPayload struct {
	Text string `json:"text"`
}

type statePayload struct {
	Phase     convo.Phase `json:"phase"`
	SessionID string      `json:"sessionId,omitempty"`
	Loading   bool        `json:"loading"`
}

// session owns one connection's engine and its outbound pump.
type session struct {
	conn     *websocket.Conn
	engine   *dialogue.Service
	outbound chan outboundFrame

	mu       sync.Mutex
	sentMsgs int
}

func (h *Handler) handleConverse(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sess := &session{
		conn:     conn,
		outbound: make(chan outboundFrame, 64),
	}

	// The connection hosts its own oracle in-process; no voice coordinator
	// server-side, speech stays a client concern.
	sess.engine = dialogue.NewService(dialogue.Config{
		Oracle: oracle.NewLocal(h.diagSvc, h.aiSvc),
		Notify: sess.flush,
	})
	sess.engine.SetModelName(h.aiSvc.ModelName())

	done := make(chan struct{})
	go sess.writePump(done)
	defer func() { close(sess.outbound); <-done }()

	// The greeting is sent immediately; a connected client is already past
	// any splash delay.
	sess.engine.Greet(r.Context())

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read failed: %v", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			sess.send("error", map[string]string{"message": "invalid frame"})
			continue
		}

		switch frame.Type {
		case "user_text":
			var payload textPayload
			if err := json.Unmarshal(frame.Data, &payload); err != nil {
				sess.send("error", map[string]string{"message": "invalid user_text payload"})
				continue
			}
			sess.engine.Submit(r.Context(), payload.Text)
		case "reset":
			sess.mu.Lock()
			sess.sentMsgs = 0
			sess.mu.Unlock()
			sess.engine.Reset()
		default:
			sess.send("error", map[string]string{"message": "unknown frame type"})
		}
	}
}

// flush pushes every not-yet-sent timeline message plus the current engine
// state. Invoked by the engine after each state change.
func (s *session) flush() {
	snapshot := s.engine.Snapshot()

	s.mu.Lock()
	pending := snapshot.Messages[min(s.sentMsgs, len(snapshot.Messages)):]
	s.sentMsgs = len(snapshot.Messages)
	s.mu.Unlock()

	for _, msg := range pending {
		s.send("message", msg)
	}
	s.send("state", statePayload{
		Phase:     snapshot.Phase,
		SessionID: snapshot.SessionID,
		Loading:   snapshot.Loading,
	})
}

func (s *session) send(frameType string, data interface{}) {
	frame := outboundFrame{
		Type:      frameType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	select {
	case s.outbound <- frame:
	default:
		log.Printf("[ws] outbound buffer full, dropping %s frame", frameType)
	}
}

// writePump serializes all socket writes.
func (s *session) writePump(done chan<- struct{}) {
	defer close(done)
	for frame := range s.outbound {
		if err := s.conn.WriteJSON(frame); err != nil {
			log.Printf("[ws] write failed: %v", err)
			return
		}
	}
}
