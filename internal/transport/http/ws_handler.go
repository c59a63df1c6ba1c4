package http

import (
	"context"
	"encoding/json"
	"net/http"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type WSHandler struct {
	service  *app.QuizService
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log logrus.FieldLogger) *WSHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option int `json:"option"`
}

type gotoPayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type resultPayload struct {
	Score  domain.ScoreResult  `json:"score"`
	Review []domain.ReviewItem `json:"review"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
// Clients attach to an existing session with ?sessionId= or create one with ?quizId=;
// sessions created by the connection are discarded when it closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	quizID := r.URL.Query().Get("quizId")
	if sessionID == "" && quizID == "" {
		http.Error(w, "missing sessionId or quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()
	owned := false
	if sessionID == "" {
		st, err := h.service.Create(ctx, quizID)
		if err != nil {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: newErrorPayload(err)})
			return
		}
		sessionID = st.SessionID
		owned = true
	}

	updates, cancel, err := h.service.Subscribe(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: newErrorPayload(err)})
		return
	}
	defer cancel()
	if owned {
		defer func() { _ = h.service.Discard(context.Background(), sessionID) }()
	}
	log := h.log.WithField("session_id", sessionID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer goroutine; gorilla connections do not allow concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		completed := false
		for {
			select {
			case st, ok := <-updates:
				if !ok {
					return
				}
				out := []outboundMessage[any]{{Type: "state", Payload: h.view(ctx, sessionID, st)}}
				if st.IsComplete() && !completed {
					out = append(out, outboundMessage[any]{Type: "result", Payload: h.result(ctx, sessionID)})
				}
				completed = st.IsComplete()
				for _, msg := range out {
					select {
					case send <- msg:
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if reply, ok := h.dispatch(ctx, sessionID, inbound); ok {
			send <- reply
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch runs one inbound command. Transitions are echoed through the
// subscription, so only queries and errors produce a direct reply.
func (h *WSHandler) dispatch(ctx context.Context, sessionID string, msg inboundMessage) (outboundMessage[any], bool) {
	var err error
	switch msg.Type {
	case "start":
		_, err = h.service.Start(ctx, sessionID)
	case "restart":
		_, err = h.service.Restart(ctx, sessionID)
	case "select":
		var p selectPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errorMessage("invalid select payload", "bad_request"), true
		}
		_, err = h.service.SelectAnswer(ctx, sessionID, p.Option)
	case "goto":
		var p gotoPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errorMessage("invalid goto payload", "bad_request"), true
		}
		_, err = h.service.GoToQuestion(ctx, sessionID, p.Index)
	case "next":
		_, err = h.service.Next(ctx, sessionID)
	case "previous":
		_, err = h.service.Previous(ctx, sessionID)
	case "state":
		q, st, err := h.service.CurrentQuestion(ctx, sessionID)
		if err != nil {
			return outboundMessage[any]{Type: "error", Payload: newErrorPayload(err)}, true
		}
		return outboundMessage[any]{Type: "state", Payload: newStateView(q, st)}, true
	case "score":
		score, err := h.service.Score(ctx, sessionID)
		if err != nil {
			return outboundMessage[any]{Type: "error", Payload: newErrorPayload(err)}, true
		}
		return outboundMessage[any]{Type: "score", Payload: score}, true
	case "review":
		review, err := h.service.Review(ctx, sessionID)
		if err != nil {
			return outboundMessage[any]{Type: "error", Payload: newErrorPayload(err)}, true
		}
		return outboundMessage[any]{Type: "review", Payload: review}, true
	default:
		return errorMessage("unsupported message type", "bad_request"), true
	}
	if err != nil {
		return outboundMessage[any]{Type: "error", Payload: newErrorPayload(err)}, true
	}
	return outboundMessage[any]{}, false
}

func (h *WSHandler) view(ctx context.Context, sessionID string, st domain.SessionState) stateView {
	q, err := h.service.QuestionAt(ctx, sessionID, st.CurrentIndex)
	if err != nil {
		return stateView{State: st}
	}
	return newStateView(q, st)
}

func (h *WSHandler) result(ctx context.Context, sessionID string) resultPayload {
	score, _ := h.service.Score(ctx, sessionID)
	review, _ := h.service.Review(ctx, sessionID)
	return resultPayload{Score: score, Review: review}
}

func errorMessage(message, code string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message, Code: code}}
}
