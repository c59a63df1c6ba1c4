package http

import (
	"context"
	"encoding/json"
	"net/http"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// RESTHandler exposes the session use cases as JSON endpoints.
type RESTHandler struct {
	service *app.QuizService
	log     logrus.FieldLogger
}

func NewRESTHandler(service *app.QuizService, log logrus.FieldLogger) *RESTHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RESTHandler{service: service, log: log}
}

// Routes mounts under /api/sessions.
func (h *RESTHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Discard)
		r.Post("/start", h.transition(h.service.Start))
		r.Post("/restart", h.transition(h.service.Restart))
		r.Post("/next", h.transition(h.service.Next))
		r.Post("/previous", h.transition(h.service.Previous))
		r.Post("/answers", h.SelectAnswer)
		r.Post("/goto", h.GoToQuestion)
		r.Get("/score", h.Score)
		r.Get("/review", h.Review)
	})
	return r
}

type createRequest struct {
	QuizID string `json:"quizId"`
	Start  bool   `json:"start"`
}

func (h *RESTHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "quizId required", Code: "bad_request"})
		return
	}
	st, err := h.service.Create(r.Context(), req.QuizID)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Start {
		if st, err = h.service.Start(r.Context(), st.SessionID); err != nil {
			writeError(w, err)
			return
		}
	}
	h.writeState(w, r, http.StatusCreated, st.SessionID)
}

func (h *RESTHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, r, http.StatusOK, chi.URLParam(r, "id"))
}

func (h *RESTHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RESTHandler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	var req selectPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid request body", Code: "bad_request"})
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := h.service.SelectAnswer(r.Context(), id, req.Option); err != nil {
		writeError(w, err)
		return
	}
	h.writeState(w, r, http.StatusOK, id)
}

func (h *RESTHandler) GoToQuestion(w http.ResponseWriter, r *http.Request) {
	var req gotoPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid request body", Code: "bad_request"})
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := h.service.GoToQuestion(r.Context(), id, req.Index); err != nil {
		writeError(w, err)
		return
	}
	h.writeState(w, r, http.StatusOK, id)
}

func (h *RESTHandler) Score(w http.ResponseWriter, r *http.Request) {
	score, err := h.service.Score(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (h *RESTHandler) Review(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.Review(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// transition adapts a no-argument session operation to a handler.
func (h *RESTHandler) transition(op func(context.Context, string) (domain.SessionState, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := op(r.Context(), id); err != nil {
			h.log.WithError(err).WithField("session_id", id).Debug("transition rejected")
			writeError(w, err)
			return
		}
		h.writeState(w, r, http.StatusOK, id)
	}
}

func (h *RESTHandler) writeState(w http.ResponseWriter, r *http.Request, status int, id string) {
	q, st, err := h.service.CurrentQuestion(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, newStateView(q, st))
}
