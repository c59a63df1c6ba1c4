package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"timed-quiz-service/internal/domain"
)

// questionView is the client shape of a question; it leaves out the correct
// option. Review still exposes it.
type questionView struct {
	Index   int      `json:"index"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type stateView struct {
	State    domain.SessionState `json:"state"`
	Question questionView        `json:"question"`
}

func newStateView(q domain.Question, st domain.SessionState) stateView {
	return stateView{
		State: st,
		Question: questionView{
			Index:   st.CurrentIndex,
			Prompt:  q.Prompt,
			Options: q.Options,
		},
	}
}

type errorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// errorStatus maps domain errors to HTTP status and a stable code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound, "quiz_not_found"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusUnprocessableEntity, "index_out_of_range"
	case errors.Is(err, domain.ErrInvalidBank):
		return http.StatusUnprocessableEntity, "invalid_bank"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func newErrorPayload(err error) errorPayload {
	_, code := errorStatus(err)
	return errorPayload{Message: err.Error(), Code: code}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, _ := errorStatus(err)
	writeJSON(w, status, newErrorPayload(err))
}
