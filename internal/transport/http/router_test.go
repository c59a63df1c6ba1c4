package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestRouterLogsRequestsThroughLogrus(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	router := NewRouter(RouterConfig{Service: newTestService(), Log: log})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var entry *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "request handled" {
			entry = e
		}
	}
	if entry == nil {
		t.Fatalf("expected request log entry, got %d entries", len(hook.AllEntries()))
	}
	if entry.Data["path"] != "/api/sessions/missing" || entry.Data["status"] != http.StatusNotFound || entry.Data["method"] != http.MethodGet {
		t.Fatalf("unexpected request log fields %+v", entry.Data)
	}
}

func TestStateViewOmitsCorrectOption(t *testing.T) {
	server := httptest.NewServer(NewRouter(RouterConfig{Service: newTestService(), Log: quietLogger()}))
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/sessions", "application/json", strings.NewReader(`{"quizId":"quiz-1","start":true}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.StatusCode != http.StatusCreated || strings.Contains(string(body), "correctOption") {
		t.Fatalf("expected 201 without correctOption, got %d %s", resp.StatusCode, body)
	}
}
