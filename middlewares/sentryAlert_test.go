package middlewares

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"redirect-analytics/models"
)

func serveRecover(t *testing.T, verbose bool, h http.HandlerFunc) (*httptest.ResponseRecorder, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	chain := Chain(h, RequestIDMiddleware, AccessLogMiddleware(logger), RecoverMiddleware(logger, verbose), SentryMiddleware)

	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))
	return rr, &logs
}

func TestRecoverMiddlewareHidesDetail(t *testing.T) {
	rr, logs := serveRecover(t, false, func(w http.ResponseWriter, r *http.Request) {
		panic("secret internals")
	})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rr.Code)
	}
	var body models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error != models.ErrInternal || body.Detail != "" {
		t.Fatalf("Expected bare internal_error, got %+v", body)
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Fatal("Expected request id on 500 response")
	}
	if !strings.Contains(logs.String(), `"msg":"unhandled_error"`) || !strings.Contains(logs.String(), "secret internals") {
		t.Fatalf("Expected full detail in server log, got %s", logs.String())
	}
}

func TestRecoverMiddlewareVerboseDetail(t *testing.T) {
	rr, _ := serveRecover(t, true, func(w http.ResponseWriter, r *http.Request) {
		panic("secret internals")
	})

	var body models.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Detail != "secret internals" {
		t.Fatalf("Expected detail in verbose mode, got %+v", body)
	}
}

func TestRecoverMiddlewareAfterPartialWrite(t *testing.T) {
	rr, _ := serveRecover(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late")
	})

	if rr.Code != http.StatusAccepted {
		t.Fatalf("Expected already-sent status to stand, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), models.ErrInternal) {
		t.Fatalf("Expected no error body after headers were sent, got %s", rr.Body.String())
	}
}

func TestRecoverMiddlewarePassesNormalRequests(t *testing.T) {
	rr, logs := serveRecover(t, false, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if strings.Contains(logs.String(), "unhandled_error") {
		t.Fatalf("Expected no error log, got %s", logs.String())
	}
}
