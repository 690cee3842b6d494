package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/client"
	"github.com/FritzlyBrenord/mykeProduction-sub000/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newAPI serves GET /publications/{id} as a DRAFT for ids in drafts and 404
// for everything else.
func newAPI(t *testing.T, drafts ...uuid.UUID) *client.Client {
	t.Helper()
	known := make(map[string]bool, len(drafts))
	for _, id := range drafts {
		known[id.String()] = true
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/publications/")
		if r.Method != http.MethodGet || !known[id] {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":                 id,
			"title":              "Go basics",
			"status":             "DRAFT",
			"scheduled_at":       nil,
			"scheduled_timezone": "UTC",
		})
	}))
	t.Cleanup(srv.Close)
	return client.New(srv.URL, time.Second, discardLogger())
}

func TestRun(t *testing.T) {
	t.Parallel()

	draft, missing := uuid.New(), uuid.New()
	cfg := config.TriggerConfig{TickInterval: 10 * time.Millisecond, CallTimeout: time.Second}

	tests := []struct {
		name    string
		drafts  []uuid.UUID
		ids     []uuid.UUID
		wantErr string
	}{
		{"nothing to wait for", []uuid.UUID{draft}, []uuid.UUID{draft}, ""},
		{"every id fails", nil, []uuid.UUID{missing, uuid.New()}, "2 of 2 publications could not be watched"},
		{"one id fails", []uuid.UUID{draft}, []uuid.UUID{draft, missing}, "1 of 2 publications could not be watched"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := run(context.Background(), newAPI(t, tt.drafts...), tt.ids, cfg, discardLogger())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
