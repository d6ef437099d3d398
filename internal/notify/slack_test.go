package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{500, "500 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1048576 * 1024, "1.00 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatSize(tt.bytes))
		})
	}
}

func TestSlackNotifier_Notify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload slackPayload
		err := json.NewDecoder(r.Body).Decode(&payload)
		assert.NoError(t, err)

		assert.Len(t, payload.Attachments, 1)
		att := payload.Attachments[0]
		assert.Equal(t, "#36a64f", att.Color)
		assert.Equal(t, "✅ Restore Successful", att.Title)
		assert.Equal(t, "sitectl run-1", att.Footer)
		assert.Len(t, att.Fields, 5) // DB, Name, File, Duration, Size

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL, "")
	stats := Stats{
		RunID:     "run-1",
		Status:    StatusSuccess,
		Operation: "Restore",
		Engine:    "sqlite",
		Database:  "default",
		FileName:  "2024-05-01.backup",
		Duration:  5 * time.Second,
		Size:      1048576,
	}

	err := notifier.Notify(context.Background(), stats)
	assert.NoError(t, err)
}

func TestSlackNotifier_Notify_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload slackPayload
		json.NewDecoder(r.Body).Decode(&payload)

		att := payload.Attachments[0]
		assert.Equal(t, "#ff0000", att.Color)
		assert.Equal(t, "❌ Restore Failed", att.Title)
		assert.Contains(t, att.Text, "connection refused")

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL, "")
	stats := Stats{
		Status:    StatusError,
		Operation: "Restore",
		Engine:    "mysql",
		Database:  "default",
		FileName:  "backup.sql",
		Duration:  2 * time.Second,
		Error:     errors.New("connection refused"),
	}

	err := notifier.Notify(context.Background(), stats)
	assert.NoError(t, err)
}

func TestSlackNotifier_Template(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		got = payload["text"]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL, `{"text":"{{.Operation}} {{.FileName}} in {{.FormattedDuration}}"}`)
	err := notifier.Notify(context.Background(), Stats{Operation: "Restore", FileName: "a.backup", Duration: 1500 * time.Millisecond})
	assert.NoError(t, err)
	assert.Equal(t, "Restore a.backup in 1s", got)
}

func TestSlackNotifier_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	err := NewSlackNotifier(server.URL, "").Notify(context.Background(), Stats{Operation: "Restore"})
	assert.Error(t, err)
}

func TestSlackNotifier_EmptyURL(t *testing.T) {
	notifier := NewSlackNotifier("", "")
	err := notifier.Notify(context.Background(), Stats{Operation: "Test"})
	assert.NoError(t, err) // Should silently return nil if no URL
}
