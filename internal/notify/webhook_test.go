package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lupppig/sitectl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifier_DefaultPayload(t *testing.T) {
	var payload webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL, http.MethodPut, "", map[string]string{"X-Token": "secret"})
	err := n.Notify(context.Background(), Stats{
		RunID:     "r1",
		Status:    StatusError,
		Operation: "Restore",
		FileName:  "x.backup",
		Duration:  2 * time.Second,
		Error:     errors.New("boom"),
	})
	require.NoError(t, err)

	assert.Equal(t, "r1", payload.RunID)
	assert.Equal(t, StatusError, payload.Status)
	assert.Equal(t, int64(2000), payload.DurationMS)
	require.NotNil(t, payload.Error)
	assert.Equal(t, "boom", *payload.Error)
}

func TestWebhookNotifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewWebhookNotifier(server.URL, "", "", nil).Notify(context.Background(), Stats{})
	assert.EqualError(t, err, "webhook returned status 500")
}

type recordingNotifier struct {
	calls int
	err   error
}

func (r *recordingNotifier) Notify(ctx context.Context, stats Stats) error {
	r.calls++
	return r.err
}

func TestMultiNotifier_ContinuesOnError(t *testing.T) {
	first := &recordingNotifier{err: errors.New("first down")}
	second := &recordingNotifier{}

	m := &MultiNotifier{Notifiers: []Notifier{first, second}}
	err := m.Notify(context.Background(), Stats{})

	assert.ErrorContains(t, err, "first down")
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestBuildNotifier(t *testing.T) {
	assert.Nil(t, BuildNotifier(config.Notifications{}))

	single := BuildNotifier(config.Notifications{Slack: config.SlackConfig{WebhookURL: "http://slack"}})
	assert.IsType(t, &SlackNotifier{}, single)

	multi := BuildNotifier(config.Notifications{
		Slack:    config.SlackConfig{WebhookURL: "http://slack"},
		Webhooks: []config.WebhookConfig{{URL: "http://hook"}, {URL: ""}},
	})
	require.IsType(t, &MultiNotifier{}, multi)
	assert.Len(t, multi.(*MultiNotifier).Notifiers, 2)
}
