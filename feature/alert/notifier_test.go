package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestNew_PicksNotifier(t *testing.T) {
	assert.IsType(t, &LogNotifier{}, New(Config{}, nil))
	assert.IsType(t, &Webhook{}, New(Config{WebhookURL: "http://example.invalid"}, nil))
}

func TestWebhook_Delivers(t *testing.T) {
	var (
		mu   sync.Mutex
		got  payload
		ctyp string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		ctyp = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	logger, logs := observed()
	New(Config{WebhookURL: srv.URL, TimeoutSeconds: 2}, logger).Notify(context.Background(), "3 errors")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "3 errors", got.Text)
	assert.Contains(t, ctyp, "application/json")
	assert.Equal(t, 1, logs.FilterMessage("Alert delivered").Len())
}

func TestWebhook_FailureIsLoggedOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	logger, logs := observed()
	assert.NotPanics(t, func() {
		New(Config{WebhookURL: srv.URL, TimeoutSeconds: 2}, logger).Notify(context.Background(), "boom")
	})

	entries := logs.FilterMessage("Alert delivery failed").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "502")
}

func TestWebhook_CancelledContext(t *testing.T) {
	logger, logs := observed()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	New(Config{WebhookURL: "http://127.0.0.1:1"}, logger).Notify(ctx, "late")
	assert.Equal(t, 1, logs.FilterMessage("Alert dropped").Len())
}

func TestLogNotifier(t *testing.T) {
	logger, logs := observed()
	New(Config{}, logger).Notify(context.Background(), "hello")

	entries := logs.FilterMessage("Alert").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].ContextMap()["message"])
}

func TestConfig_Timeout(t *testing.T) {
	assert.Equal(t, "10s", Config{}.Timeout().String())
	assert.Equal(t, "3s", Config{TimeoutSeconds: 3}.Timeout().String())
}
