package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"breaktime/internal/core/clock"
	"breaktime/internal/core/model"
	"breaktime/internal/core/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epoch = 1_700_000_000

type fakeOverlay struct {
	mu     sync.Mutex
	shown  []model.OverlayConfig
	closed int
}

func (overlay *fakeOverlay) Present(config model.OverlayConfig) {
	overlay.mu.Lock()
	defer overlay.mu.Unlock()
	overlay.shown = append(overlay.shown, config)
}

func (overlay *fakeOverlay) CloseWindow() {
	overlay.mu.Lock()
	defer overlay.mu.Unlock()
	overlay.closed++
}

func newTestServer(t *testing.T, overlay Overlay) (*httptest.Server, *session.Authority, *clock.Manual) {
	t.Helper()
	manual := clock.NewManual(epoch)
	authority := session.New(manual, zerolog.Nop())
	t.Cleanup(authority.Close)

	handler := NewHandler(authority, overlay, zerolog.Nop())
	server := httptest.NewServer(NewRouter(handler, ServerConfig{MetricsEnabled: true}, zerolog.Nop()))
	t.Cleanup(server.Close)
	return server, authority, manual
}

func doRequest(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, strings.TrimSpace(string(data))
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"foo": "bar"})

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "bar", got["foo"])
}

func TestStartThenStatus(t *testing.T) {
	server, _, manual := newTestServer(t, nil)

	resp, body := doRequest(t, http.MethodPost, server.URL+"/v1/session",
		`{"duration_minutes":25,"message":"stretch","overlay_dwell_seconds":10}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	manual.Advance(90 * time.Second)

	resp, body = doRequest(t, http.MethodGet, server.URL+"/v1/session", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var record model.SessionRecord
	require.NoError(t, json.Unmarshal([]byte(body), &record))
	assert.Equal(t, int64(epoch), record.StartTime)
	assert.Equal(t, int64(25), record.DurationMinutes)
	assert.Equal(t, "stretch", record.Message)
	assert.Equal(t, int64(25*60-90), record.RemainingSeconds(manual.Now()))
}

func TestStatusIsNullWhenIdle(t *testing.T) {
	server, _, _ := newTestServer(t, nil)

	resp, body := doRequest(t, http.MethodGet, server.URL+"/v1/session", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", body)

	resp, body = doRequest(t, http.MethodGet, server.URL+"/v1/session/config", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", body)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	server, authority, _ := newTestServer(t, nil)
	require.NoError(t, authority.Start(model.SessionConfig{DurationMinutes: 10, Message: "keep"}))

	tests := []struct {
		name string
		body string
	}{
		{"negative duration", `{"duration_minutes":-1,"message":"x","overlay_dwell_seconds":0}`},
		{"negative dwell", `{"duration_minutes":1,"message":"x","overlay_dwell_seconds":-2}`},
		{"duration too long", `{"duration_minutes":200000000,"message":"x","overlay_dwell_seconds":0}`},
		{"malformed", `{"duration_minutes":`},
		{"unknown field", `{"minutes":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, http.MethodPost, server.URL+"/v1/session", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var errResp ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(body), &errResp))
			assert.NotEmpty(t, errResp.Error)
		})
	}

	record := authority.Status()
	require.NotNil(t, record)
	assert.Equal(t, "keep", record.Message)
}

func TestStopIsIdempotentOverHTTP(t *testing.T) {
	server, authority, _ := newTestServer(t, nil)
	require.NoError(t, authority.Start(model.SessionConfig{DurationMinutes: 5}))

	for i := 0; i < 2; i++ {
		resp, _ := doRequest(t, http.MethodDelete, server.URL+"/v1/session", "")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}
	assert.Nil(t, authority.Status())
}

func TestOverlayConfigAfterExpiry(t *testing.T) {
	server, authority, manual := newTestServer(t, nil)
	require.NoError(t, authority.Start(model.SessionConfig{DurationMinutes: 1, Message: "look away", OverlayDwellSeconds: 20}))
	manual.Advance(time.Minute)

	resp, body := doRequest(t, http.MethodGet, server.URL+"/v1/session/config", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var overlay model.OverlayConfig
	require.NoError(t, json.Unmarshal([]byte(body), &overlay))
	assert.Equal(t, model.OverlayConfig{Message: "look away", OverlayDwellSeconds: 20}, overlay)

	_, body = doRequest(t, http.MethodGet, server.URL+"/v1/session", "")
	assert.Equal(t, "null", body)
}

func TestOverlayWindowRoutes(t *testing.T) {
	overlay := &fakeOverlay{}
	server, _, _ := newTestServer(t, overlay)

	resp, _ := doRequest(t, http.MethodPost, server.URL+"/v1/overlay", `{"message":"hi","overlay_dwell_seconds":3}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = doRequest(t, http.MethodDelete, server.URL+"/v1/overlay", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, []model.OverlayConfig{{Message: "hi", OverlayDwellSeconds: 3}}, overlay.shown)
	assert.Equal(t, 1, overlay.closed)
}

func TestOverlayRoutesWithoutSurface(t *testing.T) {
	server, _, _ := newTestServer(t, nil)

	resp, _ := doRequest(t, http.MethodPost, server.URL+"/v1/overlay", `{"message":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	server, _, _ := newTestServer(t, nil)

	resp, _ := doRequest(t, http.MethodGet, server.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doRequest(t, http.MethodGet, server.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "breaktime_sessions_started_total")
}
