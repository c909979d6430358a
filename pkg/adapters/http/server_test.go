package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillgrid/tillgrid/internal/metrics"
	adminhttp "github.com/tillgrid/tillgrid/pkg/adapters/http"
	"github.com/tillgrid/tillgrid/pkg/adapters/memory"
	"github.com/tillgrid/tillgrid/pkg/domain"
	"github.com/tillgrid/tillgrid/pkg/session"
	"github.com/tillgrid/tillgrid/pkg/status"
)

type apiReporter struct{ source, device string }

func (r apiReporter) SourceID() string { return r.source }
func (r apiReporter) DeviceID() string { return r.device }

func newAPI(t *testing.T) (*httptest.Server, *session.Registry, *status.Cache, *memory.Transport) {
	t.Helper()
	transport := memory.NewTransport()
	registry := session.NewRegistry(func(terminal domain.TerminalID) *session.Session {
		return session.New(terminal, transport,
			session.WithDevice(domain.DeviceDescriptor{DeviceID: "dev-" + terminal.NodeID}))
	})
	cache := status.NewCache()
	server := adminhttp.NewServer(registry, cache, metrics.New())
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, registry, cache, transport
}

func TestHealthz(t *testing.T) {
	ts, registry, _, _ := newAPI(t)
	registry.CreateIfAbsent("A1", "N7")

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["sessions"])
}

func TestListSessions(t *testing.T) {
	ts, registry, _, _ := newAPI(t)
	sess := registry.CreateIfAbsent("A1", "N7")
	require.NoError(t, sess.ShowScreen(context.Background(), &domain.Screen{ID: "S1"}))
	registry.CreateIfAbsent("A1", "N8")

	resp, err := http.Get(ts.URL + "/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Count    int `json:"count"`
		Sessions []struct {
			ApplicationID string `json:"application_id"`
			NodeID        string `json:"node_id"`
			ScreenID      string `json:"screen_id"`
		} `json:"sessions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)

	screens := map[string]string{}
	for _, s := range body.Sessions {
		assert.Equal(t, "A1", s.ApplicationID)
		screens[s.NodeID] = s.ScreenID
	}
	assert.Equal(t, "S1", screens["N7"])
	assert.Equal(t, "", screens["N8"])
}

func TestGetSession_NotFound(t *testing.T) {
	ts, _, _, _ := newAPI(t)

	resp, err := http.Get(ts.URL + "/sessions/A1/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPostToast_DeliversToTerminal(t *testing.T) {
	ts, registry, _, transport := newAPI(t)
	sess := registry.CreateIfAbsent("A1", "N7")

	resp, err := http.Post(ts.URL+"/sessions/A1/N7/toast", "application/json",
		strings.NewReader(`{"text":"store closing soon","severity":"warning"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	delivered := transport.Delivered(sess.Terminal())
	require.Len(t, delivered, 1)
	toast := delivered[0].(*domain.Toast)
	assert.Equal(t, "store closing soon", toast.Text)
	assert.Equal(t, domain.ToastWarning, toast.Severity)
	assert.Equal(t, "dev-N7", toast.DeviceID)
}

func TestPostToast_RejectsEmptyBody(t *testing.T) {
	ts, registry, _, _ := newAPI(t)
	registry.CreateIfAbsent("A1", "N7")

	resp, err := http.Post(ts.URL+"/sessions/A1/N7/toast", "application/json",
		strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetStatus(t *testing.T) {
	ts, _, cache, _ := newAPI(t)
	cache.RecordAndPublish(context.Background(), apiReporter{source: "printer-1", device: "D1"},
		domain.StatusReport{Payload: "OK", ReportedAt: time.Now().UTC()})

	resp, err := http.Get(ts.URL + "/status/printer-1")
	require.NoError(t, err)
	defer resp.Body.Close()

	var report domain.StatusReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, "OK", report.Payload)

	// Unknown sources answer with the sentinel, not an error.
	resp2, err := http.Get(ts.URL + "/status/never-seen")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	var unknown domain.StatusReport
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&unknown))
	assert.Equal(t, domain.StatusUnknown, unknown.Payload)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, registry, _, _ := newAPI(t)
	registry.CreateIfAbsent("A1", "N7")

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
