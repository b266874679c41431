package integration_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pkt.systems/intelhub/core"
	"pkt.systems/intelhub/httpapi"
	"pkt.systems/intelhub/schema"
)

// probeTarget is a controllable upstream for probe tests.
type probeTarget struct {
	server *httptest.Server
	status atomic.Int64
	hits   atomic.Int64
}

func newProbeTarget(t *testing.T, status int) *probeTarget {
	t.Helper()
	target := &probeTarget{}
	target.status.Store(int64(status))
	target.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target.hits.Add(1)
		w.WriteHeader(int(target.status.Load()))
	}))
	t.Cleanup(target.server.Close)
	return target
}

func (p *probeTarget) URL() string { return p.server.URL }

type dashboard struct {
	service core.Service
	server  *httptest.Server
}

func newDashboard(t *testing.T, tabs []schema.TabSpec) *dashboard {
	t.Helper()
	hub := httpapi.NewHub(64)
	svc, err := core.NewService(schema.ServiceConfig{
		StateDir:     t.TempDir(),
		PollInterval: time.Hour,
		Tabs:         tabs,
	}, core.ServiceDeps{EventSink: hub})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	httpSrv := httpapi.NewServer(httpapi.Config{}, svc, core.NewProber(), hub)
	server := httptest.NewServer(httpSrv.Handler())
	t.Cleanup(server.Close)
	return &dashboard{service: svc, server: server}
}

func (d *dashboard) URL() string { return d.server.URL }

func getJSON(t *testing.T, url string, target any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("GET %s: status %d: %s", url, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func waitForStatus(t *testing.T, baseURL string, key schema.TabKey, want schema.TabStatus, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var last schema.ListTabsResponse
	for time.Now().Before(deadline) {
		getJSON(t, baseURL+"/api/tabs", &last)
		for _, tab := range last.Tabs {
			if tab.Key == key && tab.Status == want {
				return
			}
		}
		time.Sleep(25 * time.Millisecond)
	}
	raw, _ := json.Marshal(last)
	t.Fatalf("tab %s never reached %s: %s", key, want, raw)
}

func requireLong(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}
