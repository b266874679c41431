package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pkt.systems/intelhub/schema"
)

type fakeProber struct {
	mu      sync.Mutex
	results map[string]schema.ProbeResult
	errs    map[string]error
	block   chan struct{}
}

func (f *fakeProber) Probe(ctx context.Context, target string) (schema.ProbeResult, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return schema.ProbeResult{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[target]; err != nil {
		return schema.ProbeResult{}, err
	}
	return f.results[target], nil
}

type chanSink struct {
	events chan schema.TabEvent
}

func newChanSink() *chanSink {
	return &chanSink{events: make(chan schema.TabEvent, 64)}
}

func (s *chanSink) OnTabEvent(event schema.TabEvent) {
	s.events <- event
}

func (s *chanSink) next(t *testing.T) schema.TabEvent {
	t.Helper()
	select {
	case event := <-s.events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for tab event")
		return schema.TabEvent{}
	}
}

func (s *chanSink) expectNone(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case event := <-s.events:
		t.Fatalf("unexpected tab event: %+v", event)
	case <-time.After(wait):
	}
}

func testConfig(t *testing.T) schema.ServiceConfig {
	t.Helper()
	return schema.ServiceConfig{
		StateDir: t.TempDir(),
		Tabs: []schema.TabSpec{
			{Key: "worldmonitor", Label: "World Monitor", URL: "http://wm.internal:4173", Mode: schema.TabModeProbed},
			{Key: "deltaintel", Label: "Delta Intel", URL: "http://di.internal:8090", Mode: schema.TabModeProbed},
			{Key: "notes", Label: "Notes", Mode: schema.TabModeIntegrated},
		},
	}
}

func TestRefreshTabEmitsCheckingThenTerminal(t *testing.T) {
	prober := &fakeProber{results: map[string]schema.ProbeResult{
		"http://wm.internal:4173": {OK: true, Status: 200},
	}}
	sink := newChanSink()
	svc, err := NewService(testConfig(t), ServiceDeps{Prober: prober, EventSink: sink})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	resp, err := svc.RefreshTab(context.Background(), schema.RefreshTabRequest{Key: "worldmonitor"})
	if err != nil {
		t.Fatalf("refresh tab: %v", err)
	}
	if resp.Tab.Status != schema.TabStatusChecking {
		t.Fatalf("expected synchronous checking status, got %q", resp.Tab.Status)
	}

	first := sink.next(t)
	if first.Type != schema.TabEventStatus || first.Tab.Status != schema.TabStatusChecking {
		t.Fatalf("expected checking event first, got %+v", first)
	}
	second := sink.next(t)
	if second.Type != schema.TabEventStatus || second.Tab.Status != schema.TabStatusOnline {
		t.Fatalf("expected online event second, got %+v", second)
	}
	if second.Tab.Key != "worldmonitor" {
		t.Fatalf("expected worldmonitor event, got %q", second.Tab.Key)
	}
	sink.expectNone(t, 100*time.Millisecond)
}

func TestRefreshTabStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		result schema.ProbeResult
		err    error
		want   schema.TabStatus
	}{
		{name: "ok", result: schema.ProbeResult{OK: true, Status: 204}, want: schema.TabStatusOnline},
		{name: "server error", result: schema.ProbeResult{OK: false, Status: 503}, want: schema.TabStatusOffline},
		{name: "fetch failed", result: schema.ProbeResult{OK: false, Error: "connection refused"}, want: schema.TabStatusOffline},
		{name: "probe error", err: errors.New("boom"), want: schema.TabStatusOffline},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prober := &fakeProber{
				results: map[string]schema.ProbeResult{"http://wm.internal:4173": tc.result},
				errs:    map[string]error{},
			}
			if tc.err != nil {
				prober.errs["http://wm.internal:4173"] = tc.err
			}
			sink := newChanSink()
			svc, err := NewService(testConfig(t), ServiceDeps{Prober: prober, EventSink: sink})
			if err != nil {
				t.Fatalf("new service: %v", err)
			}
			defer svc.Close()
			if _, err := svc.RefreshTab(context.Background(), schema.RefreshTabRequest{Key: "worldmonitor"}); err != nil {
				t.Fatalf("refresh tab: %v", err)
			}
			sink.next(t) // checking
			terminal := sink.next(t)
			if terminal.Tab.Status != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, terminal.Tab.Status)
			}
		})
	}
}

func TestRefreshTabTouchesOnlyOneKey(t *testing.T) {
	prober := &fakeProber{results: map[string]schema.ProbeResult{
		"http://wm.internal:4173": {OK: false, Status: 502},
	}}
	sink := newChanSink()
	svc, err := NewService(testConfig(t), ServiceDeps{Prober: prober, EventSink: sink})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	if _, err := svc.RefreshTab(context.Background(), schema.RefreshTabRequest{Key: "worldmonitor"}); err != nil {
		t.Fatalf("refresh tab: %v", err)
	}
	sink.next(t)
	sink.next(t)

	resp, err := svc.ListTabs(context.Background(), schema.ListTabsRequest{})
	if err != nil {
		t.Fatalf("list tabs: %v", err)
	}
	for _, tab := range resp.Tabs {
		switch tab.Key {
		case "worldmonitor":
			if tab.Status != schema.TabStatusOffline {
				t.Fatalf("expected offline, got %q", tab.Status)
			}
		case "deltaintel":
			if tab.Status != schema.TabStatusChecking {
				t.Fatalf("deltaintel disturbed: %q", tab.Status)
			}
		case "notes":
			if tab.Status != schema.TabStatusIntegrated {
				t.Fatalf("notes disturbed: %q", tab.Status)
			}
		}
	}
}

func TestRefreshTabDefaultsToActive(t *testing.T) {
	prober := &fakeProber{results: map[string]schema.ProbeResult{
		"http://wm.internal:4173": {OK: true, Status: 200},
	}}
	sink := newChanSink()
	svc, err := NewService(testConfig(t), ServiceDeps{Prober: prober, EventSink: sink})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	resp, err := svc.RefreshTab(context.Background(), schema.RefreshTabRequest{})
	if err != nil {
		t.Fatalf("refresh tab: %v", err)
	}
	if resp.Tab.Key != "worldmonitor" {
		t.Fatalf("expected active tab worldmonitor, got %q", resp.Tab.Key)
	}
}

func TestRefreshTabRejectsUnknownAndIntegrated(t *testing.T) {
	svc, err := NewService(testConfig(t), ServiceDeps{Prober: &fakeProber{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	if _, err := svc.RefreshTab(context.Background(), schema.RefreshTabRequest{Key: "nope"}); !errors.Is(err, schema.ErrTabNotFound) {
		t.Fatalf("expected ErrTabNotFound, got %v", err)
	}
	if _, err := svc.RefreshTab(context.Background(), schema.RefreshTabRequest{Key: "notes"}); !errors.Is(err, schema.ErrTabNotProbed) {
		t.Fatalf("expected ErrTabNotProbed, got %v", err)
	}
}

func TestRefreshAllProbesOnlyProbedTabs(t *testing.T) {
	prober := &fakeProber{results: map[string]schema.ProbeResult{
		"http://wm.internal:4173": {OK: true, Status: 200},
		"http://di.internal:8090": {OK: false, Status: 500},
	}}
	sink := newChanSink()
	svc, err := NewService(testConfig(t), ServiceDeps{Prober: prober, EventSink: sink})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	defer svc.Close()

	svc.RefreshAll(context.Background())
	// Two checking events plus two terminal events.
	statuses := make(map[schema.TabKey]schema.TabStatus)
	for i := 0; i < 4; i++ {
		event := sink.next(t)
		if event.Tab.Key == "notes" {
			t.Fatalf("integrated tab should never be probed")
		}
		statuses[event.Tab.Key] = event.Tab.Status
	}
	if statuses["worldmonitor"] != schema.TabStatusOnline {
		t.Fatalf("expected worldmonitor online, got %q", statuses["worldmonitor"])
	}
	if statuses["deltaintel"] != schema.TabStatusOffline {
		t.Fatalf("expected deltaintel offline, got %q", statuses["deltaintel"])
	}
	sink.expectNone(t, 100*time.Millisecond)
}

func TestCloseDiscardsInFlightResolutions(t *testing.T) {
	block := make(chan struct{})
	prober := &fakeProber{
		results: map[string]schema.ProbeResult{"http://wm.internal:4173": {OK: true, Status: 200}},
		block:   block,
	}
	sink := newChanSink()
	svc, err := NewService(testConfig(t), ServiceDeps{Prober: prober, EventSink: sink})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.RefreshTab(context.Background(), schema.RefreshTabRequest{Key: "worldmonitor"}); err != nil {
		t.Fatalf("refresh tab: %v", err)
	}
	sink.next(t) // checking
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	close(block)
	sink.expectNone(t, 200*time.Millisecond)
}
