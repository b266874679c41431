package core

import (
	"context"
	"errors"
	"sync"

	"pkt.systems/intelhub/internal/logx"
	"pkt.systems/intelhub/internal/persist"
	"pkt.systems/intelhub/schema"
	"pkt.systems/pslog"
)

// service implements the core service behavior.
type service struct {
	cfg    schema.ServiceConfig
	prober Prober
	sink   EventSink
	store  *persist.Store
	logger pslog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	tabs   map[schema.TabKey]*tab
	order  []schema.TabKey
	active schema.TabKey
	closed bool
}

// NewService constructs the core service implementation.
func NewService(cfg schema.ServiceConfig, deps ServiceDeps) (Service, error) {
	normalized, err := schema.NormalizeServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = normalized
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	if deps.Prober == nil {
		deps.Prober = NewProber()
	}
	store, err := persist.NewStoreWithLogger(cfg.StateDir, deps.Logger)
	if err != nil {
		return nil, err
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	s := &service{
		cfg:     cfg,
		prober:  deps.Prober,
		sink:    deps.EventSink,
		store:   store,
		logger:  logger,
		baseCtx: baseCtx,
		cancel:  cancel,
		tabs:    make(map[schema.TabKey]*tab, len(cfg.Tabs)),
		order:   make([]schema.TabKey, 0, len(cfg.Tabs)),
	}
	for _, spec := range cfg.Tabs {
		s.tabs[spec.Key] = &tab{Spec: spec, Status: initialStatus(spec)}
		s.order = append(s.order, spec.Key)
	}
	s.active = s.order[0]
	prefs, found, err := store.Load()
	if err != nil {
		logger.Warn("service prefs load failed", "err", err)
	}
	if found {
		if _, ok := s.tabs[prefs.ActiveTab]; ok {
			s.active = prefs.ActiveTab
		} else if prefs.ActiveTab != "" {
			logger.Warn("service persisted tab unknown", "tab", prefs.ActiveTab, "fallback", s.active)
		}
	}
	logger.Info("service started", "tabs", len(s.order), "active", s.active, "poll_interval", cfg.PollInterval)
	return s, nil
}

// Close discards in-flight probe resolutions and stops the service.
func (s *service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.logger.Info("service closed")
	return nil
}

func (s *service) ListTabs(ctx context.Context, req schema.ListTabsRequest) (schema.ListTabsResponse, error) {
	_ = req
	log := logx.Ctx(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	tabs := make([]schema.TabSnapshot, 0, len(s.order))
	for _, key := range s.order {
		tabs = append(tabs, s.tabs[key].Snapshot(key == s.active))
	}
	log.Trace("service tabs listed", "count", len(tabs), "active", s.active)
	return schema.ListTabsResponse{Tabs: tabs, ActiveTab: s.active}, nil
}

func (s *service) ActivateTab(ctx context.Context, req schema.ActivateTabRequest) (schema.ActivateTabResponse, error) {
	log := logx.WithTab(ctx, req.Key)

	s.mu.Lock()
	t := s.tabs[req.Key]
	if t == nil {
		s.mu.Unlock()
		log.Warn("service tab activate failed", "err", schema.ErrTabNotFound)
		return schema.ActivateTabResponse{}, schema.ErrTabNotFound
	}
	changed := s.active != req.Key
	s.active = req.Key
	snapshot := t.Snapshot(true)
	event := schema.TabEvent{
		Type:      schema.TabEventActivated,
		Tab:       snapshot,
		ActiveTab: s.active,
	}
	s.mu.Unlock()
	if changed {
		s.emitTabEvent(event)
		s.persistActive(log, req.Key)
		log.Info("service tab activated")
	}
	return schema.ActivateTabResponse{Tab: snapshot}, nil
}

func (s *service) RefreshTab(ctx context.Context, req schema.RefreshTabRequest) (schema.RefreshTabResponse, error) {
	s.mu.Lock()
	key := req.Key
	if key == "" {
		key = s.active
	}
	log := logx.WithTab(ctx, key)
	t := s.tabs[key]
	if t == nil {
		s.mu.Unlock()
		log.Warn("service tab refresh failed", "err", schema.ErrTabNotFound)
		return schema.RefreshTabResponse{}, schema.ErrTabNotFound
	}
	if !t.Spec.Probed() {
		s.mu.Unlock()
		log.Warn("service tab refresh failed", "err", schema.ErrTabNotProbed)
		return schema.RefreshTabResponse{}, schema.ErrTabNotProbed
	}
	if s.closed {
		s.mu.Unlock()
		return schema.RefreshTabResponse{}, errors.New("service closed")
	}
	event := s.markCheckingLocked(t)
	snapshot := t.Snapshot(key == s.active)
	s.mu.Unlock()
	s.emitTabEvent(event)
	log.Debug("service tab refresh start", "url", t.Spec.URL)
	go s.resolveProbe(log, key, t.Spec.URL)
	return schema.RefreshTabResponse{Tab: snapshot}, nil
}

// RefreshAll starts a probe cycle for every probed tab. Used by the poller
// and at startup.
func (s *service) RefreshAll(ctx context.Context) {
	log := logx.Ctx(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	type pending struct {
		key schema.TabKey
		url string
	}
	targets := make([]pending, 0, len(s.order))
	events := make([]schema.TabEvent, 0, len(s.order))
	for _, key := range s.order {
		t := s.tabs[key]
		if !t.Spec.Probed() {
			continue
		}
		events = append(events, s.markCheckingLocked(t))
		targets = append(targets, pending{key: key, url: t.Spec.URL})
	}
	s.mu.Unlock()
	for _, event := range events {
		s.emitTabEvent(event)
	}
	log.Debug("service refresh cycle start", "tabs", len(targets))
	for _, target := range targets {
		go s.resolveProbe(log.With("tab", target.key), target.key, target.url)
	}
}

// markCheckingLocked flips a tab to checking and builds the corresponding
// status event. Caller holds s.mu.
func (s *service) markCheckingLocked(t *tab) schema.TabEvent {
	t.Status = schema.TabStatusChecking
	return schema.TabEvent{
		Type:      schema.TabEventStatus,
		Tab:       t.Snapshot(t.Spec.Key == s.active),
		ActiveTab: s.active,
	}
}

// resolveProbe runs the probe and applies its terminal status. Resolutions
// that land after Close are discarded.
func (s *service) resolveProbe(log pslog.Logger, key schema.TabKey, target string) {
	ctx, cancel := context.WithTimeout(s.baseCtx, defaultProbeTimeout)
	defer cancel()
	result, err := s.prober.Probe(ctx, target)
	status := schema.StatusFor(result, err)
	if s.baseCtx.Err() != nil {
		log.Trace("service probe discarded", "status", status)
		return
	}
	if err != nil {
		log.Debug("service probe resolved", "status", status, "err", err)
	} else {
		log.Debug("service probe resolved", "status", status, "http_status", result.Status, "probe_error", result.Error)
	}
	s.applyStatus(key, status)
}

// applyStatus is the single merge point for terminal probe statuses. It
// changes exactly the given tab and leaves every other entry untouched.
// Overlapping probes resolve last-write-wins.
func (s *service) applyStatus(key schema.TabKey, status schema.TabStatus) {
	s.mu.Lock()
	t := s.tabs[key]
	if t == nil || s.closed {
		s.mu.Unlock()
		return
	}
	t.Status = status
	event := schema.TabEvent{
		Type:      schema.TabEventStatus,
		Tab:       t.Snapshot(key == s.active),
		ActiveTab: s.active,
	}
	s.mu.Unlock()
	s.emitTabEvent(event)
}

func (s *service) persistActive(log pslog.Logger, key schema.TabKey) {
	if err := s.store.Save(persist.Prefs{ActiveTab: key}); err != nil {
		log.Warn("service prefs save failed", "err", err)
	}
}

func (s *service) emitTabEvent(event schema.TabEvent) {
	if s.sink == nil {
		return
	}
	s.sink.OnTabEvent(event)
}
