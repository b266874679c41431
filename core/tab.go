package core

import "pkt.systems/intelhub/schema"

// tab tracks the state of a single configured tab.
type tab struct {
	Spec   schema.TabSpec
	Status schema.TabStatus
}

// Snapshot returns a transport-friendly view of the tab.
func (t *tab) Snapshot(active bool) schema.TabSnapshot {
	return schema.TabSnapshot{
		Key:    t.Spec.Key,
		Label:  t.Spec.Label,
		URL:    t.Spec.URL,
		Mode:   t.Spec.Mode,
		Status: t.Status,
		Active: active,
	}
}

func initialStatus(spec schema.TabSpec) schema.TabStatus {
	if !spec.Probed() {
		return schema.TabStatusIntegrated
	}
	return schema.TabStatusChecking
}
