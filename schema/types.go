package schema

// TabKey identifies a monitored tab.
type TabKey string

// TabLabel is the user-facing name of a tab.
type TabLabel string

// TabMode selects how a tab's content is rendered and whether it is probed.
type TabMode string

const (
	// TabModeProbed renders the tab in an embedded frame and probes its URL.
	TabModeProbed TabMode = "probed"
	// TabModeIntegrated renders the tab natively in-process; never probed.
	TabModeIntegrated TabMode = "integrated"
)

// TabSpec describes one configured tab. The set of tabs is fixed at startup.
type TabSpec struct {
	Key   TabKey   `json:"key"`
	Label TabLabel `json:"label"`
	URL   string   `json:"url"`
	Mode  TabMode  `json:"mode"`
}

// Probed reports whether the tab participates in liveness probing.
func (t TabSpec) Probed() bool {
	return t.Mode != TabModeIntegrated
}
