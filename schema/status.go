package schema

// TabStatus describes the liveness of a probed tab.
type TabStatus string

const (
	// TabStatusChecking indicates a probe cycle is in flight.
	TabStatusChecking TabStatus = "checking"
	// TabStatusOnline indicates the last probe reached the target with a 2xx.
	TabStatusOnline TabStatus = "online"
	// TabStatusOffline indicates the last probe failed or returned non-2xx.
	TabStatusOffline TabStatus = "offline"
	// TabStatusIntegrated is the fixed display status of integrated tabs.
	TabStatusIntegrated TabStatus = "integrated"
)

// ProbeResult is the normalized liveness envelope produced by the proxy
// endpoint and by direct probes. Failure of the target is carried in the
// body, never as a transport error.
type ProbeResult struct {
	OK     bool   `json:"ok"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// StatusFor maps a probe result to the terminal status of a probe cycle.
// Anything other than a truthy OK collapses to offline.
func StatusFor(result ProbeResult, err error) TabStatus {
	if err != nil {
		return TabStatusOffline
	}
	if result.OK {
		return TabStatusOnline
	}
	return TabStatusOffline
}
