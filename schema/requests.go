package schema

// ListTabsRequest asks for the full tab/status snapshot.
type ListTabsRequest struct{}

// ListTabsResponse carries every configured tab and the active selection.
type ListTabsResponse struct {
	Tabs      []TabSnapshot `json:"tabs"`
	ActiveTab TabKey        `json:"active_tab"`
}

// ActivateTabRequest selects the tab whose content is displayed.
type ActivateTabRequest struct {
	Key TabKey `json:"key"`
}

// ActivateTabResponse returns the newly active tab.
type ActivateTabResponse struct {
	Tab TabSnapshot `json:"tab"`
}

// RefreshTabRequest re-probes a single tab. An empty key means the active tab.
type RefreshTabRequest struct {
	Key TabKey `json:"key,omitempty"`
}

// RefreshTabResponse returns the tab that was scheduled for re-probing.
type RefreshTabResponse struct {
	Tab TabSnapshot `json:"tab"`
}
