package schema

// TabEventType describes tab state changes.
type TabEventType string

const (
	// TabEventStatus indicates a tab's liveness status changed.
	TabEventStatus TabEventType = "status"
	// TabEventActivated indicates a tab became active.
	TabEventActivated TabEventType = "activated"
)

// TabEvent represents a change to a tab or to the active selection.
type TabEvent struct {
	Type      TabEventType `json:"type"`
	Tab       TabSnapshot  `json:"tab"`
	ActiveTab TabKey       `json:"active_tab"`
}
