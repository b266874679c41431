package schema

// TabSnapshot is a read-only view of tab state for transports.
type TabSnapshot struct {
	Key    TabKey    `json:"key"`
	Label  TabLabel  `json:"label"`
	URL    string    `json:"url,omitempty"`
	Mode   TabMode   `json:"mode"`
	Status TabStatus `json:"status"`
	Active bool      `json:"active"`
}
