package core

import "pkt.systems/intelhub/schema"

// EventSink receives tab events from the core service.
type EventSink interface {
	OnTabEvent(event schema.TabEvent)
}
