package core

import "pkt.systems/pslog"

// ServiceDeps captures optional dependencies for the core service.
type ServiceDeps struct {
	Prober    Prober
	EventSink EventSink
	Logger    pslog.Logger
}
