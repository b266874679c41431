package core

import (
	"context"

	"pkt.systems/intelhub/schema"
)

// Service is the transport-agnostic API for the tab dashboard: listing tabs,
// switching the active selection, and triggering probe cycles.
type Service interface {
	ListTabs(ctx context.Context, req schema.ListTabsRequest) (schema.ListTabsResponse, error)
	ActivateTab(ctx context.Context, req schema.ActivateTabRequest) (schema.ActivateTabResponse, error)
	RefreshTab(ctx context.Context, req schema.RefreshTabRequest) (schema.RefreshTabResponse, error)
	RefreshAll(ctx context.Context)
	Close() error
}
