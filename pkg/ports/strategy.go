package ports

import (
	"context"

	"github.com/aretw0/xcallback/pkg/domain"
)

// Strategy is one way of performing an inbound action.
// The engine consults strategies in order and uses the first that supports
// the action.
type Strategy interface {
	// Name identifies the strategy in logs and metrics.
	Name() string

	// Supports reports whether the strategy can perform the action.
	Supports(action string) bool

	// Perform runs the action. complete must be called once with the outcome,
	// from any goroutine.
	Perform(ctx context.Context, action string, params domain.Parameters, complete domain.ResultHandler)
}

// CapabilityDelegate answers for actions that were not registered up front.
// Its lifetime belongs to the host application.
type CapabilityDelegate interface {
	SupportsAction(action string) bool
	PerformAction(ctx context.Context, action string, params domain.Parameters, complete domain.ResultHandler)
}
