package runtime

import (
	"context"

	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/ports"
)

// DelegateStrategyName is the strategy name reported for the capability delegate.
const DelegateStrategyName = "delegate"

// delegateStrategy adapts a CapabilityDelegate to ports.Strategy.
type delegateStrategy struct {
	delegate ports.CapabilityDelegate
}

func (d delegateStrategy) Name() string { return DelegateStrategyName }

func (d delegateStrategy) Supports(action string) bool {
	return d.delegate.SupportsAction(action)
}

func (d delegateStrategy) Perform(ctx context.Context, action string, params domain.Parameters, complete domain.ResultHandler) {
	d.delegate.PerformAction(ctx, action, params, complete)
}
