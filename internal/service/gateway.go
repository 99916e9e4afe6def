package service

import (
	"context"
	"fmt"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/adapter/otel"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/gateway"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/ratelimit"
)

// compile-time interface check
var _ gateway.Gateway = (*LimitedGateway)(nil)

// LimitedGateway decorates a gateway with blocking rate admission and call
// metrics. Every model call in the system goes through this wrapper, so the
// limiter bounds the process-wide request rate.
type LimitedGateway struct {
	inner   gateway.Gateway
	limiter *ratelimit.Limiter
	metrics *otel.Metrics
}

// NewLimitedGateway wraps inner. metrics may be nil.
func NewLimitedGateway(inner gateway.Gateway, limiter *ratelimit.Limiter, metrics *otel.Metrics) *LimitedGateway {
	return &LimitedGateway{inner: inner, limiter: limiter, metrics: metrics}
}

// Complete blocks until the limiter admits the call, then delegates.
func (g *LimitedGateway) Complete(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return gateway.Response{}, fmt.Errorf("rate admission: %w", err)
	}
	if g.metrics != nil {
		g.metrics.ModelCalls.Add(ctx, 1)
	}
	return g.inner.Complete(ctx, req)
}
