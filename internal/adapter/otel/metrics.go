package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "swarm"

// Metrics holds all swarm metric instruments.
type Metrics struct {
	TurnsStarted   metric.Int64Counter
	TurnsCompleted metric.Int64Counter
	TurnsFailed    metric.Int64Counter
	TurnsSuspended metric.Int64Counter
	ModelCalls     metric.Int64Counter
	ToolCalls      metric.Int64Counter
	Compactions    metric.Int64Counter
	TurnDuration   metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TurnsStarted, err = meter.Int64Counter("swarm.turns.started",
		metric.WithDescription("Number of turns started"))
	if err != nil {
		return nil, err
	}

	m.TurnsCompleted, err = meter.Int64Counter("swarm.turns.completed",
		metric.WithDescription("Number of turns completed"))
	if err != nil {
		return nil, err
	}

	m.TurnsFailed, err = meter.Int64Counter("swarm.turns.failed",
		metric.WithDescription("Number of turns failed"))
	if err != nil {
		return nil, err
	}

	m.TurnsSuspended, err = meter.Int64Counter("swarm.turns.suspended",
		metric.WithDescription("Number of turns suspended for human approval"))
	if err != nil {
		return nil, err
	}

	m.ModelCalls, err = meter.Int64Counter("swarm.model.calls",
		metric.WithDescription("Number of model gateway calls"))
	if err != nil {
		return nil, err
	}

	m.ToolCalls, err = meter.Int64Counter("swarm.toolcalls",
		metric.WithDescription("Number of tool calls"))
	if err != nil {
		return nil, err
	}

	m.Compactions, err = meter.Int64Counter("swarm.compactions",
		metric.WithDescription("Number of history compactions"))
	if err != nil {
		return nil, err
	}

	m.TurnDuration, err = meter.Float64Histogram("swarm.turn.duration_seconds",
		metric.WithDescription("Turn duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
