package subscribeon

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts intercepted calls and their durations.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the collectors with reg. Collectors already registered
// by an earlier call are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "subscribeon",
		Name:      "calls_total",
		Help:      "Intercepted calls by method, strategy and outcome.",
	}, []string{"method", "strategy", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "subscribeon",
		Name:      "call_duration_seconds",
		Help:      "Time spent in intercepted calls, including the original call.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"method", "outcome"})

	var err error
	if calls, err = register(reg, calls); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &Metrics{calls: calls, duration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns hooks that record every finished call.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnFinish: func(_ context.Context, event CallEvent) {
			strategy := "none"
			if event.Strategy.Valid() {
				strategy = event.Strategy.String()
			}
			m.calls.WithLabelValues(event.Method, strategy, string(event.Outcome)).Inc()
			m.duration.WithLabelValues(event.Method, string(event.Outcome)).Observe(event.Duration.Seconds())
		},
	}
}
