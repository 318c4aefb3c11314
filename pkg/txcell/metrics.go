package txcell

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the lazily-initialized OpenTelemetry instruments for a Space.
// Instruments are created on first use so that Spaces created in tests (which
// never configure a global MeterProvider) don't pay for instrument creation
// they never read.
type Metrics struct {
	once    sync.Once
	retries metric.Int64Counter
}

func (m *Metrics) recordRetry() {
	m.once.Do(func() {
		meter := otel.Meter("github.com/orneryd/cmap2/pkg/txcell")
		counter, err := meter.Int64Counter(
			"cmap2.txcell.retries",
			metric.WithDescription("number of transaction retries due to optimistic conflicts"),
		)
		if err == nil {
			m.retries = counter
		}
	})
	if m.retries != nil {
		m.retries.Add(context.Background(), 1)
	}
}
