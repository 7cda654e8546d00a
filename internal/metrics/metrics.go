package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	customersRegistered metric.Int64Counter
	customerLogins      metric.Int64Counter
	ticketsCreated      metric.Int64Counter
	partsAttached       metric.Int64Counter
	cacheHits           metric.Int64Counter
	cacheMisses         metric.Int64Counter
	requestsThrottled   metric.Int64Counter

	Database *DatabaseMetrics
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.customersRegistered, err = meter.Int64Counter(
		"mechanic_service.customers.registered",
		metric.WithDescription("Total number of customers registered"),
		metric.WithUnit("{customer}"),
	)
	if err != nil {
		return nil, err
	}

	m.customerLogins, err = meter.Int64Counter(
		"mechanic_service.customers.logins",
		metric.WithDescription("Total number of successful customer logins"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.ticketsCreated, err = meter.Int64Counter(
		"mechanic_service.tickets.created",
		metric.WithDescription("Total number of service tickets created"),
		metric.WithUnit("{ticket}"),
	)
	if err != nil {
		return nil, err
	}

	m.partsAttached, err = meter.Int64Counter(
		"mechanic_service.tickets.parts_attached",
		metric.WithDescription("Total number of parts attached to tickets"),
		metric.WithUnit("{part}"),
	)
	if err != nil {
		return nil, err
	}

	m.cacheHits, err = meter.Int64Counter(
		"mechanic_service.list_cache.hits",
		metric.WithDescription("Total number of list cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	m.cacheMisses, err = meter.Int64Counter(
		"mechanic_service.list_cache.misses",
		metric.WithDescription("Total number of list cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	m.requestsThrottled, err = meter.Int64Counter(
		"mechanic_service.requests.throttled",
		metric.WithDescription("Total number of requests rejected by the admission limiter"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	m.Database, err = NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordCustomerRegistration(ctx context.Context) {
	if m != nil && m.customersRegistered != nil {
		m.customersRegistered.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCustomerLogin(ctx context.Context) {
	if m != nil && m.customerLogins != nil {
		m.customerLogins.Add(ctx, 1)
	}
}

func (m *Metrics) RecordTicketCreated(ctx context.Context) {
	if m != nil && m.ticketsCreated != nil {
		m.ticketsCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordPartAttached(ctx context.Context) {
	if m != nil && m.partsAttached != nil {
		m.partsAttached.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCacheHit(ctx context.Context) {
	if m != nil && m.cacheHits != nil {
		m.cacheHits.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCacheMiss(ctx context.Context) {
	if m != nil && m.cacheMisses != nil {
		m.cacheMisses.Add(ctx, 1)
	}
}

func (m *Metrics) RecordRequestThrottled(ctx context.Context) {
	if m != nil && m.requestsThrottled != nil {
		m.requestsThrottled.Add(ctx, 1)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}}
}
