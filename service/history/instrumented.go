package history

import (
	"context"
	"time"

	"github.com/brojonat/solcash/service/metrics"
)

// InstrumentedStore wraps a Store and records operation metrics. If m is nil
// it is a pass-through.
type InstrumentedStore struct {
	inner   Store
	backend string // "file", "postgres", "memory"
	metrics *metrics.Metrics
}

// NewInstrumentedStore wraps inner with metric recording.
func NewInstrumentedStore(inner Store, backend string, m *metrics.Metrics) *InstrumentedStore {
	return &InstrumentedStore{
		inner:   inner,
		backend: backend,
		metrics: m,
	}
}

// Load delegates to the inner store and records the operation.
func (s *InstrumentedStore) Load(ctx context.Context) (History, error) {
	start := time.Now()
	h, err := s.inner.Load(ctx)
	if s.metrics != nil {
		s.metrics.RecordHistoryOp("load", s.backend, time.Since(start).Seconds(), err)
		if err == nil {
			s.metrics.RecordHistoryLength(s.backend, len(h))
		}
	}
	return h, err
}

// Save delegates to the inner store and records the operation.
func (s *InstrumentedStore) Save(ctx context.Context, h History) error {
	start := time.Now()
	err := s.inner.Save(ctx, h)
	if s.metrics != nil {
		s.metrics.RecordHistoryOp("save", s.backend, time.Since(start).Seconds(), err)
		if err == nil {
			s.metrics.RecordHistoryLength(s.backend, len(h))
		}
	}
	return err
}
