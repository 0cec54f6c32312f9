package recoverykey

import (
	"context"
	"time"
)

// HealthStatus is an on-demand backend health result.
type HealthStatus struct {
	RedisAvailable bool
	RedisLatency   time.Duration
}

// Health describes the health operation and its observable behavior.
//
// Health does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Health(ctx context.Context) HealthStatus {
	if s == nil || s.store == nil {
		return HealthStatus{}
	}

	latency, err := s.store.Ping(ctx)
	return HealthStatus{
		RedisAvailable: err == nil,
		RedisLatency:   latency,
	}
}
