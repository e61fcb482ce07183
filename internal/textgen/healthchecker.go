package textgen

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/health"
)

// NewHealthChecker monitors a generator through its optional HealthPing.
// Generators without one are reported healthy; probing by generating text
// would spend provider quota.
func NewHealthChecker(g Generator, log zerolog.Logger, probeTimeout time.Duration) *health.PingChecker {
	p, ok := g.(health.HealthPinger)
	if !ok {
		p = alwaysUp{}
	}
	return health.NewPingChecker("textgen", p, log, probeTimeout)
}

type alwaysUp struct{}

func (alwaysUp) HealthPing(context.Context) error { return nil }
