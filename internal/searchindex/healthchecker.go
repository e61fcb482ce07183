package searchindex

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/health"
)

// NewSearchIndexHealthChecker monitors an index that can be pinged.
func NewSearchIndexHealthChecker(p health.HealthPinger, log zerolog.Logger, probeTimeout time.Duration) *health.PingChecker {
	return health.NewPingChecker("searchindex", p, log, probeTimeout)
}
