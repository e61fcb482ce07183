package store_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/store"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store/storetest"
)

type pingingStore struct {
	*storetest.Memory
	down atomic.Bool
}

func (p *pingingStore) HealthPing(context.Context) error {
	if p.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestStoreHealthChecker_Ping(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &pingingStore{Memory: storetest.NewMemory()}
	hc := store.NewStoreHealthChecker(s, zerolog.Nop(), 0)
	if hc.Name() != "store" {
		t.Fatalf("name = %q", hc.Name())
	}
	go hc.Start(ctx, 10*time.Millisecond)

	waitFor(t, hc.IsHealthy)
	s.down.Store(true)
	waitFor(t, func() bool { return !hc.IsHealthy() })
}

func TestStoreHealthChecker_FallbackRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := storetest.NewMemory()
	hc := store.NewStoreHealthChecker(mem, zerolog.Nop(), time.Second)
	go hc.Start(ctx, 10*time.Millisecond)

	// not found on the probe user counts as healthy
	waitFor(t, hc.IsHealthy)
}

func TestStoreHealthChecker_FallbackReadFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := storetest.NewMemory()
	mem.Err = errors.New("disk full")
	hc := store.NewStoreHealthChecker(mem, zerolog.Nop(), time.Second)
	go hc.Start(ctx, time.Hour)

	time.Sleep(30 * time.Millisecond)
	if hc.IsHealthy() {
		t.Fatalf("expected unhealthy store")
	}
}

func waitFor(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
