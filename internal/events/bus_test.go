package events

import "testing"

func TestBus_PublishNonBlocking(t *testing.T) {
	b := NewBus(1)
	if !b.Publish(Event{Kind: TripCreated, TripID: "t1"}) {
		t.Fatalf("first publish should succeed")
	}
	if b.Publish(Event{Kind: TripCreated, TripID: "t2"}) {
		t.Fatalf("publish on a full buffer should report false")
	}
	if b.Dropped() != 1 {
		t.Fatalf("dropped = %d", b.Dropped())
	}
	evt := <-b.Subscribe()
	if evt.TripID != "t1" || evt.Kind != TripCreated {
		t.Fatalf("unexpected event %+v", evt)
	}
}

func TestBus_NilIsSafe(t *testing.T) {
	var b *Bus
	if b.Publish(Event{Kind: TripDeleted}) {
		t.Fatalf("nil bus must not accept events")
	}
}
