package sync

import (
	"testing"
	"time"

	"roombooker/internal/models"
)

func TestStatusBroadcasterStartsIdle(t *testing.T) {
	b := NewStatusBroadcaster()
	if state := b.Current(); state.Status != models.SyncIdle {
		t.Fatalf("expected idle initial state, got %+v", state)
	}
}

func TestSubscribePrimesWithCurrentState(t *testing.T) {
	b := NewStatusBroadcaster()
	b.Publish(models.SyncStateSyncing("working"))

	ch, cancel := b.Subscribe()
	defer cancel()

	select {
	case state := <-ch:
		if state.Status != models.SyncSyncing {
			t.Fatalf("expected primed syncing state, got %+v", state)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber was not primed with current state")
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, cancel := b.Subscribe()
	defer cancel()
	<-ch // primed value

	b.Publish(models.SyncStateError("boom"))

	select {
	case state := <-ch:
		if state.Status != models.SyncError || state.Message != "boom" {
			t.Fatalf("unexpected state %+v", state)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive published state")
	}
}

func TestCancelledSubscriberStopsReceiving(t *testing.T) {
	b := NewStatusBroadcaster()
	ch, cancel := b.Subscribe()
	<-ch
	cancel()
	cancel() // safe to call twice

	b.Publish(models.SyncStateSuccess("done"))

	select {
	case state, ok := <-ch:
		if ok {
			t.Fatalf("cancelled subscriber received %+v", state)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := NewStatusBroadcaster()
	_, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(models.SyncStateSyncing("tick"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	if b.Current().Status != models.SyncSyncing {
		t.Fatalf("expected syncing, got %+v", b.Current())
	}
}
