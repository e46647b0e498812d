package events_test

import (
	"testing"

	"github.com/ardanlabs/forkchain/foundation/events"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestEvents(t *testing.T) {
	evts := events.New()

	ch1 := evts.Acquire("one")
	ch2 := evts.Acquire("two")

	if evts.Acquire("one") != ch1 {
		t.Fatalf("\t%s\tShould get back the same channel for the same id.", failed)
	}
	t.Logf("\t%s\tShould get back the same channel for the same id.", success)

	evts.Send("node0", "block mined")

	for _, ch := range []<-chan events.Event{ch1, ch2} {
		e := <-ch
		if e.Node != "node0" || e.Message != "block mined" {
			t.Fatalf("\t%s\tShould receive the event: %+v", failed, e)
		}
	}
	t.Logf("\t%s\tShould deliver the event to every receiver.", success)

	if err := evts.Release("one"); err != nil {
		t.Fatalf("\t%s\tShould be able to release a receiver: %s", failed, err)
	}
	if _, open := <-ch1; open {
		t.Fatalf("\t%s\tShould close a released channel.", failed)
	}
	if err := evts.Release("one"); err == nil {
		t.Fatalf("\t%s\tShould not release an unknown id.", failed)
	}
	t.Logf("\t%s\tShould be able to release a receiver.", success)

	// Sends never block, even when nobody is reading.
	for i := 0; i < 500; i++ {
		evts.Send("node0", "flood")
	}
	t.Logf("\t%s\tShould drop events for a slow receiver.", success)

	evts.Shutdown()
	if evts.Count() != 0 {
		t.Fatalf("\t%s\tShould remove every receiver on shutdown.", failed)
	}
	t.Logf("\t%s\tShould remove every receiver on shutdown.", success)
}
