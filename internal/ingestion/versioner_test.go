package ingestion

import (
	"testing"
	"time"
)

func TestVersionerPublishNotifies(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	v := NewVersioner(start)
	ch := v.Subscribe()

	if version, asOf := v.Current(); version != 0 || !asOf.Equal(start) {
		t.Fatalf("unexpected initial state %d %v", version, asOf)
	}

	v.Publish(start.Add(time.Hour))
	v.Publish(start.Add(2 * time.Hour))

	select {
	case got := <-ch:
		if got != 2 {
			t.Fatalf("expected the newest version 2, got %d", got)
		}
	default:
		t.Fatal("expected a notification")
	}

	select {
	case got := <-ch:
		t.Fatalf("unexpected extra notification %d", got)
	default:
	}

	version, asOf := v.Current()
	if version != 2 || !asOf.Equal(start.Add(2*time.Hour)) {
		t.Fatalf("unexpected state %d %v", version, asOf)
	}
}
