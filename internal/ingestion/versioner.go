package ingestion

import (
	"sync"
	"time"
)

// Versioner hands out the dataset version token. A completed ingestion cycle
// that stored new rows publishes a new version together with the time it
// finished, which becomes the as-of time of every report built from it.
type Versioner struct {
	mu      sync.RWMutex
	version uint64
	asOf    time.Time
	subs    []chan uint64
}

// NewVersioner starts at version 0, as of start.
func NewVersioner(start time.Time) *Versioner {
	return &Versioner{asOf: start.UTC()}
}

// Publish bumps the version and notifies subscribers without blocking. A
// subscriber that has not drained its previous notification only sees the
// newest version.
func (v *Versioner) Publish(asOf time.Time) uint64 {
	v.mu.Lock()
	v.version++
	v.asOf = asOf.UTC()
	version := v.version
	subs := append([]chan uint64(nil), v.subs...)
	v.mu.Unlock()

	for _, ch := range subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- version:
		default:
		}
	}
	return version
}

func (v *Versioner) Current() (uint64, time.Time) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version, v.asOf
}

// Subscribe returns a channel that receives published versions.
func (v *Versioner) Subscribe() <-chan uint64 {
	ch := make(chan uint64, 1)
	v.mu.Lock()
	v.subs = append(v.subs, ch)
	v.mu.Unlock()
	return ch
}
