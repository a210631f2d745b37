// Package dispatch implements the round-robin forwarding of client
// requests to a live backend, with bounded retry across the backend set.
//
// Grounded on internal/bitcask_master_slaves/proxy/proxy/load_balancing.go
// (cursor-based selection over a node list under a mutex), stripped of
// its smooth-weighted-round-robin bookkeeping since spec.md specifies a
// plain fetch-and-increment cursor, and on
// original_source/.../ProxyServer.java's forwardToServers retry loop for
// the fail-and-advance-to-next-backend behavior.
package dispatch

import (
	"sync/atomic"

	"msgproxy/internal/backendset"
	"msgproxy/internal/errno"
	"msgproxy/internal/journal"
	"msgproxy/internal/log"
)

type Dispatcher struct {
	set     *backendset.Set
	journal *journal.Journal
	cursor  uint64 // atomic fetch-and-increment round-robin cursor c
}

func New(set *backendset.Set, j *journal.Journal) *Dispatcher {
	return &Dispatcher{set: set, journal: j}
}

// Forward implements spec.md §4.E:
//  1. snapshot n = |S|.
//  2. append the request to the journal unconditionally; then, if n = 0,
//     return the no-backends token.
//  3. try up to n candidates via the shared round-robin cursor, skipping
//     dead backends and retrying through sendAndAwaitAck's own retries.
//  4. if every candidate is exhausted, return the all-down token.
func (d *Dispatcher) Forward(request string) string {
	n := d.set.Len()

	// The journal append happens before any forward attempt, even when
	// there is nothing to forward to (spec.md §8, Open Question 1).
	d.journal.Append(request)

	if n == 0 {
		return errno.TokenNoBackends
	}

	for attempt := 0; attempt < n; attempt++ {
		idx := int(atomic.AddUint64(&d.cursor, 1)-1) % n
		b := d.set.At(idx)
		if b == nil || !b.IsAlive() {
			continue
		}

		response, err := b.SendAndAwaitAck(request)
		if err != nil {
			log.Errorf("dispatch: %s failed, marking dead: %v", b.Addr(), err)
			b.MarkDead()
			continue
		}
		return response
	}

	return errno.TokenAllBackendsDown
}
