// Package membership runs the periodic liveness probe and primary
// failover, and triggers journal replay for recovering replicas.
//
// Grounded on Konstantsiy-casual-raft/raft-server/server_elections.go's
// ticker-driven periodic loop and atomic leader-index tracking, adapted
// from term-voting to spec.md §4.D's plain positional failover (no
// consensus — "the proxy itself is the arbiter"), and on
// original_source/.../ProxyServer.java's checkServers/replayJournalTo for
// the replay-on-recovery trigger.
package membership

import (
	"net"
	"sync/atomic"
	"time"

	"msgproxy/internal/backend"
	"msgproxy/internal/backendset"
	"msgproxy/internal/journal"
	"msgproxy/internal/log"
)

const tickInterval = 5 * time.Second

type Manager struct {
	set     *backendset.Set
	journal *journal.Journal
	primary int32 // atomic index p into the backend set

	stop chan struct{}
}

func New(set *backendset.Set, j *journal.Journal) *Manager {
	return &Manager{
		set:     set,
		journal: j,
		stop:    make(chan struct{}),
	}
}

// Primary returns the current primary index p, or -1 if the backend set
// is empty.
func (m *Manager) Primary() int {
	if m.set.Len() == 0 {
		return -1
	}
	return int(atomic.LoadInt32(&m.primary))
}

// Run starts the 5s heartbeat loop. It blocks until Stop is called, so
// callers run it in its own goroutine.
func (m *Manager) Run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.tick()
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) Stop() {
	close(m.stop)
}

// tick probes every currently-registered backend, following spec.md
// §4.D exactly. The backend set is snapshotted first so iteration
// tolerates concurrent REGISTER appends without holding a lock across
// network I/O.
func (m *Manager) tick() {
	backends := m.set.Snapshot()
	n := len(backends)
	if n == 0 {
		return
	}

	for i, b := range backends {
		ok := b.Probe()
		primaryIdx := int(atomic.LoadInt32(&m.primary))

		switch {
		case !ok:
			b.MarkDead()
			if i == primaryIdx {
				newPrimary := (i + 1) % n
				atomic.StoreInt32(&m.primary, int32(newPrimary))
				log.Infof("membership: primary %s down, failing over to index %d", b.Addr(), newPrimary)
			}

		case !b.IsSynced() && i != primaryIdx && n > 1:
			var primaryBackend *backend.Backend
			if primaryIdx >= 0 && primaryIdx < n {
				primaryBackend = backends[primaryIdx]
			}
			if m.replay(b, primaryBackend) {
				b.MarkSynced()
				b.MarkAlive()
				log.Infof("membership: %s resynced and rejoined rotation", b.Addr())
			} else {
				b.MarkDead()
			}
			// On replay error, b stays dead/fresh; retried next tick.

		case b.IsSynced():
			b.MarkAlive()
		}
	}
}

// replay sends every journal entry, in order, to b. It does not await
// ACKs (spec.md §4.D: "intended to be idempotent on the backend side").
// A transport error aborts the replay for this tick, leaving b fresh.
func (m *Manager) replay(b *backend.Backend, primary *backend.Backend) bool {
	entries := m.journal.TailFrom(0)

	conn, err := net.DialTimeout("tcp", b.Addr(), time.Second)
	if err != nil {
		log.Errorf("membership: replay dial to %s failed: %v", b.Addr(), err)
		return false
	}
	defer conn.Close()

	for _, entry := range entries {
		if _, err := conn.Write([]byte(entry + "\n")); err != nil {
			log.Errorf("membership: replay write to %s failed: %v", b.Addr(), err)
			return false
		}
	}
	return true
}
