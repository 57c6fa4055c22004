package main

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"noise-stream/internal/stream"
)

type sessionEntry struct {
	ID      string
	Remote  string
	Started time.Time
	sess    *stream.Session
}

// registry tracks live stream sessions. It holds no generation state.
type registry struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
	wg      sync.WaitGroup
	served  int64
	closed  bool
}

func newRegistry() *registry {
	return &registry{entries: map[string]*sessionEntry{}}
}

// add registers sess. It reports false once wait has been called; the
// caller must then not run the session.
func (r *registry) add(remote string, sess *stream.Session) (*sessionEntry, bool) {
	e := &sessionEntry{ID: newUUID(), Remote: remote, Started: time.Now().UTC(), sess: sess}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, false
	}
	r.wg.Add(1)
	r.entries[e.ID] = e
	r.served++
	r.mu.Unlock()
	log.Printf("session %s opened from %s", e.ID, remote)
	return e, true
}

func (r *registry) remove(e *sessionEntry) {
	r.mu.Lock()
	_, ok := r.entries[e.ID]
	delete(r.entries, e.ID)
	r.mu.Unlock()
	if ok {
		log.Printf("session %s closed after %d frames", e.ID, e.sess.Ticks())
		r.wg.Done()
	}
}

// list returns a snapshot of live sessions, oldest first.
func (r *registry) list() []sessionInfo {
	r.mu.RLock()
	out := make([]sessionInfo, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, sessionInfo{
			ID:      e.ID,
			Remote:  e.Remote,
			Started: e.Started,
			Length:  e.sess.Length(),
			Params:  e.sess.Params(),
			Ticks:   e.sess.Ticks(),
			State:   e.sess.State().String(),
		})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}

func (r *registry) count() (live int, served int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries), r.served
}

// wait closes the registry to new sessions and blocks until every added
// session has been removed.
func (r *registry) wait() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}

func newUUID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(b[0:4]),
		binary.BigEndian.Uint16(b[4:6]),
		binary.BigEndian.Uint16(b[6:8]),
		binary.BigEndian.Uint16(b[8:10]),
		b[10:16])
}
