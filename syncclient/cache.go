package syncclient

import (
	"sync"
	"time"

	"github.com/HSouheill/hireboard_notifications/models"
)

// State is a point-in-time copy of the cache.
type State struct {
	Page      int
	Items     []Notification
	Meta      models.PageMeta
	Unread    int64
	FetchedAt time.Time
}

// ServerState is one authoritative read of the inbox. Generation comes from
// BeginFetch, called before the request was sent. Unread is nil when the
// count could not be read alongside the page.
type ServerState struct {
	Generation uint64
	Page       int
	Items      []Notification
	Meta       models.PageMeta
	Unread     *int64
	FetchedAt  time.Time
}

// readMark is an optimistic read the server may not reflect yet. Once the
// server call succeeds, resolvedAt is the newest fetch generation that may
// have started before the write landed.
type readMark struct {
	inFlight   bool
	resolvedAt uint64
}

// covers reports whether a snapshot from fetch generation gen can predate
// the write behind m.
func (m *readMark) covers(gen uint64) bool {
	return m != nil && (m.inFlight || gen <= m.resolvedAt)
}

// ReconcilingCache holds the last server page plus local optimistic edits.
// A server snapshot replaces everything except reads it cannot have seen.
type ReconcilingCache struct {
	mu      sync.RWMutex
	state   State
	gen     uint64
	pending map[string]*readMark
	all     *readMark
}

func NewReconcilingCache() *ReconcilingCache {
	return &ReconcilingCache{pending: make(map[string]*readMark)}
}

// BeginFetch returns the generation of a fetch about to be sent.
func (c *ReconcilingCache) BeginFetch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return c.gen
}

// Replace installs a server snapshot. Items with an optimistic read the
// snapshot may predate stay read, and the server counter is lowered by the
// same amount. Marks no later snapshot can predate are dropped.
func (c *ReconcilingCache) Replace(s ServerState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	allRead := c.all.covers(s.Generation)
	items := make([]Notification, len(s.Items))
	copy(items, s.Items)
	var flipped int64
	for i := range items {
		if items[i].IsRead {
			continue
		}
		if allRead || c.pending[items[i].ID].covers(s.Generation) {
			items[i].IsRead = true
			flipped++
		}
	}

	for id, m := range c.pending {
		if !m.inFlight && s.Generation > m.resolvedAt {
			delete(c.pending, id)
		}
	}
	if c.all != nil && !c.all.inFlight && s.Generation > c.all.resolvedAt {
		c.all = nil
	}

	c.state.Page = s.Page
	c.state.Items = items
	c.state.Meta = s.Meta
	c.state.FetchedAt = s.FetchedAt
	if s.Unread != nil {
		unread := *s.Unread - flipped
		if allRead || unread < 0 {
			unread = 0
		}
		c.state.Unread = unread
	}
}

// ReplaceUnread installs a server unread count read on its own.
func (c *ReconcilingCache) ReplaceUnread(count int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if count < 0 || (c.all != nil && c.all.inFlight) {
		count = 0
	}
	c.state.Unread = count
}

// MarkReadOptimistic flips id to read and decrements the unread counter,
// never below zero. It reports whether a cached unread item was flipped;
// the counter only moves in that case.
func (c *ReconcilingCache) MarkReadOptimistic(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending[id] = &readMark{inFlight: true}
	for i := range c.state.Items {
		if c.state.Items[i].ID != id {
			continue
		}
		if c.state.Items[i].IsRead {
			return false
		}
		c.state.Items[i].IsRead = true
		if c.state.Unread > 0 {
			c.state.Unread--
		}
		return true
	}
	return false
}

// ResolveRead ends the server call for id. A failed call drops the mark so
// the next snapshot wins; a successful one keeps it until a fetch started
// after now is installed.
func (c *ReconcilingCache) ResolveRead(id string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, found := c.pending[id]
	if !found {
		return
	}
	if !ok {
		delete(c.pending, id)
		return
	}
	m.inFlight = false
	m.resolvedAt = c.gen
}

// MarkAllReadOptimistic flips every cached item and zeroes the counter.
func (c *ReconcilingCache) MarkAllReadOptimistic() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = &readMark{inFlight: true}
	for i := range c.state.Items {
		c.state.Items[i].IsRead = true
	}
	c.state.Unread = 0
}

// ResolveAllRead is ResolveRead for MarkAllReadOptimistic.
func (c *ReconcilingCache) ResolveAllRead(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.all == nil {
		return
	}
	if !ok {
		c.all = nil
		return
	}
	c.all.inFlight = false
	c.all.resolvedAt = c.gen
}

func (c *ReconcilingCache) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.state
	s.Items = make([]Notification, len(c.state.Items))
	copy(s.Items, c.state.Items)
	return s
}
