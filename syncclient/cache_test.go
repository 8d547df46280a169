package syncclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/HSouheill/hireboard_notifications/models"
)

func count(n int64) *int64 { return &n }

func install(c *ReconcilingCache, gen uint64, items []Notification, unread *int64) {
	c.Replace(ServerState{
		Generation: gen,
		Page:       1,
		Items:      items,
		Meta:       models.NewPageMeta(1, 10, int64(len(items))),
		Unread:     unread,
		FetchedAt:  time.Now(),
	})
}

func readItems(ids ...string) []Notification {
	out := unreadItems(ids...)
	for i := range out {
		out[i].IsRead = true
	}
	return out
}

func TestCache_CounterNeverNegative(t *testing.T) {
	c := NewReconcilingCache()
	install(c, c.BeginFetch(), unreadItems("a"), count(0))

	assert.True(t, c.MarkReadOptimistic("a"))
	assert.Zero(t, c.Snapshot().Unread)

	c.ReplaceUnread(-3)
	assert.Zero(t, c.Snapshot().Unread)
}

func TestCache_UnknownIDDoesNotMoveCounter(t *testing.T) {
	c := NewReconcilingCache()
	install(c, c.BeginFetch(), unreadItems("a"), count(4))

	assert.False(t, c.MarkReadOptimistic("zzz"))
	assert.Equal(t, int64(4), c.Snapshot().Unread)
}

func TestCache_ReplaceInstallsServerCounter(t *testing.T) {
	c := NewReconcilingCache()
	install(c, c.BeginFetch(), unreadItems("a", "b"), count(2))
	c.MarkReadOptimistic("a")
	c.ResolveRead("a", false)
	assert.Equal(t, int64(1), c.Snapshot().Unread)

	install(c, c.BeginFetch(), unreadItems("a", "b"), count(2))
	s := c.Snapshot()
	assert.False(t, s.Items[0].IsRead)
	assert.Equal(t, int64(2), s.Unread)

	// Without a count the cached one is kept.
	install(c, c.BeginFetch(), unreadItems("a"), nil)
	assert.Equal(t, int64(2), c.Snapshot().Unread)
}

func TestCache_ReplaceKeepsInFlightReads(t *testing.T) {
	c := NewReconcilingCache()
	install(c, c.BeginFetch(), unreadItems("a", "b"), count(2))
	c.MarkReadOptimistic("a")

	// A fetch that raced the server write still reports a as unread.
	install(c, c.BeginFetch(), unreadItems("a", "b"), count(2))
	s := c.Snapshot()
	assert.True(t, s.Items[0].IsRead)
	assert.False(t, s.Items[1].IsRead)
	assert.Equal(t, int64(1), s.Unread)
}

func TestCache_FetchStartedBeforeResolutionKeepsRead(t *testing.T) {
	c := NewReconcilingCache()
	install(c, c.BeginFetch(), unreadItems("a", "b"), count(2))

	early := c.BeginFetch()
	c.MarkReadOptimistic("a")
	c.ResolveRead("a", true)

	// Sent before the write landed, installed after it resolved.
	install(c, early, unreadItems("a", "b"), count(2))
	s := c.Snapshot()
	assert.True(t, s.Items[0].IsRead)
	assert.Equal(t, int64(1), s.Unread)

	// A fetch sent after the resolution is authoritative again.
	install(c, c.BeginFetch(), readItems("a"), count(0))
	install(c, c.BeginFetch(), unreadItems("a"), count(1))
	s = c.Snapshot()
	assert.False(t, s.Items[0].IsRead, "mark dropped once a later fetch was installed")
	assert.Equal(t, int64(1), s.Unread)
}

func TestCache_MarkAllOverlaysRacingFetch(t *testing.T) {
	c := NewReconcilingCache()
	install(c, c.BeginFetch(), unreadItems("a", "b"), count(2))

	early := c.BeginFetch()
	c.MarkAllReadOptimistic()
	install(c, early, unreadItems("a", "b"), count(2))
	s := c.Snapshot()
	assert.True(t, s.Items[0].IsRead)
	assert.True(t, s.Items[1].IsRead)
	assert.Zero(t, s.Unread)

	c.ResolveAllRead(true)
	install(c, early, unreadItems("a", "b"), count(2))
	assert.Zero(t, c.Snapshot().Unread)

	install(c, c.BeginFetch(), unreadItems("c"), count(1))
	s = c.Snapshot()
	assert.False(t, s.Items[0].IsRead)
	assert.Equal(t, int64(1), s.Unread)
}

func TestCache_FailedMarkAllYieldsToServer(t *testing.T) {
	c := NewReconcilingCache()
	install(c, c.BeginFetch(), unreadItems("a"), count(1))

	early := c.BeginFetch()
	c.MarkAllReadOptimistic()
	c.ResolveAllRead(false)
	install(c, early, unreadItems("a"), count(1))
	assert.Equal(t, int64(1), c.Snapshot().Unread)
}

func TestCache_SnapshotIsACopy(t *testing.T) {
	c := NewReconcilingCache()
	install(c, c.BeginFetch(), unreadItems("a"), nil)

	s := c.Snapshot()
	s.Items[0].IsRead = true
	assert.False(t, c.Snapshot().Items[0].IsRead)
}
