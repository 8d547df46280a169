package syncclient

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HSouheill/hireboard_notifications/models"
)

// Default cadence of the client protocol.
const (
	DefaultMinInterval        = 120 * time.Second
	DefaultRefreshInterval    = 300 * time.Second
	DefaultUnreadPollInterval = 5 * time.Minute
)

type Options struct {
	// MinInterval gates user-triggered fetches of the same page.
	MinInterval time.Duration
	// RefreshInterval gates background refreshes.
	RefreshInterval    time.Duration
	UnreadPollInterval time.Duration
	PageSize           int
	Now                func() time.Time
	Log                logrus.FieldLogger
}

// OptionsFromSettings builds Options from the server's advertised cadence.
// Zero values fall back to the defaults.
func OptionsFromSettings(s models.SyncSettings) Options {
	return Options{
		MinInterval:        time.Duration(s.MinFetchIntervalSeconds) * time.Second,
		RefreshInterval:    time.Duration(s.RefreshIntervalSeconds) * time.Second,
		UnreadPollInterval: time.Duration(s.UnreadPollIntervalSeconds) * time.Second,
		PageSize:           s.PageSize,
	}
}

func (o Options) withDefaults() Options {
	if o.MinInterval <= 0 {
		o.MinInterval = DefaultMinInterval
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = DefaultRefreshInterval
	}
	if o.UnreadPollInterval <= 0 {
		o.UnreadPollInterval = DefaultUnreadPollInterval
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		o.Log = l
	}
	return o
}

// Syncer keeps a ReconcilingCache in step with the server without polling
// it more than the configured intervals allow.
type Syncer struct {
	src   Source
	cache *ReconcilingCache
	opts  Options

	fetchMu   sync.Mutex // serializes page fetches
	mu        sync.Mutex
	lastFetch time.Time
	lastPage  int
	stale     bool
}

func NewSyncer(src Source, opts Options) *Syncer {
	return &Syncer{src: src, cache: NewReconcilingCache(), opts: opts.withDefaults()}
}

func (s *Syncer) Cache() *ReconcilingCache {
	return s.cache
}

// Fetch loads page unless the same page was fetched less than MinInterval
// ago and force is false. It reports whether the server was queried. On
// error the cached state is returned alongside the error.
func (s *Syncer) Fetch(ctx context.Context, page int, force bool) (State, bool, error) {
	return s.fetch(ctx, page, force, s.opts.MinInterval)
}

// Refresh re-fetches the last viewed page on the background cadence.
func (s *Syncer) Refresh(ctx context.Context) (State, bool, error) {
	s.mu.Lock()
	page := s.lastPage
	s.mu.Unlock()
	if page < 1 {
		page = 1
	}
	return s.fetch(ctx, page, false, s.opts.RefreshInterval)
}

func (s *Syncer) due(page int, force bool, interval time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return force || s.stale || s.lastFetch.IsZero() || page != s.lastPage ||
		s.opts.Now().Sub(s.lastFetch) >= interval
}

func (s *Syncer) fetch(ctx context.Context, page int, force bool, interval time.Duration) (State, bool, error) {
	if page < 1 {
		page = 1
	}
	if !s.due(page, force, interval) {
		return s.cache.Snapshot(), false, nil
	}

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()
	// A concurrent caller may have fetched while we waited.
	if !s.due(page, force, interval) {
		return s.cache.Snapshot(), false, nil
	}

	gen := s.cache.BeginFetch()
	result, err := s.src.FetchPage(ctx, page, s.opts.PageSize)
	if err != nil {
		s.opts.Log.WithError(err).WithField("page", page).Warn("notification fetch failed, serving cached state")
		return s.cache.Snapshot(), true, err
	}

	now := s.opts.Now()
	snapshot := ServerState{
		Generation: gen,
		Page:       page,
		Items:      result.Result,
		Meta:       result.Meta,
		FetchedAt:  now,
	}
	// The counter is reconciled with the page so the two never disagree.
	if count, err := s.src.UnreadCount(ctx); err != nil {
		s.opts.Log.WithError(err).Warn("unread count fetch failed, keeping cached count")
	} else {
		snapshot.Unread = &count
	}
	s.cache.Replace(snapshot)

	s.mu.Lock()
	s.lastFetch = now
	s.lastPage = page
	s.stale = false
	s.mu.Unlock()

	return s.cache.Snapshot(), true, nil
}

// RefreshUnreadCount replaces the cached counter with the server's.
func (s *Syncer) RefreshUnreadCount(ctx context.Context) (int64, error) {
	count, err := s.src.UnreadCount(ctx)
	if err != nil {
		s.opts.Log.WithError(err).Warn("unread count fetch failed, serving cached count")
		return s.cache.Snapshot().Unread, err
	}
	s.cache.ReplaceUnread(count)
	return count, nil
}

// OnForegroundPush reacts to a push received while the app is open: page 1
// and the unread count are fetched immediately, bypassing the interval.
func (s *Syncer) OnForegroundPush(ctx context.Context) error {
	_, _, err := s.Fetch(ctx, 1, true)
	return err
}

// MarkAsRead updates the cache before the server call resolves. A failed
// call leaves the cache stale so the next fetch goes through.
func (s *Syncer) MarkAsRead(ctx context.Context, id string) error {
	s.cache.MarkReadOptimistic(id)
	err := s.src.MarkRead(ctx, id)
	s.cache.ResolveRead(id, err == nil)
	if err != nil {
		s.markStale()
		s.opts.Log.WithError(err).WithField("notificationId", id).Warn("mark read failed")
	}
	return err
}

func (s *Syncer) MarkAllAsRead(ctx context.Context) error {
	s.cache.MarkAllReadOptimistic()
	err := s.src.MarkAllRead(ctx)
	s.cache.ResolveAllRead(err == nil)
	if err != nil {
		s.markStale()
		s.opts.Log.WithError(err).Warn("mark all read failed")
		return err
	}
	return nil
}

func (s *Syncer) markStale() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// Run drives the background cadence until ctx ends: page refresh every
// RefreshInterval, unread count every UnreadPollInterval, and a forced
// page-1 fetch for every value received on pushes.
func (s *Syncer) Run(ctx context.Context, pushes <-chan Event) error {
	refresh := time.NewTicker(s.opts.RefreshInterval)
	defer refresh.Stop()
	unread := time.NewTicker(s.opts.UnreadPollInterval)
	defer unread.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-refresh.C:
			_, _, _ = s.Refresh(ctx)
		case <-unread.C:
			_, _ = s.RefreshUnreadCount(ctx)
		case ev, ok := <-pushes:
			if !ok {
				pushes = nil
				continue
			}
			if ev.Type == EventNotificationCreated {
				_ = s.OnForegroundPush(ctx)
			}
		}
	}
}
