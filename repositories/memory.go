package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/hireboard_notifications/apperrors"
	"github.com/HSouheill/hireboard_notifications/models"
)

// MemoryNotificationStore is a process-local NotificationStore used by tests
// and by ENV=development when no MONGO_URI is configured.
type MemoryNotificationStore struct {
	mu       sync.RWMutex
	records  map[primitive.ObjectID]*models.Notification
	validate *validator.Validate
	now      func() time.Time
}

func NewMemoryNotificationStore(validate *validator.Validate) *MemoryNotificationStore {
	return &MemoryNotificationStore{
		records:  make(map[primitive.ObjectID]*models.Notification),
		validate: validate,
		now:      time.Now,
	}
}

// SetClock replaces the timestamp source.
func (s *MemoryNotificationStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryNotificationStore) Create(_ context.Context, n *models.Notification) (primitive.ObjectID, error) {
	if err := validateNotification(s.validate, n); err != nil {
		return primitive.NilObjectID, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	n.ID = primitive.NewObjectID()
	n.IsRead = false
	n.CreatedAt = now
	n.UpdatedAt = now

	cp := *n
	s.records[n.ID] = &cp
	return n.ID, nil
}

func (s *MemoryNotificationStore) ListByOwner(_ context.Context, audience models.Audience, ownerID string, q models.ListQuery) ([]models.Notification, models.PageMeta, error) {
	q = q.Normalize(models.DefaultPageSize, models.MaxPageSize)

	s.mu.RLock()
	owned := make([]models.Notification, 0)
	for _, n := range s.records {
		if n.Audience == audience && n.OwnerID == ownerID {
			owned = append(owned, *n)
		}
	}
	s.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		c := compareField(owned[i], owned[j], q.Sort.Field)
		if c == 0 {
			c = compareIDs(owned[i].ID, owned[j].ID)
		}
		if q.Sort.Desc {
			return c > 0
		}
		return c < 0
	})

	meta := models.NewPageMeta(q.Current, q.PageSize, int64(len(owned)))
	start := meta.Offset()
	if start >= meta.Total {
		return []models.Notification{}, meta, nil
	}
	end := start + int64(q.PageSize)
	if end > meta.Total {
		end = meta.Total
	}
	return owned[start:end], meta, nil
}

func (s *MemoryNotificationStore) MarkRead(_ context.Context, audience models.Audience, id, ownerID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.NotFound("notification not found")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.records[objID]
	if !ok || n.Audience != audience || n.OwnerID != ownerID {
		return apperrors.NotFound("notification not found")
	}
	if !n.IsRead {
		n.IsRead = true
		n.UpdatedAt = s.now().UTC()
	}
	return nil
}

func (s *MemoryNotificationStore) MarkAllRead(_ context.Context, audience models.Audience, ownerID string) error {
	s.setAllRead(audience, ownerID, true)
	return nil
}

func (s *MemoryNotificationStore) MarkAllUnread(_ context.Context, audience models.Audience, ownerID string) error {
	s.setAllRead(audience, ownerID, false)
	return nil
}

func (s *MemoryNotificationStore) setAllRead(audience models.Audience, ownerID string, read bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	for _, n := range s.records {
		if n.Audience == audience && n.OwnerID == ownerID && n.IsRead != read {
			n.IsRead = read
			n.UpdatedAt = now
		}
	}
}

func (s *MemoryNotificationStore) CountUnread(_ context.Context, audience models.Audience, ownerID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, n := range s.records {
		if n.Audience == audience && n.OwnerID == ownerID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func compareField(a, b models.Notification, field string) int {
	switch field {
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "isRead":
		return compareBool(a.IsRead, b.IsRead)
	case "status":
		return compareString(string(a.Status), string(b.Status))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareIDs(a, b primitive.ObjectID) int {
	return compareString(a.Hex(), b.Hex())
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// MemoryTokenStore is the process-local TokenStore counterpart.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*models.DeviceToken
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]*models.DeviceToken)}
}

func (s *MemoryTokenStore) FindByToken(_ context.Context, token string) (*models.DeviceToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dt, ok := s.tokens[token]
	if !ok {
		return nil, apperrors.NotFound("device token not found")
	}
	cp := *dt
	return &cp, nil
}

func (s *MemoryTokenStore) Upsert(_ context.Context, userID, token, platform string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dt, ok := s.tokens[token]
	if !ok {
		dt = &models.DeviceToken{ID: primitive.NewObjectID(), Token: token, CreatedAt: at.UTC()}
		s.tokens[token] = dt
	}
	dt.UserID = userID
	dt.LastActive = at.UTC()
	if platform != "" {
		dt.Platform = platform
	}
	return nil
}

func (s *MemoryTokenStore) TokensFor(_ context.Context, userID string) ([]models.DeviceToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.DeviceToken{}
	for _, dt := range s.tokens {
		if dt.UserID == userID {
			out = append(out, *dt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

func (s *MemoryTokenStore) DeleteTokens(_ context.Context, tokens []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, t := range tokens {
		if _, ok := s.tokens[t]; ok {
			delete(s.tokens, t)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryTokenStore) DeleteUserToken(_ context.Context, userID, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dt, ok := s.tokens[token]
	if !ok || dt.UserID != userID {
		return 0, nil
	}
	delete(s.tokens, token)
	return 1, nil
}
