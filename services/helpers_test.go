package services

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/hireboard_notifications/models"
	"github.com/HSouheill/hireboard_notifications/repositories"
	"github.com/HSouheill/hireboard_notifications/utils"
)

// fakeProvider records every multicast and answers from codes.
type fakeProvider struct {
	mu    sync.Mutex
	calls [][]string
	codes map[string]string // token -> error code, missing means success
	err   error
	// answered is how many tokens get a verdict before err is returned.
	answered int
	block    bool
}

func (p *fakeProvider) SendMulticast(ctx context.Context, tokens []string, _ models.PushPayload) ([]TokenResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, append([]string(nil), tokens...))
	p.mu.Unlock()

	if p.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if p.err != nil && p.answered == 0 {
		return nil, p.err
	}
	out := make([]TokenResult, 0, len(tokens))
	for _, tok := range tokens {
		code, failed := p.codes[tok]
		out = append(out, TokenResult{Token: tok, Success: !failed, ErrorCode: code})
	}
	if p.err != nil {
		return out[:p.answered], p.err
	}
	return out, nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type fakePublisher struct {
	mu        sync.Mutex
	published []models.Notification
	err       error
}

func (p *fakePublisher) PublishNotification(_ context.Context, n models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, n)
	return p.err
}

type harness struct {
	notifications *repositories.MemoryNotificationStore
	tokens        *repositories.MemoryTokenStore
	registry      *TokenRegistry
	provider      *fakeProvider
	dispatcher    *PushDispatcher
	publisher     *fakePublisher
	log           *logrus.Logger
	hook          *test.Hook
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	h := &harness{
		notifications: repositories.NewMemoryNotificationStore(utils.NewValidator()),
		tokens:        repositories.NewMemoryTokenStore(),
		provider:      &fakeProvider{codes: map[string]string{}},
		publisher:     &fakePublisher{},
		log:           log,
		hook:          hook,
	}
	h.registry = NewTokenRegistry(h.tokens, LastWriterWins{}, log)
	h.dispatcher = NewPushDispatcher(h.registry, h.provider, DefaultPushTimeout, log)
	return h
}

func (h *harness) register(t *testing.T, userID string, tokens ...string) {
	t.Helper()
	for _, tok := range tokens {
		require.NoError(t, h.registry.Register(context.Background(), userID, tok, "android"))
	}
}
