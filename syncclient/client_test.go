package syncclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HSouheill/hireboard_notifications/controllers"
	"github.com/HSouheill/hireboard_notifications/middleware"
	"github.com/HSouheill/hireboard_notifications/models"
	"github.com/HSouheill/hireboard_notifications/repositories"
	"github.com/HSouheill/hireboard_notifications/routes"
	"github.com/HSouheill/hireboard_notifications/services"
	"github.com/HSouheill/hireboard_notifications/utils"
	"github.com/HSouheill/hireboard_notifications/websocket"
)

const testSecret = "syncclient-secret"

type server struct {
	url        string
	hub        *websocket.Hub
	applicants *services.ApplicantService
	recruiters *services.RecruiterService
}

func startServer(t *testing.T) *server {
	t.Helper()
	log, _ := test.NewNullLogger()
	validate := utils.NewValidator()

	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.NewHub(log)
	go hub.Run(ctx)
	publisher := websocket.NewPublisher(hub, nil, "", log)

	store := repositories.NewMemoryNotificationStore(validate)
	registry := services.NewTokenRegistry(repositories.NewMemoryTokenStore(), services.LastWriterWins{}, log)
	dispatcher := services.NewPushDispatcher(registry, nil, time.Second, log)

	s := &server{
		hub:        hub,
		applicants: services.NewNotificationService(services.ApplicantAudience(), store, dispatcher, publisher, validate, log),
		recruiters: services.NewNotificationService(services.RecruiterAudience(), store, dispatcher, publisher, validate, log),
	}

	e := echo.New()
	e.Validator = &utils.CustomValidator{Validator: validate}
	e.HTTPErrorHandler = controllers.HTTPErrorHandler(log)
	routes.SetupRoutes(e, routes.Dependencies{
		JWTSecret:  testSecret,
		Applicants: s.applicants,
		Recruiters: s.recruiters,
		Registry:   registry,
		Hub:        hub,
		Paging:     controllers.Paging{DefaultPageSize: 10, MaxPageSize: 50},
		Sync:       models.SyncSettings{MinFetchIntervalSeconds: 60, RefreshIntervalSeconds: 240, UnreadPollIntervalSeconds: 600, PageSize: 20},
		Log:        log,
	})

	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	s.url = srv.URL
	return s
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := middleware.GenerateJWT(testSecret, userID, userID+"@example.com", role, time.Hour)
	require.NoError(t, err)
	return tok
}

func offered(applicant, app string) models.ApplicationStatusChanged {
	return models.ApplicationStatusChanged{
		ApplicantID:   applicant,
		ApplicationID: app,
		JobID:         "job-1",
		JobName:       "Go Engineer",
		CompanyName:   "Acme",
		Status:        models.StatusOffered,
	}
}

func TestAPIClient_ApplicantRoundTrip(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()
	client := NewAPIClient(srv.url, models.AudienceApplicant, bearer(t, "alice", middleware.RoleApplicant))

	require.NoError(t, client.RegisterDevice(ctx, "phone-1", "android"))

	n, err := srv.applicants.Notify(ctx, "alice", offered("alice", "app-1"))
	require.NoError(t, err)
	_, err = srv.applicants.Notify(ctx, "alice", offered("alice", "app-2"))
	require.NoError(t, err)

	page, err := client.FetchPage(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Result, 2)
	assert.Equal(t, int64(2), page.Meta.Total)
	assert.Equal(t, "alice", page.Result[0].UserID)
	assert.Equal(t, "app-2", page.Result[0].ApplicationID)

	count, err := client.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, client.MarkRead(ctx, n.ID.Hex()))
	count, _ = client.UnreadCount(ctx)
	assert.Equal(t, int64(1), count)

	require.NoError(t, client.MarkAllRead(ctx))
	count, _ = client.UnreadCount(ctx)
	assert.Zero(t, count)
}

func TestAPIClient_Errors(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	n, err := srv.applicants.Notify(ctx, "alice", offered("alice", "app-1"))
	require.NoError(t, err)

	bob := NewAPIClient(srv.url, models.AudienceApplicant, bearer(t, "bob", middleware.RoleApplicant))
	err = bob.MarkRead(ctx, n.ID.Hex())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	wrongAudience := NewAPIClient(srv.url, models.AudienceRecruiter, bearer(t, "alice", middleware.RoleApplicant))
	_, err = wrongAudience.UnreadCount(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestSyncer_AgainstServer(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()
	hr := NewAPIClient(srv.url, models.AudienceRecruiter, bearer(t, "hr-1", middleware.RoleHR))
	syncer := NewSyncer(hr, Options{PageSize: 5})

	years := 3.0
	_, err := srv.recruiters.Notify(ctx, "hr-1", models.ApplicationCreated{
		HRID:              "hr-1",
		ApplicationID:     "app-9",
		JobID:             "job-9",
		JobName:           "SRE",
		CandidateName:     "Sam",
		CandidateEmail:    "sam@example.com",
		YearsOfExperience: &years,
	})
	require.NoError(t, err)

	state, queried, err := syncer.Fetch(ctx, 1, false)
	require.NoError(t, err)
	assert.True(t, queried)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "hr-1", state.Items[0].HRID)
	assert.Equal(t, "Sam", state.Items[0].CandidateName)

	_, err = syncer.RefreshUnreadCount(ctx)
	require.NoError(t, err)
	require.NoError(t, syncer.MarkAsRead(ctx, state.Items[0].ID))
	assert.Zero(t, syncer.Cache().Snapshot().Unread)

	count, err := hr.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPushListener_ReceivesNotifications(t *testing.T) {
	srv := startServer(t)
	log, _ := test.NewNullLogger()
	listener := NewPushListener(srv.url, models.AudienceApplicant, bearer(t, "alice", middleware.RoleApplicant), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := listener.Events(ctx)

	select {
	case ev := <-events:
		assert.Equal(t, EventConnected, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no connected event")
	}

	_, err := srv.applicants.Notify(context.Background(), "alice", offered("alice", "app-1"))
	require.NoError(t, err)

	select {
	case ev := <-events:
		require.Equal(t, EventNotificationCreated, ev.Type)
		n, err := ev.Notification()
		require.NoError(t, err)
		assert.Equal(t, "app-1", n.ApplicationID)
		assert.Equal(t, "alice", n.UserID)
		assert.Contains(t, n.Message, "has received an offer")
	case <-time.After(2 * time.Second):
		t.Fatal("no notification event")
	}

	cancel()
	for range events {
	}
}

func TestPushListener_RecruiterEventCarriesHRID(t *testing.T) {
	srv := startServer(t)
	log, _ := test.NewNullLogger()
	listener := NewPushListener(srv.url, models.AudienceRecruiter, bearer(t, "hr-1", middleware.RoleHR), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := listener.Events(ctx)

	select {
	case ev := <-events:
		require.Equal(t, EventConnected, ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no connected event")
	}

	_, err := srv.recruiters.Notify(context.Background(), "hr-1", models.ApplicationCreated{
		HRID:           "hr-1",
		ApplicationID:  "app-3",
		JobID:          "job-3",
		JobName:        "SRE",
		CandidateName:  "Sam",
		CandidateEmail: "sam@example.com",
	})
	require.NoError(t, err)

	select {
	case ev := <-events:
		require.Equal(t, EventNotificationCreated, ev.Type)
		n, err := ev.Notification()
		require.NoError(t, err)
		assert.Equal(t, "hr-1", n.HRID)
		assert.Empty(t, n.UserID)
		assert.Equal(t, "sam@example.com", n.CandidateEmail)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification event")
	}

	cancel()
	for range events {
	}
}

func TestAPIClient_SyncSettingsConfigureSyncer(t *testing.T) {
	srv := startServer(t)
	client := NewAPIClient(srv.url, models.AudienceApplicant, bearer(t, "alice", middleware.RoleApplicant))

	settings, err := client.SyncSettings(context.Background())
	require.NoError(t, err)

	opts := OptionsFromSettings(settings).withDefaults()
	assert.Equal(t, time.Minute, opts.MinInterval)
	assert.Equal(t, 4*time.Minute, opts.RefreshInterval)
	assert.Equal(t, 10*time.Minute, opts.UnreadPollInterval)
	assert.Equal(t, 20, opts.PageSize)

	defaults := OptionsFromSettings(models.SyncSettings{}).withDefaults()
	assert.Equal(t, DefaultMinInterval, defaults.MinInterval)
}
