package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
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
	"github.com/HSouheill/hireboard_notifications/services"
	"github.com/HSouheill/hireboard_notifications/utils"
)

const (
	secret = "routes-secret"
	apiKey = "internal-key"
)

type recordingProvider struct {
	tokens [][]string
}

func (p *recordingProvider) SendMulticast(_ context.Context, tokens []string, _ models.PushPayload) ([]services.TokenResult, error) {
	p.tokens = append(p.tokens, tokens)
	out := make([]services.TokenResult, 0, len(tokens))
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "dead-") {
			out = append(out, services.TokenResult{Token: tok, ErrorCode: services.PushErrNotRegistered})
			continue
		}
		out = append(out, services.TokenResult{Token: tok, Success: true})
	}
	return out, nil
}

type api struct {
	e        *echo.Echo
	provider *recordingProvider
	registry *services.TokenRegistry
}

func newAPI(t *testing.T) *api {
	t.Helper()
	log, _ := test.NewNullLogger()
	validate := utils.NewValidator()

	store := repositories.NewMemoryNotificationStore(validate)
	registry := services.NewTokenRegistry(repositories.NewMemoryTokenStore(), services.LastWriterWins{}, log)
	provider := &recordingProvider{}
	dispatcher := services.NewPushDispatcher(registry, provider, time.Second, log)

	e := echo.New()
	e.Validator = &utils.CustomValidator{Validator: validate}
	e.HTTPErrorHandler = controllers.HTTPErrorHandler(log)

	SetupRoutes(e, Dependencies{
		JWTSecret:      secret,
		InternalAPIKey: apiKey,
		Applicants:     services.NewNotificationService(services.ApplicantAudience(), store, dispatcher, nil, validate, log),
		Recruiters:     services.NewNotificationService(services.RecruiterAudience(), store, dispatcher, nil, validate, log),
		Registry:       registry,
		Paging:         controllers.Paging{DefaultPageSize: 10, MaxPageSize: 50},
		Sync:           models.SyncSettings{MinFetchIntervalSeconds: 120, RefreshIntervalSeconds: 300, UnreadPollIntervalSeconds: 300, PageSize: 10},
		HealthChecks:   map[string]controllers.HealthCheck{"store": func(context.Context) error { return nil }},
		Log:            log,
	})
	return &api{e: e, provider: provider, registry: registry}
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := middleware.GenerateJWT(secret, userID, userID+"@example.com", role, time.Hour)
	require.NoError(t, err)
	return tok
}

func (a *api) call(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = strings.NewReader(string(raw))
	} else {
		payload = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer == apiKey {
		req.Header.Set(middleware.HeaderAPIKey, apiKey)
	} else if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

type listBody struct {
	Meta   models.PageMeta          `json:"meta"`
	Result []map[string]interface{} `json:"result"`
}

func statusChanged(applicant, app string, status models.ApplicationStatus) models.ApplicationStatusChanged {
	return models.ApplicationStatusChanged{
		ApplicantID:   applicant,
		ApplicationID: app,
		JobID:         "job-1",
		JobName:       "Go Engineer",
		CompanyName:   "Acme",
		Status:        status,
	}
}

func TestApplicantInboxFlow(t *testing.T) {
	a := newAPI(t)
	alice := token(t, "alice", middleware.RoleApplicant)

	rec := a.call(t, http.MethodPost, "/api/notifications/register-device", alice, models.RegisterDeviceRequest{Token: "phone-1", Platform: "ios"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = a.call(t, http.MethodPost, "/api/notifications/register-device", alice, models.RegisterDeviceRequest{Token: "phone-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	for i, status := range []models.ApplicationStatus{models.StatusPending, models.StatusReviewed, models.StatusOffered} {
		rec = a.call(t, http.MethodPost, "/api/internal/events/application-status-changed", apiKey, statusChanged("alice", "app-1", status))
		require.Equal(t, http.StatusCreated, rec.Code, "event %d: %s", i, rec.Body.String())
	}
	assert.Len(t, a.provider.tokens, 3)
	assert.Equal(t, []string{"phone-1"}, a.provider.tokens[2])

	rec = a.call(t, http.MethodGet, "/api/notifications/unread-count", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())

	rec = a.call(t, http.MethodGet, "/api/notifications?current=1&pageSize=2", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page listBody
	decode(t, rec, &page)
	assert.Equal(t, models.PageMeta{Current: 1, PageSize: 2, Pages: 2, Total: 3}, page.Meta)
	require.Len(t, page.Result, 2)
	newest := page.Result[0]
	assert.Equal(t, "offered", newest["status"])
	assert.Equal(t, "alice", newest["userId"])
	assert.Contains(t, newest["message"], "Go Engineer")

	rec = a.call(t, http.MethodGet, "/api/notifications?current=9", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	assert.NotNil(t, page.Result)
	assert.Empty(t, page.Result)

	id := newest["id"].(string)
	bob := token(t, "bob", middleware.RoleApplicant)
	rec = a.call(t, http.MethodPatch, "/api/notifications/"+id+"/read", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for i := 0; i < 2; i++ {
		rec = a.call(t, http.MethodPatch, "/api/notifications/"+id+"/read", alice, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	rec = a.call(t, http.MethodGet, "/api/notifications/unread-count", alice, nil)
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())

	rec = a.call(t, http.MethodPatch, "/api/notifications/read-all", alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.call(t, http.MethodGet, "/api/notifications/unread-count", alice, nil)
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())

	admin := token(t, "root", middleware.RoleAdmin)
	rec = a.call(t, http.MethodPatch, "/api/admin/notifications/unread-all?ownerId=alice&audience=applicant", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = a.call(t, http.MethodGet, "/api/notifications/unread-count", alice, nil)
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())
}

func TestHRInbox(t *testing.T) {
	a := newAPI(t)
	hr := token(t, "hr-1", middleware.RoleHR)

	rec := a.call(t, http.MethodPost, "/api/internal/events/application-created", apiKey, models.ApplicationCreated{
		HRID:           "hr-1",
		ApplicationID:  "app-3",
		JobID:          "job-7",
		JobName:        "Designer",
		CandidateName:  "Carol",
		CandidateEmail: "carol@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.call(t, http.MethodGet, "/api/hr-notifications", hr, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page listBody
	decode(t, rec, &page)
	require.Len(t, page.Result, 1)
	item := page.Result[0]
	assert.Equal(t, "hr-1", item["hrId"])
	assert.Equal(t, "job-7", item["jobId"])
	assert.Equal(t, "app-3", item["applicationId"])
	assert.Equal(t, "Carol", item["candidateName"])
	assert.Equal(t, "carol@example.com", item["candidateEmail"])
	assert.Equal(t, `Applicant Carol applied for "Designer"`, item["message"])

	// applicants cannot read the recruiter inbox
	applicant := token(t, "hr-1", middleware.RoleApplicant)
	rec = a.call(t, http.MethodGet, "/api/hr-notifications", applicant, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEventValidation(t *testing.T) {
	a := newAPI(t)

	rec := a.call(t, http.MethodPost, "/api/internal/events/application-created", apiKey, models.ApplicationCreated{HRID: "hr-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body models.Response
	decode(t, rec, &body)
	assert.NotNil(t, body.Data)

	rec = a.call(t, http.MethodPost, "/api/internal/events/application-created", "", models.ApplicationCreated{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	alice := token(t, "alice", middleware.RoleApplicant)
	rec = a.call(t, http.MethodPost, "/api/internal/events/application-status-changed", alice, statusChanged("alice", "a", models.StatusPending))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListValidation(t *testing.T) {
	a := newAPI(t)
	alice := token(t, "alice", middleware.RoleApplicant)

	assert.Equal(t, http.StatusBadRequest, a.call(t, http.MethodGet, "/api/notifications?pageSize=abc", alice, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.call(t, http.MethodGet, "/api/notifications?sort=message", alice, nil).Code)
	assert.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/api/notifications?sort=-updatedAt", alice, nil).Code)
}

func TestDeadTokensArePrunedThroughNotify(t *testing.T) {
	a := newAPI(t)
	alice := token(t, "alice", middleware.RoleApplicant)
	for _, tok := range []string{"live-1", "dead-2", "live-3"} {
		rec := a.call(t, http.MethodPost, "/api/notifications/register-device", alice, models.RegisterDeviceRequest{Token: tok})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := a.call(t, http.MethodPost, "/api/internal/events/application-status-changed", apiKey, statusChanged("alice", "app-1", models.StatusAccepted))
	require.Equal(t, http.StatusCreated, rec.Code)

	left, err := a.registry.TokensFor(context.Background(), "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"live-1", "live-3"}, left)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	rec := a.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store":"up"`)
}

func TestSyncSettings(t *testing.T) {
	a := newAPI(t)

	for path, role := range map[string]string{
		"/api/notifications/sync-settings":    middleware.RoleApplicant,
		"/api/hr-notifications/sync-settings": middleware.RoleHR,
	} {
		rec := a.call(t, http.MethodGet, path, token(t, "u1", role), nil)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var body models.SyncSettings
		decode(t, rec, &body)
		assert.Equal(t, int64(120), body.MinFetchIntervalSeconds)
		assert.Equal(t, int64(300), body.RefreshIntervalSeconds)
		assert.Equal(t, 10, body.PageSize)
	}

	rec := a.call(t, http.MethodGet, "/api/notifications/sync-settings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
