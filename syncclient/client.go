// Package syncclient is the client half of the notification protocol: an
// HTTP client for one audience's inbox, a rate-limited Syncer with an
// optimistic cache, and a websocket listener for foreground pushes.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/HSouheill/hireboard_notifications/models"
)

// Notification is the union of the applicant and HR wire shapes.
type Notification struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId,omitempty"`
	HRID           string    `json:"hrId,omitempty"`
	ApplicationID  string    `json:"applicationId"`
	JobID          string    `json:"jobId"`
	JobName        string    `json:"jobName,omitempty"`
	CompanyName    string    `json:"companyName,omitempty"`
	CandidateName  string    `json:"candidateName,omitempty"`
	CandidateEmail string    `json:"candidateEmail,omitempty"`
	Message        string    `json:"message"`
	Status         string    `json:"status,omitempty"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Page is one listing response.
type Page = models.Page[Notification]

// Source is what the Syncer needs from the server.
type Source interface {
	FetchPage(ctx context.Context, current, pageSize int) (Page, error)
	UnreadCount(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notification api: status=%d message=%s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// BasePath returns the inbox path of audience.
func BasePath(audience models.Audience) string {
	if audience == models.AudienceRecruiter {
		return "/api/hr-notifications"
	}
	return "/api/notifications"
}

// APIClient talks to one audience's inbox as one user.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
	basePath   string
	token      string
}

// NewAPIClient builds a client for baseURL (e.g. "https://api.example.com").
func NewAPIClient(baseURL string, audience models.Audience, token string) *APIClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		basePath:   BasePath(audience),
		token:      token,
	}
}

func (c *APIClient) FetchPage(ctx context.Context, current, pageSize int) (Page, error) {
	q := url.Values{}
	q.Set("current", strconv.Itoa(current))
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	var page Page
	err := c.doJSON(ctx, http.MethodGet, c.basePath+"?"+q.Encode(), nil, &page)
	return page, err
}

func (c *APIClient) UnreadCount(ctx context.Context) (int64, error) {
	var body models.UnreadCount
	err := c.doJSON(ctx, http.MethodGet, c.basePath+"/unread-count", nil, &body)
	return body.Count, err
}

func (c *APIClient) MarkRead(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPatch, c.basePath+"/"+url.PathEscape(id)+"/read", nil, nil)
}

func (c *APIClient) MarkAllRead(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPatch, c.basePath+"/read-all", nil, nil)
}

// SyncSettings reads the refetch cadence advertised by the server.
func (c *APIClient) SyncSettings(ctx context.Context) (models.SyncSettings, error) {
	var settings models.SyncSettings
	err := c.doJSON(ctx, http.MethodGet, c.basePath+"/sync-settings", nil, &settings)
	return settings, err
}

// RegisterDevice registers this device's push token for the user.
func (c *APIClient) RegisterDevice(ctx context.Context, token, platform string) error {
	return c.doJSON(ctx, http.MethodPost, c.basePath+"/register-device", models.RegisterDeviceRequest{Token: token, Platform: platform}, nil)
}

func (c *APIClient) doJSON(ctx context.Context, method, path string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope models.Response
		raw, _ := io.ReadAll(resp.Body)
		msg := string(raw)
		if json.Unmarshal(raw, &envelope) == nil && envelope.Message != "" {
			msg = envelope.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}
	return nil
}
