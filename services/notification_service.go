package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/hireboard_notifications/apperrors"
	"github.com/HSouheill/hireboard_notifications/models"
	"github.com/HSouheill/hireboard_notifications/repositories"
	"github.com/HSouheill/hireboard_notifications/utils"
)

// AudienceConfig is everything that differs between the applicant and
// recruiter notification flows.
type AudienceConfig[E any] struct {
	Audience models.Audience
	// Build renders the record and the push payload from one event. Both are
	// derived from the same template so in-app text and push text agree.
	Build func(ownerID string, event E) (models.Notification, models.PushPayload)
}

// InAppPublisher delivers a freshly stored notification to the owner's open
// sessions.
type InAppPublisher interface {
	PublishNotification(ctx context.Context, n models.Notification) error
}

// Inbox is the owner-facing read side of one audience.
type Inbox interface {
	Audience() models.Audience
	List(ctx context.Context, ownerID string, q models.ListQuery) ([]models.Notification, models.PageMeta, error)
	CountUnread(ctx context.Context, ownerID string) (int64, error)
	MarkRead(ctx context.Context, ownerID, id string) error
	MarkAllRead(ctx context.Context, ownerID string) error
	MarkAllUnread(ctx context.Context, ownerID string) error
}

// NotificationService creates and serves the notifications of one audience.
type NotificationService[E any] struct {
	config     AudienceConfig[E]
	store      repositories.NotificationStore
	dispatcher Dispatcher
	publisher  InAppPublisher
	validate   *validator.Validate
	log        logrus.FieldLogger
}

func NewNotificationService[E any](
	config AudienceConfig[E],
	store repositories.NotificationStore,
	dispatcher Dispatcher,
	publisher InAppPublisher,
	validate *validator.Validate,
	log logrus.FieldLogger,
) *NotificationService[E] {
	return &NotificationService[E]{
		config:     config,
		store:      store,
		dispatcher: dispatcher,
		publisher:  publisher,
		validate:   validate,
		log:        log.WithField("audience", config.Audience),
	}
}

func (s *NotificationService[E]) Audience() models.Audience {
	return s.config.Audience
}

// Notify stores exactly one notification for event and then attempts push
// and in-app delivery. Only a persistence failure is returned; delivery
// failures are logged.
func (s *NotificationService[E]) Notify(ctx context.Context, ownerID string, event E) (*models.Notification, error) {
	if ownerID == "" {
		return nil, apperrors.Validation("ownerId is required")
	}
	if err := s.validate.Struct(event); err != nil {
		return nil, apperrors.Validation("invalid event").WithDetails(utils.ValidationDetails(err))
	}

	record, payload := s.config.Build(ownerID, event)
	record.Audience = s.config.Audience
	record.OwnerID = ownerID

	if _, err := s.store.Create(ctx, &record); err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{"ownerId": ownerID, "notificationId": record.ID.Hex()})
	log.Info("notification created")

	payload.Data = pushData(record)
	if s.dispatcher != nil {
		if _, err := s.dispatcher.Send(ctx, ownerID, payload); err != nil {
			log.WithError(err).Warn("push delivery failed, notification kept")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishNotification(ctx, record); err != nil {
			log.WithError(err).Warn("in-app publish failed, notification kept")
		}
	}
	return &record, nil
}

func (s *NotificationService[E]) List(ctx context.Context, ownerID string, q models.ListQuery) ([]models.Notification, models.PageMeta, error) {
	return s.store.ListByOwner(ctx, s.config.Audience, ownerID, q)
}

func (s *NotificationService[E]) CountUnread(ctx context.Context, ownerID string) (int64, error) {
	return s.store.CountUnread(ctx, s.config.Audience, ownerID)
}

func (s *NotificationService[E]) MarkRead(ctx context.Context, ownerID, id string) error {
	return s.store.MarkRead(ctx, s.config.Audience, id, ownerID)
}

func (s *NotificationService[E]) MarkAllRead(ctx context.Context, ownerID string) error {
	return s.store.MarkAllRead(ctx, s.config.Audience, ownerID)
}

// MarkAllUnread resets the owner's inbox. Administrative use only.
func (s *NotificationService[E]) MarkAllUnread(ctx context.Context, ownerID string) error {
	s.log.WithField("ownerId", ownerID).Warn("administrative mark-all-unread")
	return s.store.MarkAllUnread(ctx, s.config.Audience, ownerID)
}

func pushData(n models.Notification) map[string]string {
	data := map[string]string{
		"notificationId": n.ID.Hex(),
		"audience":       string(n.Audience),
		"applicationId":  n.ApplicationID,
		"jobId":          n.JobID,
	}
	if n.Status != "" {
		data["status"] = string(n.Status)
	}
	return data
}
