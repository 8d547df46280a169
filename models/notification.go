package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audience is the principal type a notification is scoped to.
type Audience string

const (
	AudienceApplicant Audience = "applicant"
	AudienceRecruiter Audience = "recruiter"
)

func (a Audience) Valid() bool {
	return a == AudienceApplicant || a == AudienceRecruiter
}

// ApplicationStatus is the status of a job application at the time a
// notification was created. Display only.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusReviewed ApplicationStatus = "reviewed"
	StatusOffered  ApplicationStatus = "offered"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusOffered, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// SubjectRefs are the foreign identifiers a client needs to render or deep
// link a notification. Candidate fields are only set for the recruiter
// audience.
type SubjectRefs struct {
	ApplicationID  string `json:"applicationId" bson:"applicationId" validate:"required"`
	JobID          string `json:"jobId" bson:"jobId" validate:"required"`
	JobName        string `json:"jobName,omitempty" bson:"jobName,omitempty"`
	CompanyName    string `json:"companyName,omitempty" bson:"companyName,omitempty"`
	CandidateName  string `json:"candidateName,omitempty" bson:"candidateName,omitempty"`
	CandidateEmail string `json:"candidateEmail,omitempty" bson:"candidateEmail,omitempty"`
}

// Notification model. Message is rendered once at creation and never
// recomputed; IsRead only moves from false to true through the normal API.
type Notification struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Audience    Audience           `json:"audience" bson:"audience" validate:"required,oneof=applicant recruiter"`
	OwnerID     string             `json:"ownerId" bson:"ownerId" validate:"required"`
	SubjectRefs `bson:",inline"`
	Message     string            `json:"message" bson:"message" validate:"required"`
	Status      ApplicationStatus `json:"status,omitempty" bson:"status,omitempty"`
	IsRead      bool              `json:"isRead" bson:"isRead"`
	CreatedAt   time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// PushPayload is what the push provider renders on the device.
type PushPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}
