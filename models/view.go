package models

import "time"

// NotificationView shapes one record for an audience's clients. REST
// responses and socket events use the same view.
type NotificationView func(Notification) interface{}

// ApplicantNotification is the wire shape of the applicant inbox.
type ApplicantNotification struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId"`
	ApplicationID string            `json:"applicationId"`
	JobID         string            `json:"jobId"`
	JobName       string            `json:"jobName,omitempty"`
	CompanyName   string            `json:"companyName,omitempty"`
	Message       string            `json:"message"`
	Status        ApplicationStatus `json:"status,omitempty"`
	IsRead        bool              `json:"isRead"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// HRNotification is the wire shape of the recruiter inbox.
type HRNotification struct {
	ID             string    `json:"id"`
	HRID           string    `json:"hrId"`
	JobID          string    `json:"jobId"`
	ApplicationID  string    `json:"applicationId"`
	JobName        string    `json:"jobName,omitempty"`
	CandidateName  string    `json:"candidateName"`
	CandidateEmail string    `json:"candidateEmail"`
	Message        string    `json:"message"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func ApplicantView(n Notification) interface{} {
	return ApplicantNotification{
		ID:            n.ID.Hex(),
		UserID:        n.OwnerID,
		ApplicationID: n.ApplicationID,
		JobID:         n.JobID,
		JobName:       n.JobName,
		CompanyName:   n.CompanyName,
		Message:       n.Message,
		Status:        n.Status,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
	}
}

func HRView(n Notification) interface{} {
	return HRNotification{
		ID:             n.ID.Hex(),
		HRID:           n.OwnerID,
		JobID:          n.JobID,
		ApplicationID:  n.ApplicationID,
		JobName:        n.JobName,
		CandidateName:  n.CandidateName,
		CandidateEmail: n.CandidateEmail,
		Message:        n.Message,
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt,
		UpdatedAt:      n.UpdatedAt,
	}
}

// ViewFor returns the wire shape of audience.
func ViewFor(audience Audience) NotificationView {
	if audience == AudienceRecruiter {
		return HRView
	}
	return ApplicantView
}
