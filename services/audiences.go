package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/HSouheill/hireboard_notifications/models"
	"github.com/HSouheill/hireboard_notifications/utils"
)

type (
	ApplicantService = NotificationService[models.ApplicationStatusChanged]
	RecruiterService = NotificationService[models.ApplicationCreated]
)

var statusPhrases = map[models.ApplicationStatus]string{
	models.StatusPending:  "is pending review",
	models.StatusReviewed: "has been reviewed",
	models.StatusOffered:  "has received an offer",
	models.StatusAccepted: "has been accepted",
	models.StatusRejected: "was not selected",
}

// ApplicantAudience notifies applicants when their application moves.
func ApplicantAudience() AudienceConfig[models.ApplicationStatusChanged] {
	return AudienceConfig[models.ApplicationStatusChanged]{
		Audience: models.AudienceApplicant,
		Build: func(ownerID string, ev models.ApplicationStatusChanged) (models.Notification, models.PushPayload) {
			title, body := RenderApplicantMessage(ev)
			return models.Notification{
					SubjectRefs: models.SubjectRefs{
						ApplicationID: ev.ApplicationID,
						JobID:         ev.JobID,
						JobName:       utils.SanitizeInput(ev.JobName),
						CompanyName:   utils.SanitizeInput(ev.CompanyName),
					},
					Message: body,
					Status:  ev.Status,
				}, models.PushPayload{
					Title: title,
					Body:  body,
				}
		},
	}
}

// RecruiterAudience notifies HR owners when somebody applies to a posting.
func RecruiterAudience() AudienceConfig[models.ApplicationCreated] {
	return AudienceConfig[models.ApplicationCreated]{
		Audience: models.AudienceRecruiter,
		Build: func(ownerID string, ev models.ApplicationCreated) (models.Notification, models.PushPayload) {
			title, body := RenderRecruiterMessage(ev)
			return models.Notification{
					SubjectRefs: models.SubjectRefs{
						ApplicationID:  ev.ApplicationID,
						JobID:          ev.JobID,
						JobName:        utils.SanitizeInput(ev.JobName),
						CandidateName:  utils.SanitizeInput(ev.CandidateName),
						CandidateEmail: strings.TrimSpace(ev.CandidateEmail),
					},
					Message: body,
				}, models.PushPayload{
					Title: title,
					Body:  body,
				}
		},
	}
}

// RenderApplicantMessage renders e.g.
// `Your application for "Go Engineer" at Acme has received an offer`.
func RenderApplicantMessage(ev models.ApplicationStatusChanged) (title, body string) {
	phrase, ok := statusPhrases[ev.Status]
	if !ok {
		phrase = "is now " + string(ev.Status)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your application for %q", utils.SanitizeInput(ev.JobName))
	if company := utils.SanitizeInput(ev.CompanyName); company != "" {
		b.WriteString(" at ")
		b.WriteString(company)
	}
	b.WriteString(" ")
	b.WriteString(phrase)

	return "Application update", b.String()
}

// RenderRecruiterMessage renders
// `Applicant {candidateName} applied for "{jobName}"`, extended with the
// experience and education fragments when the event carries them.
func RenderRecruiterMessage(ev models.ApplicationCreated) (title, body string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Applicant %s applied for %q", utils.SanitizeInput(ev.CandidateName), utils.SanitizeInput(ev.JobName))

	if ev.YearsOfExperience != nil {
		years := *ev.YearsOfExperience
		unit := "years"
		if years == 1 {
			unit = "year"
		}
		fmt.Fprintf(&b, " with %s %s of experience", strconv.FormatFloat(years, 'f', -1, 64), unit)
	}
	if edu := utils.SanitizeInput(ev.Education); edu != "" {
		fmt.Fprintf(&b, " (education: %s)", edu)
	}

	return "New application", b.String()
}
