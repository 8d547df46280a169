package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestViewFor(t *testing.T) {
	n := Notification{
		ID:          primitive.NewObjectID(),
		OwnerID:     "owner-1",
		SubjectRefs: SubjectRefs{ApplicationID: "app-1", JobID: "job-1", CandidateName: "Sam"},
		Message:     "m",
	}

	applicant, ok := ViewFor(AudienceApplicant)(n).(ApplicantNotification)
	assert.True(t, ok)
	assert.Equal(t, "owner-1", applicant.UserID)
	assert.Equal(t, n.ID.Hex(), applicant.ID)

	hr, ok := ViewFor(AudienceRecruiter)(n).(HRNotification)
	assert.True(t, ok)
	assert.Equal(t, "owner-1", hr.HRID)
	assert.Equal(t, "Sam", hr.CandidateName)
}
