package models

// ApplicationStatusChanged is emitted by the application service when a
// recruiter moves an application to a new status. It drives the applicant
// audience.
type ApplicationStatusChanged struct {
	ApplicantID    string            `json:"applicantId" validate:"required"`
	ApplicationID  string            `json:"applicationId" validate:"required"`
	JobID          string            `json:"jobId" validate:"required"`
	JobName        string            `json:"jobName" validate:"required"`
	CompanyName    string            `json:"companyName,omitempty"`
	PreviousStatus ApplicationStatus `json:"previousStatus,omitempty"`
	Status         ApplicationStatus `json:"status" validate:"required,oneof=pending reviewed offered accepted rejected"`
}

// ApplicationCreated is emitted when a candidate applies to a posting. It
// drives the recruiter audience.
type ApplicationCreated struct {
	HRID              string   `json:"hrId" validate:"required"`
	ApplicationID     string   `json:"applicationId" validate:"required"`
	JobID             string   `json:"jobId" validate:"required"`
	JobName           string   `json:"jobName" validate:"required"`
	CandidateName     string   `json:"candidateName" validate:"required"`
	CandidateEmail    string   `json:"candidateEmail" validate:"required,email"`
	YearsOfExperience *float64 `json:"yearsOfExperience,omitempty" validate:"omitempty,gte=0"`
	Education         string   `json:"education,omitempty"`
}
