package repositories

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/HSouheill/hireboard_notifications/apperrors"
	"github.com/HSouheill/hireboard_notifications/models"
)

// validateNotification rejects records missing the subject refs their
// audience needs.
func validateNotification(v *validator.Validate, n *models.Notification) error {
	fields := map[string]string{}

	if err := v.Struct(n); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperrors.Validation(err.Error())
		}
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}

	switch n.Audience {
	case models.AudienceRecruiter:
		if v.Var(n.CandidateName, "required") != nil {
			fields["candidateName"] = "required"
		}
		if v.Var(n.CandidateEmail, "required,email") != nil {
			fields["candidateEmail"] = "email"
		}
		if v.Var(n.JobName, "required") != nil {
			fields["jobName"] = "required"
		}
	case models.AudienceApplicant:
		if !n.Status.Valid() {
			fields["status"] = "oneof"
		}
	}

	if len(fields) > 0 {
		return apperrors.Validation("invalid notification record").WithDetails(fields)
	}
	return nil
}
