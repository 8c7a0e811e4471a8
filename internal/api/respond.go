package api

import (
	"errors"   // Error inspection
	"fmt"      // Error wrapping
	"net/http" // HTTP status codes

	"campus_voting/internal/domain" // Error taxonomy

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Binding errors
	"github.com/sirupsen/logrus"             // Logging
)

// fieldMessages turns a failed binding rule into the message shown to the user.
// Keys are "Struct.Field.tag" or "Struct.Field" for any rule on that field.
var fieldMessages = map[string]string{
	"RegisterRequest.Username":        "Your username can be at most 64 characters long!",
	"RegisterRequest.StudentID":       "Your student ID can be at most 64 characters long!",
	"RegisterRequest.Email.email":     "That's not a valid email address!",
	"RegisterRequest.Email.max":       "That email address is too long!",
	"RegisterRequest.ConfirmPassword": "Your passwords don't match!",
	"RegisterRequest.Password.min":    "Your password needs to be at least 6 characters long!",
	"RegisterRequest.Password.max":    "Your password can be at most 72 characters long!",
	"RegisterRequest.Phone":           "That's not a valid phone number!",
	"RegisterRequest.AcademicYear":    "Academic year can be at most 32 characters long!",
	"RegisterRequest.Department":      "Department can be at most 128 characters long!",
	"RegisterRequest.DOB":             "Date of birth must look like 2001-09-30!",
	"RegisterRequest.Gender":          "Gender can be at most 32 characters long!",
	"CandidateForm.Name":              "Candidate name can be at most 128 characters long",
	"CandidateForm.PartyName":         "Party name can be at most 128 characters long",
	"VoteRequest.Candidate":           "You need to select a candidate.",
	"OTPRequest.Code":                 "Enter the 6 digit code from your email.",
}

// bindError converts a ShouldBind failure into a ValidationError. A missing field
// anywhere wins and reports fallback; otherwise the first failed rule picks the message.
func bindError(err error, fallback string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError(fallback)
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" || fe.Tag() == "notblank" {
			return domain.NewValidationError(fallback)
		}
	}
	fe := verrs[0]
	for _, key := range []string{fe.StructNamespace() + "." + fe.Tag(), fe.StructNamespace()} {
		if msg, ok := fieldMessages[key]; ok {
			return domain.NewValidationError(msg)
		}
	}
	return domain.NewValidationError(fallback)
}

// classify maps a domain error to its HTTP status and user-facing message
func classify(err error) (int, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "Please fill out all fields!"
	case errors.Is(err, domain.ErrDuplicateUser):
		return http.StatusConflict, "That username or email is already in use!"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Incorrect username or password. Please try again."
	case errors.Is(err, domain.ErrAlreadyVoted):
		return http.StatusConflict, "You have already cast your vote."
	case errors.Is(err, domain.ErrCandidateNotFound):
		return http.StatusNotFound, "That candidate does not exist."
	case errors.Is(err, domain.ErrNoPendingOTP):
		return http.StatusBadRequest, "There is no verification in progress. Please start again."
	case errors.Is(err, domain.ErrInvalidOTP):
		return http.StatusUnauthorized, "That code is not correct."
	case errors.Is(err, domain.ErrOTPExpired):
		return http.StatusUnauthorized, "That code has expired. Please start again."
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, "The service is temporarily unavailable. Please try again."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

// respondError writes {"error": msg}, logging anything that is not the user's fault
func respondError(c *gin.Context, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Request failed")
	}
	c.JSON(status, gin.H{"error": msg})
}

// storageErr marks a session, mail or filesystem failure as infrastructure
func storageErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrUnavailable, err)
}
