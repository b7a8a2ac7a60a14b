// Package apperr defines the error codes shared by services and the HTTP
// boundary. Errors are built with samber/oops so they carry a code and
// structured context; handlers map the code to a status once.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/samber/oops"
)

const (
	CodeValidation           = "VALIDATION"
	CodeConflict             = "CONFLICT"
	CodeInvalidCredentials   = "AUTH_INVALID_CREDENTIALS"
	CodeVerificationRequired = "VERIFICATION_REQUIRED"
	CodeInvalidLink          = "INVALID_LINK"
	CodeEmailNotFound        = "EMAIL_NOT_FOUND"
	CodeNotFound             = "NOT_FOUND"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeDependency           = "DEPENDENCY"
)

// Messages returned to clients by the auth flows.
const (
	MsgUserExists          = "User already exist"
	MsgInvalidCredentials  = "Invalid Email or Password"
	MsgVerifyEmail         = "Please verify your email"
	MsgInvalidLink         = "Invalid Link"
	MsgEmailNotFound       = "User With This Email Not Found"
	MsgInternalServerError = "Internal Server Error"
)

func Validation(format string, args ...any) error {
	return oops.Code(CodeValidation).Errorf(format, args...)
}

func Conflict(msg string) error {
	return oops.Code(CodeConflict).Errorf("%s", msg)
}

func InvalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("%s", MsgInvalidCredentials)
}

func VerificationRequired(userID uint) error {
	return oops.Code(CodeVerificationRequired).With("user_id", userID).Errorf("%s", MsgVerifyEmail)
}

func InvalidLink() error {
	return oops.Code(CodeInvalidLink).Errorf("%s", MsgInvalidLink)
}

// EmailNotFound is returned by the reset-link request. Unlike login it
// reveals that the address is unknown.
func EmailNotFound() error {
	return oops.Code(CodeEmailNotFound).Errorf("%s", MsgEmailNotFound)
}

func NotFound(msg string) error {
	return oops.Code(CodeNotFound).Errorf("%s", msg)
}

func Unauthorized(msg string) error {
	return oops.Code(CodeUnauthorized).Errorf("%s", msg)
}

func Forbidden(msg string) error {
	return oops.Code(CodeForbidden).Errorf("%s", msg)
}

// Dependency wraps a store, storage or mailer failure.
func Dependency(operation string, err error) error {
	return oops.Code(CodeDependency).With("operation", operation).Wrap(err)
}

// CodeOf returns the oops code of err, or "" for plain errors.
func CodeOf(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code := oopsErr.Code()
	if code == nil {
		return ""
	}
	return fmt.Sprint(code)
}

// Context returns the structured context attached to an oops error.
func Context(err error) map[string]any {
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Context()
	}
	return nil
}

// Status maps an error code to the HTTP status the API answers with.
// Auth-flow failures all answer 400.
func Status(code string) int {
	switch code {
	case CodeValidation, CodeConflict, CodeInvalidCredentials,
		CodeVerificationRequired, CodeInvalidLink, CodeEmailNotFound:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to show a client for err.
func PublicMessage(err error) string {
	code := CodeOf(err)
	if code == "" || code == CodeDependency {
		return MsgInternalServerError
	}
	oopsErr, _ := oops.AsOops(err)
	return oopsErr.Error()
}
