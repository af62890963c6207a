package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthRequired is returned before any network call when no usable token is held.
var ErrAuthRequired = errors.New("authentication required")

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// APIErrorKind classifies a non-2xx answer of the remote API.
type APIErrorKind string

const (
	KindUnauthorized APIErrorKind = "unauthorized"
	KindForbidden    APIErrorKind = "forbidden"
	KindNotFound     APIErrorKind = "not_found"
	KindValidation   APIErrorKind = "validation"
	KindConflict     APIErrorKind = "conflict"
	KindServer       APIErrorKind = "server"
	KindUnexpected   APIErrorKind = "unexpected"
)

// KindForStatus maps an HTTP status code to its error category.
func KindForStatus(status int) APIErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusConflict:
		return KindConflict
	case status >= 500:
		return KindServer
	default:
		return KindUnexpected
	}
}

// APIError is a response of the remote API outside 2xx. Message holds the
// server detail verbatim, or is empty when the server sent none.
type APIError struct {
	Status  int
	Kind    APIErrorKind
	Message string
}

func (e APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Kind, e.Message)
	}
	return fmt.Sprintf("api %d %s", e.Status, e.Kind)
}

// TransportError means no response was received at all.
type TransportError struct {
	Op  string
	Err error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("%s: connection problem: %v", e.Op, e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }

// SessionExpiredError is returned when the remote API answered 401. Redirect is
// set only for the call that tore the session down.
type SessionExpiredError struct {
	Redirect bool
	Route    string
}

func (e SessionExpiredError) Error() string {
	return "session expired"
}

func (e SessionExpiredError) Unwrap() error { return ErrAuthRequired }

func IsNotFound(err error) bool {
	var target NotFoundError
	if errors.As(err, &target) {
		return true
	}
	return apiKind(err) == KindNotFound
}

func IsValidation(err error) bool {
	var target ValidationError
	if errors.As(err, &target) {
		return true
	}
	return apiKind(err) == KindValidation
}

func IsConflict(err error) bool {
	var target ConflictError
	if errors.As(err, &target) {
		return true
	}
	return apiKind(err) == KindConflict
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

func IsAuthRequired(err error) bool {
	return errors.Is(err, ErrAuthRequired)
}

func IsForbidden(err error) bool {
	return apiKind(err) == KindForbidden
}

func IsTransport(err error) bool {
	var target TransportError
	return errors.As(err, &target)
}

func apiKind(err error) APIErrorKind {
	var target APIError
	if errors.As(err, &target) {
		return target.Kind
	}
	return ""
}

// UserMessage returns the toast text shown for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		validation ValidationError
		conflict   ConflictError
		notFound   NotFoundError
		api        APIError
	)
	switch {
	case errors.As(err, &validation):
		return validation.Error()
	case IsAuthRequired(err):
		return "Please log in to continue."
	case IsTransport(err):
		return "Unable to reach the booking service. Check your connection and try again."
	case errors.As(err, &conflict):
		return conflict.Error()
	case errors.As(err, &notFound):
		return notFound.Error()
	case errors.As(err, &api):
		return apiMessage(api)
	default:
		return "Something went wrong. Please try again."
	}
}

func apiMessage(e APIError) string {
	switch e.Kind {
	case KindForbidden:
		if e.Message != "" {
			return "Access Denied: " + e.Message
		}
		return "Access Denied"
	case KindNotFound:
		return firstNonEmpty(e.Message, "The requested booking could not be found.")
	case KindValidation:
		return firstNonEmpty(e.Message, "Some details are invalid. Please review and try again.")
	case KindConflict:
		return firstNonEmpty(e.Message, "This booking was just changed by someone else. Refresh and try again.")
	case KindServer:
		return firstNonEmpty(e.Message, "The booking service is having trouble. Please try again later.")
	default:
		return firstNonEmpty(e.Message, "Something went wrong. Please try again.")
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
