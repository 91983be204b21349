// Package errors translates failures of use cases into HTTP error responses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/repository"
)

// ErrorMessage is the body of error responses.
type ErrorMessage struct {
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`

	// Field is the payload key at fault, for validation errors.
	Field string `json:"field,omitempty"`
	Cause error  `json:"-"`
}

// MarshalJSON writes the message as it is. Without this, echo writes Error() of it.
func (em ErrorMessage) MarshalJSON() ([]byte, error) {
	type message ErrorMessage
	return json.Marshal(message(em))
}

func (em *ErrorMessage) UnmarshalJSON(bytes []byte) error {
	f := new(struct {
		Reason *string `json:"reason"`
		Advice *string `json:"advice,omitempty"`
		Field  *string `json:"field,omitempty"`
	})
	if err := json.Unmarshal(bytes, f); err != nil {
		return err
	}

	if f.Reason == nil {
		return fmt.Errorf(`required field missing: "reason"`)
	}
	em.Reason = *f.Reason

	if f.Advice != nil {
		em.Advice = *f.Advice
	}
	if f.Field != nil {
		em.Field = *f.Field
	}
	return nil
}

func (e ErrorMessage) String() string {
	lines := []string{e.Reason}
	if e.Advice != "" {
		lines = append(lines, e.Advice)
	}
	if e.Cause != nil {
		lines = append(lines, fmt.Sprint(" caused by:", e.Cause.Error()))
	}
	return strings.Join(lines, "\n")
}

func (e ErrorMessage) Error() string {
	return e.String()
}

func (e ErrorMessage) Unwrap() error {
	return e.Cause
}

type ErrorMessageOption func(in *ErrorMessage) *ErrorMessage

func WithAdvice(advice string) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if advice != "" {
			in.Advice = advice
		}
		return in
	}
}

func WithError(err error) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if err != nil {
			in.Cause = err
		}
		return in
	}
}

func WithField(field string) ErrorMessageOption {
	return func(in *ErrorMessage) *ErrorMessage {
		if field != "" {
			in.Field = field
		}
		return in
	}
}

func NewErrorMessage(code int, reason string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := ErrorMessage{Reason: reason}
	for _, opt := range opts {
		msg = *opt(&msg)
	}

	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

func NotFound(err error) *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, "not found", WithError(err))
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadRequest,
		"bad request",
		WithAdvice(advice),
		WithError(err),
	)
}

func Conflict(message string, options ...ErrorMessageOption) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusConflict,
		message,
		options...,
	)
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusInternalServerError,
		"unexpected error",
		WithError(err),
	)
}

func Unauthorized(message string, err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusUnauthorized,
		message,
		WithError(err),
	)
}

// FromDomain maps errors of use cases to responses.
//
// Errors of unknown kinds are internal server errors.
func FromDomain(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}

	var herr *echo.HTTPError
	if errors.As(err, &herr) {
		return herr
	}

	var comp *domerr.CompensationFailure
	if errors.As(err, &comp) {
		return NewErrorMessage(
			http.StatusInternalServerError,
			"creation failed and could not be undone",
			WithAdvice("reload the model. it may contain a partial object."),
			WithError(err),
		)
	}

	var conf *domerr.ConfigurationError
	if errors.As(err, &conf) {
		return NewErrorMessage(
			http.StatusInternalServerError,
			"misconfigured object type",
			WithAdvice("ask your system admin."),
			WithError(err),
		)
	}

	var valid *domerr.ValidationError
	if errors.As(err, &valid) {
		return NewErrorMessage(
			http.StatusBadRequest,
			valid.Message,
			WithField(valid.Field),
			WithError(err),
		)
	}

	if rec, ok := domerr.AsRecoverable(err); ok {
		return NewErrorMessage(
			http.StatusUnprocessableEntity,
			rec.Error(),
			WithAdvice("change the model so that it can hold what is required."),
			WithError(err),
		)
	}

	if errors.Is(err, domerr.ErrMissing) {
		return NotFound(err)
	}

	if errors.Is(err, repository.ErrConflict) {
		return Conflict(
			"the model is changed by another request",
			WithAdvice("reload the model and retry."),
			WithError(err),
		)
	}

	return InternalServerError(err)
}
