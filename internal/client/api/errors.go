package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/orbit-dashboard/orbit/internal/domain"
)

// KindNetwork marks requests that never got an answer from the server.
const KindNetwork = "Network"

// Error is a non-2xx answer from the server, or a failure to reach it.
// It unwraps to the domain sentinel for its kind, so callers can use
// errors.Is(err, domain.ErrUserNotFound) the same way the server does.
type Error struct {
	Status  int
	Kind    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind
}

func (e *Error) Unwrap() []error {
	errs := []error{}
	if s, ok := sentinels[e.Kind]; ok {
		errs = append(errs, s)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

var sentinels = map[string]error{
	domain.KindValidation:           domain.ErrValidation,
	domain.KindUsernameTaken:        domain.ErrUsernameTaken,
	domain.KindInvalidUsername:      domain.ErrInvalidUsername,
	domain.KindCodeNotFound:         domain.ErrCodeNotFound,
	domain.KindProfileUnreachable:   domain.ErrProfileUnreachable,
	domain.KindVerificationMismatch: domain.ErrVerificationMismatch,
	domain.KindUserNotFound:         domain.ErrUserNotFound,
	domain.KindInvalidCredentials:   domain.ErrInvalidCredentials,
	domain.KindStorageUnavailable:   domain.ErrStorageUnavailable,
	domain.KindUnauthorized:         domain.ErrUnauthorized,
	domain.KindForbidden:            domain.ErrForbidden,
	domain.KindNotFound:             domain.ErrNotFound,
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Kind == "" {
		body.Kind = kindForStatus(resp.StatusCode)
	}
	if body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &Error{Status: resp.StatusCode, Kind: body.Kind, Message: body.Error}
}

// kindForStatus covers bodies without a kind, e.g. from a proxy.
func kindForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return domain.KindUnauthorized
	case http.StatusForbidden:
		return domain.KindForbidden
	case http.StatusNotFound:
		return domain.KindNotFound
	case http.StatusTooManyRequests:
		return domain.KindRateLimited
	default:
		return domain.KindInternal
	}
}

// Retryable reports whether repeating the same request may succeed.
func Retryable(err error) bool {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindNetwork {
		return true
	}
	return domain.Retryable(err)
}
