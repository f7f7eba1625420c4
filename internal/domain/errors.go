package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Kind sentinels. Each one wraps the generic class it belongs to, so
// errors.Is(err, ErrConflict) still holds for ErrUsernameTaken.
var (
	ErrValidation           = fmt.Errorf("validation failed: %w", ErrBadRequest)
	ErrUsernameTaken        = fmt.Errorf("username already taken: %w", ErrConflict)
	ErrInvalidUsername      = fmt.Errorf("invalid username: %w", ErrBadRequest)
	ErrCodeNotFound         = fmt.Errorf("verification code not found or expired: %w", ErrNotFound)
	ErrProfileUnreachable   = errors.New("external profile unreachable")
	ErrProfileNotFound      = fmt.Errorf("external profile not found: %w", ErrNotFound)
	ErrVerificationMismatch = errors.New("verification code not found in profile bio")
	ErrUserNotFound         = fmt.Errorf("user not found: %w", ErrNotFound)
	ErrInvalidCredentials   = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrStorageUnavailable   = errors.New("storage unavailable")
)

// Kind names as they appear on the wire in the "kind" field of error envelopes.
const (
	KindValidation           = "ValidationError"
	KindUsernameTaken        = "UsernameTaken"
	KindInvalidUsername      = "InvalidUsername"
	KindCodeNotFound         = "CodeNotFound"
	KindProfileUnreachable   = "ProfileUnreachable"
	KindVerificationMismatch = "VerificationMismatch"
	KindUserNotFound         = "UserNotFound"
	KindInvalidCredentials   = "InvalidCredentials"
	KindStorageUnavailable   = "StorageUnavailable"
	KindUnauthorized         = "Unauthorized"
	KindForbidden            = "Forbidden"
	KindRateLimited          = "RateLimited"
	KindNotFound             = "NotFound"
	KindInternal             = "Internal"
)

// Order matters: specific kinds are checked before the generic classes they wrap.
var kinds = []struct {
	err  error
	kind string
}{
	{ErrUsernameTaken, KindUsernameTaken},
	{ErrInvalidUsername, KindInvalidUsername},
	{ErrValidation, KindValidation},
	{ErrCodeNotFound, KindCodeNotFound},
	{ErrProfileUnreachable, KindProfileUnreachable},
	{ErrVerificationMismatch, KindVerificationMismatch},
	{ErrUserNotFound, KindUserNotFound},
	{ErrInvalidCredentials, KindInvalidCredentials},
	{ErrStorageUnavailable, KindStorageUnavailable},
	{ErrUnauthorized, KindUnauthorized},
	{ErrForbidden, KindForbidden},
	{ErrNotFound, KindNotFound},
	{ErrBadRequest, KindValidation},
}

// KindOf returns the taxonomy name for err, or KindInternal when err does not
// wrap any known sentinel.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// Retryable reports whether the caller may retry the same request without
// going back to an earlier step.
func Retryable(err error) bool {
	return errors.Is(err, ErrProfileUnreachable) || errors.Is(err, ErrStorageUnavailable)
}
