package handler

import (
	"log/slog"
	"net/http"

	"github.com/orbit-dashboard/orbit/internal/domain"
)

var kindStatus = map[string]int{
	domain.KindValidation:           http.StatusBadRequest,
	domain.KindInvalidUsername:      http.StatusUnprocessableEntity,
	domain.KindUsernameTaken:        http.StatusConflict,
	domain.KindCodeNotFound:         http.StatusNotFound,
	domain.KindProfileUnreachable:   http.StatusServiceUnavailable,
	domain.KindVerificationMismatch: http.StatusOK,
	domain.KindUserNotFound:         http.StatusNotFound,
	domain.KindInvalidCredentials:   http.StatusUnauthorized,
	domain.KindStorageUnavailable:   http.StatusInternalServerError,
	domain.KindUnauthorized:         http.StatusUnauthorized,
	domain.KindForbidden:            http.StatusForbidden,
	domain.KindNotFound:             http.StatusNotFound,
}

// Messages shown to users. Validation kinds use the error text instead, since
// it names the offending field.
var kindMessage = map[string]string{
	domain.KindUsernameTaken:        "username is already taken",
	domain.KindCodeNotFound:         "verification code not found or expired",
	domain.KindProfileUnreachable:   "could not reach the profile service, try again",
	domain.KindVerificationMismatch: "code not found in profile description",
	domain.KindUserNotFound:         "no account with that username",
	domain.KindInvalidCredentials:   "incorrect password",
	domain.KindStorageUnavailable:   "service temporarily unavailable, try again",
	domain.KindUnauthorized:         "unauthorized",
	domain.KindForbidden:            "forbidden",
	domain.KindNotFound:             "not found",
	domain.KindInternal:             "internal error",
}

// statusFor maps an error to its HTTP status and wire kind.
func statusFor(err error) (int, string) {
	kind := domain.KindOf(err)
	if status, ok := kindStatus[kind]; ok {
		return status, kind
	}
	return http.StatusInternalServerError, domain.KindInternal
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	msg, ok := kindMessage[kind]
	if !ok {
		msg = err.Error()
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "kind", kind, "err", err)
	}
	writeJSON(w, status, MessageEnvelope{Error: msg, Kind: kind})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: msg, Kind: domain.KindValidation})
}
