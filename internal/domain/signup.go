package domain

import (
	"strings"
	"time"
)

// PendingSignup binds a username to the verification code issued for it.
// PK: username_key, GSI: code. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
// A second StartSignup for the same username overwrites the item, which is
// what invalidates the previous code.
type PendingSignup struct {
	UsernameKey string `json:"-" dynamodbav:"username_key"`
	Username    string `json:"username" dynamodbav:"username"`
	Code        string `json:"code" dynamodbav:"code"`
	IssuedAt    int64  `json:"issued_at" dynamodbav:"issued_at"`
	ExpiresAt   int64  `json:"expires_at" dynamodbav:"expires_at"`
}

// Expired reports whether the pending signup is past its expiry at now.
// DynamoDB TTL deletion lags, so readers must check this themselves.
func (p *PendingSignup) Expired(now time.Time) bool {
	return p.ExpiresAt <= now.Unix()
}

type StartSignupRequest struct {
	Username string `json:"username" validate:"required,profile_username"`
}

type FinishSignupRequest struct {
	Code     string `json:"code" validate:"required"`
	Password string `json:"password" validate:"required,max=72"`
}

// BioContainsCode is the verification predicate: the externally hosted text
// must contain the exact code. It has no side effects, so checks can be
// repeated until the user has updated their bio.
func BioContainsCode(code, bio string) bool {
	if code == "" {
		return false
	}
	return strings.Contains(bio, code)
}
