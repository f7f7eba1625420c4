package domain

import "time"

// Session is a login session. PK: token. ExpiresAt doubles as the DynamoDB TTL.
type Session struct {
	Token      string       `json:"-" dynamodbav:"token"`
	AccountID  string       `json:"account_id" dynamodbav:"account_id"`
	CreatedAt  time.Time    `json:"created" dynamodbav:"created_at"`
	ExpiresAt  int64        `json:"expires_at" dynamodbav:"expires_at"`
	Account    *Account     `json:"-" dynamodbav:"-"`
	Workspaces []Membership `json:"-" dynamodbav:"-"`
}

func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt <= now.Unix()
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
