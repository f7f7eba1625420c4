package domain

import (
	"strings"
	"time"
)

// Account is a verified local account bound to an external profile.
// PK: username_key (lower-cased username), GSI: account_id.
type Account struct {
	AccountID          string    `json:"id" dynamodbav:"account_id"`
	UsernameKey        string    `json:"-" dynamodbav:"username_key"`
	Username           string    `json:"username" dynamodbav:"username"`
	DisplayName        string    `json:"display_name" dynamodbav:"display_name"`
	PasswordHash       string    `json:"-" dynamodbav:"password_hash"`
	ExternalProfileRef *string   `json:"external_profile_ref" dynamodbav:"external_profile_ref"`
	PictureURL         *string   `json:"picture" dynamodbav:"picture_url"`
	CreatedAt          time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time `json:"updated" dynamodbav:"updated_at"`
}

// PublicAccount is the projection of an Account that other members may see.
type PublicAccount struct {
	AccountID   string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	PictureURL  *string `json:"picture"`
}

func (a *Account) Public() *PublicAccount {
	if a == nil {
		return nil
	}
	return &PublicAccount{
		AccountID:   a.AccountID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		PictureURL:  a.PictureURL,
	}
}

// UsernameKey returns the storage key for a username. Usernames are unique
// case-insensitively, so every lookup goes through this.
func UsernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
