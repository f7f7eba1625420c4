package domain

import "time"

// Membership links an account to a workspace.
// PK: account_id, SK: workspace_id.
type Membership struct {
	AccountID     string    `json:"-" dynamodbav:"account_id"`
	WorkspaceID   string    `json:"id" dynamodbav:"workspace_id"`
	WorkspaceName string    `json:"name" dynamodbav:"workspace_name"`
	Role          string    `json:"role" dynamodbav:"role"`
	JoinedAt      time.Time `json:"joined" dynamodbav:"joined_at"`
}

// ActiveSession is a collaborative session running in a workspace. Records are
// written by whatever hosts the session; this service only reads them.
// PK: workspace_id, SK: session_id.
type ActiveSession struct {
	SessionID      string         `json:"id" dynamodbav:"session_id"`
	WorkspaceID    string         `json:"workspace_id" dynamodbav:"workspace_id"`
	OwnerAccountID string         `json:"owner_id" dynamodbav:"owner_account_id"`
	Name           string         `json:"name" dynamodbav:"name"`
	StartedAt      time.Time      `json:"started" dynamodbav:"started_at"`
	Owner          *PublicAccount `json:"owner,omitempty" dynamodbav:"-"`
}
