package dynamo

// DynamoDB attribute and index names used in expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldAccountID   = "account_id"
	fieldUsernameKey = "username_key"
	fieldCode        = "code"
	fieldToken       = "token"
	fieldWorkspaceID = "workspace_id"
	fieldSessionID   = "session_id"
	fieldExpiresAt   = "expires_at"

	indexAccountID = "account_id-index"
	indexCode      = "code-index"
)
