package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/orbit-dashboard/orbit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountRepo_Create_ConditionalOnUsernameKey(t *testing.T) {
	api := new(mockAPI)
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return *in.ConditionExpression == "attribute_not_exists(#uk)" &&
			in.ExpressionAttributeNames["#uk"] == "username_key" &&
			assert.ObjectsAreEqual(str("alice"), in.Item["username_key"])
	})).Return(&dynamodb.PutItemOutput{}, nil)

	repo := NewAccountRepo(api, "accounts")
	err := repo.Create(context.Background(), &domain.Account{AccountID: "a1", Username: "Alice"})
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestAccountRepo_Create_LoserGetsUsernameTaken(t *testing.T) {
	api := new(mockAPI)
	api.On("PutItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{})

	repo := NewAccountRepo(api, "accounts")
	err := repo.Create(context.Background(), &domain.Account{AccountID: "a1", Username: "alice"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestAccountRepo_GetByUsername_NotFound(t *testing.T) {
	api := new(mockAPI)
	api.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return assert.ObjectsAreEqual(str("bob"), in.Key["username_key"])
	})).Return(&dynamodb.GetItemOutput{}, nil)

	repo := NewAccountRepo(api, "accounts")
	_, err := repo.GetByUsername(context.Background(), "BOB")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountRepo_GetByUsername_DriverError(t *testing.T) {
	api := new(mockAPI)
	api.On("GetItem", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	repo := NewAccountRepo(api, "accounts")
	_, err := repo.GetByUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestAccountRepo_GetByID(t *testing.T) {
	api := new(mockAPI)
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return *in.IndexName == "account_id-index"
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{{
		"account_id":   str("a1"),
		"username_key": str("alice"),
		"username":     str("Alice"),
	}}}, nil)

	repo := NewAccountRepo(api, "accounts")
	a, err := repo.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", a.Username)
}

func TestPendingSignupRepo_GetByCode_SupersededCodeNotResolved(t *testing.T) {
	api := new(mockAPI)
	// The index still returns the old code...
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{{"username_key": str("alice"), "code": str("OLDCODE1")}},
	}, nil)
	// ...but the base item already carries the new one.
	api.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return in.ConsistentRead != nil && *in.ConsistentRead
	})).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"username_key": str("alice"),
		"username":     str("alice"),
		"code":         str("NEWCODE2"),
	}}, nil)

	repo := NewPendingSignupRepo(api, "pending_signups")
	_, err := repo.GetByCode(context.Background(), "OLDCODE1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPendingSignupRepo_GetByCode_Current(t *testing.T) {
	api := new(mockAPI)
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{{"username_key": str("alice"), "code": str("NEWCODE2")}},
	}, nil)
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"username_key": str("alice"),
		"username":     str("Alice"),
		"code":         str("NEWCODE2"),
		"expires_at":   &types.AttributeValueMemberN{Value: "1700000000"},
	}}, nil)

	repo := NewPendingSignupRepo(api, "pending_signups")
	p, err := repo.GetByCode(context.Background(), "NEWCODE2")
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Username)
	assert.Equal(t, int64(1700000000), p.ExpiresAt)
}

func TestPendingSignupRepo_Consume_AlreadyConsumed(t *testing.T) {
	api := new(mockAPI)
	api.On("DeleteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		return *in.ConditionExpression == "#code = :code" &&
			assert.ObjectsAreEqual(str("ABCDEFGH"), in.ExpressionAttributeValues[":code"])
	})).Return(nil, &types.ConditionalCheckFailedException{})

	repo := NewPendingSignupRepo(api, "pending_signups")
	err := repo.Consume(context.Background(), "alice", "ABCDEFGH")
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestPendingSignupRepo_Put_SetsUsernameKey(t *testing.T) {
	api := new(mockAPI)
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return in.ConditionExpression == nil &&
			assert.ObjectsAreEqual(str("alice"), in.Item["username_key"])
	})).Return(&dynamodb.PutItemOutput{}, nil)

	repo := NewPendingSignupRepo(api, "pending_signups")
	require.NoError(t, repo.Put(context.Background(), &domain.PendingSignup{Username: "Alice", Code: "ABCDEFGH"}))
	api.AssertExpectations(t)
}

func TestActiveSessionRepo_ListByWorkspace_FollowsPages(t *testing.T) {
	api := new(mockAPI)
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.QueryOutput{
		Items:            []map[string]types.AttributeValue{{"workspace_id": str("w1"), "session_id": str("s1")}},
		LastEvaluatedKey: map[string]types.AttributeValue{"workspace_id": str("w1"), "session_id": str("s1")},
	}, nil).Once()
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{{"workspace_id": str("w1"), "session_id": str("s2")}},
	}, nil).Once()

	repo := NewActiveSessionRepo(api, "active_sessions")
	sessions, err := repo.ListByWorkspace(context.Background(), "w1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s1", sessions[0].SessionID)
	assert.Equal(t, "s2", sessions[1].SessionID)
}

func TestActiveSessionRepo_ListByWorkspace_EmptyIsNotNil(t *testing.T) {
	api := new(mockAPI)
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

	repo := NewActiveSessionRepo(api, "active_sessions")
	sessions, err := repo.ListByWorkspace(context.Background(), "w1")
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestMembershipRepo_Get_NotFound(t *testing.T) {
	api := new(mockAPI)
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	repo := NewMembershipRepo(api, "workspace_members")
	_, err := repo.Get(context.Background(), "a1", "w1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionRepo_DeleteDriverError(t *testing.T) {
	api := new(mockAPI)
	api.On("DeleteItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	repo := NewSessionRepo(api, "sessions")
	err := repo.Delete(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}
