package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/orbit-dashboard/orbit/internal/domain"
)

// PendingSignupRepo provides typed DynamoDB operations for the pending_signups table.
// There is at most one item per username key, so Put doubles as supersession.
type PendingSignupRepo struct {
	client    API
	tableName string
}

func NewPendingSignupRepo(client API, tableName string) *PendingSignupRepo {
	return &PendingSignupRepo{client: client, tableName: tableName}
}

// Put stores p, replacing any earlier pending signup for the same username.
func (r *PendingSignupRepo) Put(ctx context.Context, p *domain.PendingSignup) error {
	p.UsernameKey = domain.UsernameKey(p.Username)
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal pending signup: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return unavailable("put pending signup", err)
	}
	return nil
}

// GetByCode resolves a code to its pending signup. The GSI is eventually
// consistent and may still hold a superseded code, so the hit is confirmed
// with a consistent read of the username-keyed item.
func (r *PendingSignupRepo) GetByCode(ctx context.Context, code string) (*domain.PendingSignup, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexCode),
		KeyConditionExpression: aws.String("#code = :code"),
		ExpressionAttributeNames: map[string]string{
			"#code": fieldCode,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
		},
	})
	if err != nil {
		return nil, unavailable("query pending signup", err)
	}
	for _, item := range out.Items {
		uk, ok := item[fieldUsernameKey].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		current, err := r.get(ctx, uk.Value)
		if err != nil {
			return nil, err
		}
		if current != nil && current.Code == code {
			return current, nil
		}
	}
	return nil, fmt.Errorf("pending signup not found: %w", domain.ErrNotFound)
}

func (r *PendingSignupRepo) get(ctx context.Context, usernameKey string) (*domain.PendingSignup, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldUsernameKey, usernameKey),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, unavailable("get pending signup", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	var p domain.PendingSignup
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal pending signup: %w", err)
	}
	return &p, nil
}

// Consume deletes the pending signup only while it still carries code.
// Returns ErrCodeNotFound when it was already consumed or superseded.
func (r *PendingSignupRepo) Consume(ctx context.Context, usernameKey, code string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldUsernameKey, usernameKey),
		ConditionExpression: aws.String("#code = :code"),
		ExpressionAttributeNames: map[string]string{
			"#code": fieldCode,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
		},
	})
	if conditionFailed(err) {
		return fmt.Errorf("consume pending signup: %w", domain.ErrCodeNotFound)
	}
	if err != nil {
		return unavailable("delete pending signup", err)
	}
	return nil
}
