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

// MembershipRepo provides typed DynamoDB operations for the workspace_members table.
type MembershipRepo struct {
	client    API
	tableName string
}

func NewMembershipRepo(client API, tableName string) *MembershipRepo {
	return &MembershipRepo{client: client, tableName: tableName}
}

func (r *MembershipRepo) Put(ctx context.Context, m *domain.Membership) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal membership: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return unavailable("put membership", err)
	}
	return nil
}

func (r *MembershipRepo) Get(ctx context.Context, accountID, workspaceID string) (*domain.Membership, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey(fieldAccountID, accountID, fieldWorkspaceID, workspaceID),
	})
	if err != nil {
		return nil, unavailable("get membership", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("membership not found: %w", domain.ErrNotFound)
	}
	var m domain.Membership
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, fmt.Errorf("unmarshal membership: %w", err)
	}
	return &m, nil
}

// ListByAccount returns every workspace the account belongs to. Never nil.
func (r *MembershipRepo) ListByAccount(ctx context.Context, accountID string) ([]domain.Membership, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("account_id = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: accountID},
		},
	})
	memberships := []domain.Membership{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, unavailable("query memberships", err)
		}
		var batch []domain.Membership
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal memberships: %w", err)
		}
		memberships = append(memberships, batch...)
	}
	return memberships, nil
}
