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

// ActiveSessionRepo reads the active_sessions table. Items are written by the
// session hosts; Put exists for seeding and tests.
type ActiveSessionRepo struct {
	client    API
	tableName string
}

func NewActiveSessionRepo(client API, tableName string) *ActiveSessionRepo {
	return &ActiveSessionRepo{client: client, tableName: tableName}
}

func (r *ActiveSessionRepo) Put(ctx context.Context, s *domain.ActiveSession) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal active session: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return unavailable("put active session", err)
	}
	return nil
}

// ListByWorkspace returns every active session in the workspace. Never nil.
func (r *ActiveSessionRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.ActiveSession, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("workspace_id = :ws"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ws": &types.AttributeValueMemberS{Value: workspaceID},
		},
	})
	sessions := []domain.ActiveSession{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, unavailable("query active sessions", err)
		}
		var batch []domain.ActiveSession
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal active sessions: %w", err)
		}
		sessions = append(sessions, batch...)
	}
	return sessions, nil
}
