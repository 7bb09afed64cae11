package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"pm-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ItemStore implements ports.ItemStore against a single DynamoDB table with a
// PK/SK composite key.
type ItemStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewItemStore creates a DynamoDB-backed item store
func NewItemStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *ItemStore {
	return &ItemStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Put writes a single item, honoring the put condition
func (s *ItemStore) Put(ctx context.Context, item map[string]types.AttributeValue, cond ports.PutCondition) error {
	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}

	var condition expression.ConditionBuilder
	hasCondition := false
	switch {
	case cond.MustNotExist:
		condition = expression.Name("PK").AttributeNotExists().And(expression.Name("SK").AttributeNotExists())
		hasCondition = true
	case cond.ExpectedVersion != nil:
		condition = expression.Name("Version").Equal(expression.Value(*cond.ExpectedVersion))
		hasCondition = true
	}

	if hasCondition {
		expr, err := expression.NewBuilder().WithCondition(condition).Build()
		if err != nil {
			return fmt.Errorf("failed to build condition expression: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ports.ErrConditionFailed
		}
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

// Get reads a single item with a strongly consistent read
func (s *ItemStore) Get(ctx context.Context, pk, sk string) (map[string]types.AttributeValue, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if result.Item == nil {
		return nil, ports.ErrItemNotFound
	}

	return result.Item, nil
}

// QueryPrefix returns all items in a partition whose sort key starts with the
// given prefix, following pagination until the result set is exhausted.
func (s *ItemStore) QueryPrefix(ctx context.Context, pk, skPrefix string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: pk},
				":sk": &types.AttributeValueMemberS{Value: skPrefix},
			},
			ConsistentRead:    aws.Bool(true),
			ExclusiveStartKey: lastKey,
		}

		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query items: %w", err)
		}

		items = append(items, result.Items...)

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	s.logger.Debug("Queried partition prefix",
		zap.String("pk", pk),
		zap.String("prefix", skPrefix),
		zap.Int("count", len(items)),
	)

	return items, nil
}

// Delete removes an item and reports whether it existed
func (s *ItemStore) Delete(ctx context.Context, pk, sk string) (bool, error) {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
		ReturnValues: types.ReturnValueAllOld,
	}

	result, err := s.client.DeleteItem(ctx, input)
	if err != nil {
		return false, fmt.Errorf("failed to delete item: %w", err)
	}

	return result.Attributes != nil, nil
}
