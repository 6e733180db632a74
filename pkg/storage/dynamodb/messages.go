package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/leonfocus/leonfocus/pkg/models"
)

// CreateMessage persists a chat message. Messages are keyed by room and
// creation time, so two messages in the same room must not share a timestamp.
func (s *Store) CreateMessage(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error) {
	msgAV, err := attributevalue.MarshalMap(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat message: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.MessagesTableName),
		Item:                msgAV,
		ConditionExpression: aws.String("attribute_not_exists(created_at)"),
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, fmt.Errorf("message at %s already exists in room %s", msg.CreatedAt, msg.Room)
		}
		return nil, unavailable("failed to create chat message in DynamoDB", err)
	}

	return msg, nil
}

// ListMessages retrieves the most recent messages for a room, returned in
// ascending created-at order.
func (s *Store) ListMessages(ctx context.Context, room string, limit int32) ([]models.ChatMessage, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.MessagesTableName),
		KeyConditionExpression: aws.String("room = :room"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":room": &types.AttributeValueMemberS{Value: room},
		},
		ScanIndexForward: aws.Bool(false), // newest first, reversed below
		Limit:            aws.Int32(limit),
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, unavailable("failed to query chat messages", err)
	}

	var messages []models.ChatMessage
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat messages: %w", err)
	}

	// The query walked newest-to-oldest; callers want chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
