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
	"github.com/leonfocus/leonfocus/pkg/storage"
)

// GetAccount retrieves a user's full preference document from DynamoDB.
func (s *Store) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account user ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.AccountsTableName),
		Key:            key,
		ConsistentRead: aws.Bool(true), // re-read-before-decide must observe the latest committed write
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, unavailable("failed to get account from DynamoDB", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("account for user ID %s: %w", userID, storage.ErrAccountNotFound)
	}

	var account models.Account
	if err := attributevalue.UnmarshalMap(result.Item, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

// PutAccount writes the whole merged preference document back.
//
// There is intentionally no UpdateExpression here. The document is replaced
// as a unit so that a completed write is always self-consistent, and the last
// merge-write observed wins.
func (s *Store) PutAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	accountAV, err := attributevalue.MarshalMap(account)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.AccountsTableName),
		Item:      accountAV,
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		return nil, unavailable("failed to put account to DynamoDB", err)
	}

	return account, nil
}

// CreateAccount creates a fresh preference document, refusing to overwrite an
// existing one.
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	accountAV, err := attributevalue.MarshalMap(account)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.AccountsTableName),
		Item:                accountAV,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, fmt.Errorf("account for user ID %s already exists", account.UserID)
		}
		return nil, unavailable("failed to create account in DynamoDB", err)
	}

	return account, nil
}
