package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/leonfocus/leonfocus/pkg/storage"
)

// DynamoDBAPI captures the subset of the DynamoDB client used by the Store.
// Deliberately restricted to get/put/query/scan: the upstream preference
// service exposes no conditional-update or transaction primitives, so the
// store must not grow a dependency on them either.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store implements the storage interfaces using AWS DynamoDB.
type Store struct {
	Client            DynamoDBAPI
	AccountsTableName string
	MessagesTableName string
	StickersTableName string
	AssetBaseURL      string
}

// New creates a new Store.
func New(client DynamoDBAPI, accountsTable, messagesTable, stickersTable, assetBaseURL string) *Store {
	return &Store{
		Client:            client,
		AccountsTableName: accountsTable,
		MessagesTableName: messagesTable,
		StickersTableName: stickersTable,
		AssetBaseURL:      assetBaseURL,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

// unavailable wraps a remote fault so callers can classify it as transient.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, storage.ErrStoreUnavailable, err)
}
