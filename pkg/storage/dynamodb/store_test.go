package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/leonfocus/leonfocus/pkg/models"
	"github.com/leonfocus/leonfocus/pkg/storage"
	"github.com/leonfocus/leonfocus/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestStore(client *mocks.DynamoDBAPI) *Store {
	return New(client, "accounts-table", "messages-table", "stickers-table", "https://cdn.example.com/stickers/")
}

func testAccount() *models.Account {
	return &models.Account{
		UserID:    "user1",
		Name:      "Leon",
		Balance:   250,
		Inventory: map[string]int64{"leon.png": 2},
		Timer:     models.DefaultTimerSettings(),
	}
}

func TestGetAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client := new(mocks.DynamoDBAPI)
		item, err := attributevalue.MarshalMap(testAccount())
		require.NoError(t, err)
		client.On("GetItem", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.GetItemInput) bool {
			return *input.TableName == "accounts-table" && input.ConsistentRead != nil && *input.ConsistentRead
		})).Return(&awsdynamodb.GetItemOutput{Item: item}, nil)
		store := newTestStore(client)

		account, err := store.GetAccount(context.Background(), "user1")

		require.NoError(t, err)
		assert.Equal(t, "user1", account.UserID)
		assert.Equal(t, int64(250), account.Balance)
		assert.Equal(t, int64(2), account.Inventory["leon.png"])
		client.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		client := new(mocks.DynamoDBAPI)
		client.On("GetItem", mock.Anything, mock.Anything).Return(&awsdynamodb.GetItemOutput{Item: nil}, nil)
		store := newTestStore(client)

		_, err := store.GetAccount(context.Background(), "ghost")

		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
	})

	t.Run("Remote Fault Is Transient", func(t *testing.T) {
		client := new(mocks.DynamoDBAPI)
		client.On("GetItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
		store := newTestStore(client)

		_, err := store.GetAccount(context.Background(), "user1")

		assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
	})
}

func TestPutAccount(t *testing.T) {
	t.Run("Writes Whole Document Unconditionally", func(t *testing.T) {
		client := new(mocks.DynamoDBAPI)
		client.On("PutItem", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.PutItemInput) bool {
			return *input.TableName == "accounts-table" && input.ConditionExpression == nil
		})).Return(&awsdynamodb.PutItemOutput{}, nil)
		store := newTestStore(client)

		account, err := store.PutAccount(context.Background(), testAccount())

		require.NoError(t, err)
		assert.Equal(t, "user1", account.UserID)
		client.AssertExpectations(t)
	})

	t.Run("Remote Fault Is Transient", func(t *testing.T) {
		client := new(mocks.DynamoDBAPI)
		client.On("PutItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
		store := newTestStore(client)

		_, err := store.PutAccount(context.Background(), testAccount())

		assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
	})
}

func TestCreateAccount(t *testing.T) {
	t.Run("Refuses To Overwrite", func(t *testing.T) {
		client := new(mocks.DynamoDBAPI)
		client.On("PutItem", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.PutItemInput) bool {
			return input.ConditionExpression != nil && *input.ConditionExpression == "attribute_not_exists(user_id)"
		})).Return(nil, &types.ConditionalCheckFailedException{})
		store := newTestStore(client)

		_, err := store.CreateAccount(context.Background(), testAccount())

		require.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrStoreUnavailable)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("Success", func(t *testing.T) {
		client := new(mocks.DynamoDBAPI)
		client.On("PutItem", mock.Anything, mock.Anything).Return(&awsdynamodb.PutItemOutput{}, nil)
		store := newTestStore(client)

		account, err := store.CreateAccount(context.Background(), testAccount())

		require.NoError(t, err)
		assert.Equal(t, "user1", account.UserID)
	})
}

func TestCreateMessage(t *testing.T) {
	msg := &models.ChatMessage{
		ID:        "m1",
		Room:      "global",
		Content:   "hello",
		AuthorID:  "user1",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("Success", func(t *testing.T) {
		client := new(mocks.DynamoDBAPI)
		client.On("PutItem", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.PutItemInput) bool {
			return *input.TableName == "messages-table"
		})).Return(&awsdynamodb.PutItemOutput{}, nil)
		store := newTestStore(client)

		created, err := store.CreateMessage(context.Background(), msg)

		require.NoError(t, err)
		assert.Equal(t, "m1", created.ID)
		client.AssertExpectations(t)
	})

	t.Run("Timestamp Collision", func(t *testing.T) {
		client := new(mocks.DynamoDBAPI)
		client.On("PutItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})
		store := newTestStore(client)

		_, err := store.CreateMessage(context.Background(), msg)

		require.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrStoreUnavailable)
	})
}

func TestListMessages(t *testing.T) {
	t.Run("Returns Chronological Order", func(t *testing.T) {
		// The query walks newest first; the store reverses before returning.
		newer := models.ChatMessage{ID: "m2", Room: "global", CreatedAt: time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)}
		older := models.ChatMessage{ID: "m1", Room: "global", CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
		newerItem, err := attributevalue.MarshalMap(newer)
		require.NoError(t, err)
		olderItem, err := attributevalue.MarshalMap(older)
		require.NoError(t, err)

		client := new(mocks.DynamoDBAPI)
		client.On("Query", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.QueryInput) bool {
			return *input.TableName == "messages-table" &&
				input.ScanIndexForward != nil && !*input.ScanIndexForward &&
				*input.Limit == int32(50)
		})).Return(&awsdynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{newerItem, olderItem},
		}, nil)
		store := newTestStore(client)

		messages, err := store.ListMessages(context.Background(), "global", 50)

		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "m1", messages[0].ID)
		assert.Equal(t, "m2", messages[1].ID)
		client.AssertExpectations(t)
	})

	t.Run("Remote Fault Is Transient", func(t *testing.T) {
		client := new(mocks.DynamoDBAPI)
		client.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
		store := newTestStore(client)

		_, err := store.ListMessages(context.Background(), "global", 50)

		assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
	})
}

func TestListStickers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		item, err := attributevalue.MarshalMap(models.Sticker{ID: "leon.png", Name: "leon.png"})
		require.NoError(t, err)
		client := new(mocks.DynamoDBAPI)
		client.On("Scan", mock.Anything, mock.MatchedBy(func(input *awsdynamodb.ScanInput) bool {
			return *input.TableName == "stickers-table"
		})).Return(&awsdynamodb.ScanOutput{Items: []map[string]types.AttributeValue{item}}, nil)
		store := newTestStore(client)

		stickers, err := store.ListStickers(context.Background())

		require.NoError(t, err)
		require.Len(t, stickers, 1)
		assert.Equal(t, "leon.png", stickers[0].Name)
	})

	t.Run("Remote Fault Is Transient", func(t *testing.T) {
		client := new(mocks.DynamoDBAPI)
		client.On("Scan", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
		store := newTestStore(client)

		_, err := store.ListStickers(context.Background())

		assert.ErrorIs(t, err, storage.ErrStoreUnavailable)
	})
}

func TestResolveStickerURL(t *testing.T) {
	store := newTestStore(new(mocks.DynamoDBAPI))
	assert.Equal(t, "https://cdn.example.com/stickers/leon.png", store.ResolveStickerURL("leon.png"))

	store.AssetBaseURL = "https://cdn.example.com/stickers"
	assert.Equal(t, "https://cdn.example.com/stickers/leon.png", store.ResolveStickerURL("leon.png"))
}
