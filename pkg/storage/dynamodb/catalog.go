package dynamodb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/leonfocus/leonfocus/pkg/models"
)

// ListStickers retrieves the full sticker catalog.
func (s *Store) ListStickers(ctx context.Context) ([]models.Sticker, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.StickersTableName),
	}

	result, err := s.Client.Scan(ctx, input)
	if err != nil {
		return nil, unavailable("failed to scan stickers table", err)
	}

	var stickers []models.Sticker
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &stickers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stickers: %w", err)
	}

	return stickers, nil
}

// ResolveStickerURL returns the public asset URL for a sticker file ID.
func (s *Store) ResolveStickerURL(id string) string {
	return strings.TrimSuffix(s.AssetBaseURL, "/") + "/" + id
}
