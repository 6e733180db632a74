package storage

import (
	"context"

	"github.com/leonfocus/leonfocus/pkg/models"
)

// CatalogStore defines read access to the sticker catalog.
type CatalogStore interface {
	// ListStickers retrieves the full sticker catalog.
	ListStickers(ctx context.Context) ([]models.Sticker, error)

	// ResolveStickerURL returns the asset URL for a sticker file ID.
	ResolveStickerURL(id string) string
}
