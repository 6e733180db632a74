package events

import (
	"context"

	"github.com/leonfocus/leonfocus/pkg/models"
)

// Publisher defines the interface for a component that emits confirmed ledger
// mutations onto the audit feed.
type Publisher interface {
	// PublishLedgerEvent enqueues one audit record. Delivery is best-effort;
	// the ledger logs and ignores failures.
	PublishLedgerEvent(ctx context.Context, event *models.LedgerEvent) error
}
