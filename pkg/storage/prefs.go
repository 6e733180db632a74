package storage

import (
	"context"

	"github.com/leonfocus/leonfocus/pkg/models"
)

// PrefsStore abstracts the remote per-user preference document.
//
// The store offers no transactions and no field-level patch: PutAccount
// always writes the whole document. Read-modify-write callers (the ledger)
// must re-read immediately before every write decision.
type PrefsStore interface {
	// GetAccount retrieves the full preference document for a user.
	GetAccount(ctx context.Context, userID string) (*models.Account, error)

	// PutAccount writes the full, already-merged document back and returns it.
	PutAccount(ctx context.Context, account *models.Account) (*models.Account, error)

	// CreateAccount creates a fresh document; it fails if one already exists.
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)
}
