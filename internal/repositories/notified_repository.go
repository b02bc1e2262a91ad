package repositories

import (
	"context"

	"internwatch/internal/model"
)

// NotifiedRepository is the durable backend for the set of already-notified
// role identities.
type NotifiedRepository interface {
	// Load returns every stored record, in notification order.
	Load(ctx context.Context) ([]model.NotifiedRole, error)
	// Add persists a record unless its key already exists. The returned
	// bool reports whether a new row was created.
	Add(ctx context.Context, role model.NotifiedRole) (bool, error)
	// SetActive updates the stored active flag for a key.
	SetActive(ctx context.Context, key string, active bool) error
}
