package workout

import "context"

// Repository persists imported workouts. The importer owns creation;
// user edits after import belong to other parts of the product and are
// never overwritten here.
type Repository interface {
	Create(ctx context.Context, w *Workout) error

	// ExistsByExternalID backs the idempotent-import check.
	ExistsByExternalID(ctx context.Context, ownerID uint, provider, externalID string) (bool, error)

	CountByOwner(ctx context.Context, ownerID uint) (int64, error)
}
