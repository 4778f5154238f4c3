package repository

import (
	"context"
	"errors"

	"github.com/mbodj/packhouse/internal/domain/models"
)

// ErrStorageUnavailable flags append or read failures against the backing
// store. Callers surface it without retrying; submitted values are echoed
// back by the HTTP layer so no input is silently lost.
var ErrStorageUnavailable = errors.New("record store unavailable")

// Store is the append-only packing-log record store. Append persists the
// entry with a generated identifier and returns the stored row; entries come
// back from ReadAll in insertion order. There is no update or delete path.
type Store interface {
	Append(ctx context.Context, entry models.PackingLogEntry) (models.PackingLogEntry, error)
	ReadAll(ctx context.Context) ([]models.PackingLogEntry, error)
}
