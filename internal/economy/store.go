package economy

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned by Lookup when no record exists for a user.
var ErrRecordNotFound = errors.New("user record not found")

// Store is the persistence interface for user records. The JSON file store
// is the default backend; Postgres is available for deployments that outgrow
// a flat file, and the in-memory store backs tests.
//
// Read creates and persists a default record on first access, so callers
// never see a missing user. Lookup is the non-creating counterpart for
// inspection surfaces that must not materialize records. WritePair persists
// two updated records together; trade settlement relies on it so a completed
// trade is a single write against the backend.
type Store interface {
	Read(ctx context.Context, userID string) (*UserRecord, error)
	Lookup(ctx context.Context, userID string) (*UserRecord, error)
	Write(ctx context.Context, userID string, rec *UserRecord) error
	WritePair(ctx context.Context, firstID string, first *UserRecord, secondID string, second *UserRecord) error
}
