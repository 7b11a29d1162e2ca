package ports

import (
	"context"

	"vrtask/domain/trial"
)

// TrialStorePort is the append-only persistence sink for closed trial
// records. The engine never reads it back; the in-memory block history is
// the only read path.
type TrialStorePort interface {
	WriteTrial(ctx context.Context, sessionID string, rec *trial.Record) error
	Close() error
}
