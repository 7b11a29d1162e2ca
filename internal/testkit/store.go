package testkit

import (
	"context"

	"vrtask/domain/trial"
)

// MemoryStore collects persisted trial records in order.
type MemoryStore struct {
	SessionIDs []string
	Records    []*trial.Record
	Closed     bool
}

func (s *MemoryStore) WriteTrial(ctx context.Context, sessionID string, rec *trial.Record) error {
	s.SessionIDs = append(s.SessionIDs, sessionID)
	s.Records = append(s.Records, rec)
	return nil
}

func (s *MemoryStore) Close() error {
	s.Closed = true
	return nil
}
