package app

import (
	"github.com/google/uuid"

	"vrtask/domain/condition"
	"vrtask/domain/staircase"
	"vrtask/domain/trial"
)

// SessionID identifies one run of the experiment.
type SessionID string

// NewSessionID creates a time-ordered session identifier.
func NewSessionID() SessionID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return SessionID(id.String())
}

// Status is the lifecycle state of a session.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusGenerated Status = "generated"
	StatusRunning   Status = "running"
	StatusComplete  Status = "complete"
	StatusAborted   Status = "aborted"
)

// Session is the explicit mutable state of one experiment run. It is owned
// by the engine and only touched from the single orchestrator tick.
type Session struct {
	ID     SessionID
	Status Status

	ActiveBlock Block
	blockIndex  int

	TrainingTimeline []condition.Mode
	MainTimeline     []condition.Mode
	TrainingPos      int
	MainPos          int
	DemoRemaining    int

	// History is the ordered trial record of the active block, reset at
	// each stimulus-bearing block boundary. TrainingHistory is the full
	// training record, retained for pair derivation and reporting.
	History         trial.History
	TrainingHistory trial.History
	MainHistory     trial.History

	Pairs map[condition.Mode]staircase.Pair
}

// StatusReport is the externally visible snapshot of session progress.
type StatusReport struct {
	Session     SessionID `json:"session"`
	Status      Status    `json:"status"`
	ActiveBlock Block     `json:"active_block"`
	TrainingPos int       `json:"training_pos"`
	TrainingLen int       `json:"training_len"`
	MainPos     int       `json:"main_pos"`
	MainLen     int       `json:"main_len"`
}
