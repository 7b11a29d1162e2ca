package trial

import (
	"time"

	"github.com/google/uuid"

	"vrtask/domain/condition"
)

// ID is a unique trial identifier.
type ID string

// NewID creates a time-ordered trial identifier. UUID v7 keeps persistence
// keys sortable by creation time; falls back to v4 if v7 is unavailable.
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

func (id ID) String() string { return string(id) }

// Motion directions, encoded as angles in degrees.
const (
	DirectionUp   float32 = 90
	DirectionDown float32 = 270
)

// Confidence is the participant's reported certainty in their answer.
type Confidence string

const (
	ConfidenceSure  Confidence = "sure"
	ConfidenceGuess Confidence = "guess"
)

// Response is the decoded four-option answer: a direction plus a
// confidence level.
type Response struct {
	Direction  float32    `json:"direction"`
	Confidence Confidence `json:"confidence"`
}

// CoherenceSource records which difficulty rule produced a trial's
// coherence value.
type CoherenceSource string

const (
	SourceStaircase CoherenceSource = "staircase"
	SourcePairLow   CoherenceSource = "pair_low"
	SourcePairHigh  CoherenceSource = "pair_high"
	SourceFixed     CoherenceSource = "fixed"
)

// Record captures one trial. It is created when the trial begins, fields
// are filled in as the trial's phases complete, and it becomes read-only
// once Close is called.
type Record struct {
	ID        ID                    `json:"id"`
	Condition condition.Condition   `json:"condition"`
	Field     condition.VisualField `json:"field"`
	Ordinal   int                   `json:"ordinal"` // 1-based position within its block

	Direction       float32         `json:"direction"`
	Coherence       float64         `json:"coherence"`
	CoherenceSource CoherenceSource `json:"coherence_source"`

	Response Response      `json:"response"`
	Correct  bool          `json:"correct"`
	Latency  time.Duration `json:"latency"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	closed bool
}

// NewRecord opens a record for a trial that is about to run.
func NewRecord(cond condition.Condition, ordinal int, startedAt time.Time) *Record {
	return &Record{
		ID:        NewID(),
		Condition: cond,
		Field:     cond.Mode.Field(),
		Ordinal:   ordinal,
		StartedAt: startedAt,
	}
}

// Close marks the record complete. Further mutation is a programming error;
// Closed lets callers assert the invariant.
func (r *Record) Close(endedAt time.Time) {
	r.EndedAt = endedAt
	r.closed = true
}

// Closed reports whether the trial has ended.
func (r *Record) Closed() bool { return r.closed }
