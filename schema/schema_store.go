package schema

import "time"

// Snapshot is the decoded content of the persisted contact slot.
type Snapshot struct {
	Contacts  []Contact
	Version   int
	Timestamp time.Time
}

// OperationRecord is one journal entry written by the history store.
type OperationRecord struct {
	OperationID int64
	Operation   Operation
	ContactID   string
	StartTime   time.Time
	DurationMs  int64
	Source      Source
	ResultCount int
	Error       *string
}

// Failed reports whether the recorded operation returned an error.
func (r OperationRecord) Failed() bool {
	return r.Error != nil
}
