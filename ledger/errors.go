package ledger

import (
	"errors"
	"fmt"
)

// ErrEntryNotFound is returned when an operation targets an entry id that
// no longer exists in the store.
var ErrEntryNotFound = errors.New("entry not found")

// LockedPeriodError blocks an employee mutation inside a verified period.
// The operation has no partial effect; the caller should surface a
// hard-stop message.
type LockedPeriodError struct {
	SubjectID string
	PeriodKey string
}

func (e *LockedPeriodError) Error() string {
	return fmt.Sprintf("period %s is verified and locked for %s", e.PeriodKey, e.SubjectID)
}

// UnauthorizedOwnershipError is returned when an actor targets an entry or
// subject they do not own and are not master over.
type UnauthorizedOwnershipError struct {
	ActorID   string
	SubjectID string
}

func (e *UnauthorizedOwnershipError) Error() string {
	return fmt.Sprintf("actor %s is not authorized to act on %s", e.ActorID, e.SubjectID)
}
