package ledger

import (
	"time"

	"loggit/models"
)

// Locked reports whether editing is blocked for the given actor role on
// the period containing date. Masters are never blocked; mutating a
// verified period as master does not unlock it. The period key derivation
// must match the aggregator's exactly, otherwise the lock silently stops
// applying.
//
// This answers only "is the period locked"; whose entries an actor may
// touch is a separate ownership check.
func Locked(role models.Role, subjectID string, date time.Time, verifications []models.VerificationRecord) bool {
	if role == models.RoleMaster {
		return false
	}
	return verified(verifications, subjectID, PeriodKey(date))
}
