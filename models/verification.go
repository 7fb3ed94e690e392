package models

import (
	"time"
)

// VerificationRecord is the lock state for one (subject, period) pair.
// The subject is an individual user id or the reserved global ledger
// subject; the period key is a "MonthName Year" string shared with the
// aggregator. At most one record exists per pair (upsert semantics).
type VerificationRecord struct {
	SubjectID  string    `gorm:"primaryKey;size:64" json:"subject_id"`
	PeriodKey  string    `gorm:"primaryKey;size:20" json:"period_key"`
	IsVerified bool      `gorm:"not null;default:false" json:"is_verified"`
	UpdatedAt  time.Time `json:"updated_at"`
}
