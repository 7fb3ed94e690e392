package ledger

import (
	"sort"

	"loggit/models"
)

// MonthSummary is the derived monthly view of a subject's ledger. It is
// never stored; it is rebuilt from entries and verification records on
// every refresh.
type MonthSummary struct {
	PeriodKey  string             `json:"period_key"`
	Entries    []models.WorkEntry `json:"entries"`
	TotalHours float64            `json:"total_hours"`
	IsVerified bool               `json:"is_verified"`
}

// Aggregate groups entries into month summaries for one subject. The
// caller decides the scope of entries (one user, or the global set); no
// filtering happens here. Entries with a zero date are skipped rather
// than failing the whole view. The result is deterministic: summaries
// are ordered most recent period first, entries within a period by date
// descending with storage order breaking ties.
func Aggregate(entries []models.WorkEntry, verifications []models.VerificationRecord, subjectID string) []MonthSummary {
	groups := make(map[string][]models.WorkEntry)
	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}
		key := PeriodKey(e.Date)
		groups[key] = append(groups[key], e)
	}

	summaries := make([]MonthSummary, 0, len(groups))
	for key, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Date.After(group[j].Date)
		})
		var total float64
		for _, e := range group {
			total += e.TotalHours
		}
		summaries = append(summaries, MonthSummary{
			PeriodKey:  key,
			Entries:    group,
			TotalHours: total,
			IsVerified: verified(verifications, subjectID, key),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		iy, im, _ := parsePeriodKey(summaries[i].PeriodKey)
		jy, jm, _ := parsePeriodKey(summaries[j].PeriodKey)
		if iy != jy {
			return iy > jy
		}
		return im > jm
	})
	return summaries
}

// verified looks up the flag for (subjectID, periodKey); a missing record
// means the period is open.
func verified(verifications []models.VerificationRecord, subjectID, periodKey string) bool {
	for _, v := range verifications {
		if v.SubjectID == subjectID && v.PeriodKey == periodKey {
			return v.IsVerified
		}
	}
	return false
}
