package ledger

import (
	"testing"
	"time"

	"loggit/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateOrdering(t *testing.T) {
	entries := []models.WorkEntry{
		{ID: "a", UserID: "u1", Date: date(2025, time.March, 1), TotalHours: 8},
		{ID: "b", UserID: "u1", Date: date(2025, time.March, 15), TotalHours: 7.5},
		{ID: "c", UserID: "u1", Date: date(2025, time.February, 20), TotalHours: 6},
	}

	summaries := Aggregate(entries, nil, "u1")
	require.Len(t, summaries, 2)

	assert.Equal(t, "March 2025", summaries[0].PeriodKey)
	assert.Equal(t, "February 2025", summaries[1].PeriodKey)

	require.Len(t, summaries[0].Entries, 2)
	assert.Equal(t, "b", summaries[0].Entries[0].ID)
	assert.Equal(t, "a", summaries[0].Entries[1].ID)

	assert.InDelta(t, 15.5, summaries[0].TotalHours, 1e-9)
	assert.InDelta(t, 6, summaries[1].TotalHours, 1e-9)
}

func TestAggregateSameDayKeepsStorageOrder(t *testing.T) {
	entries := []models.WorkEntry{
		{ID: "first", UserID: "u1", Date: date(2025, time.March, 10)},
		{ID: "second", UserID: "u1", Date: date(2025, time.March, 10)},
	}

	summaries := Aggregate(entries, nil, "u1")
	require.Len(t, summaries, 1)
	assert.Equal(t, "first", summaries[0].Entries[0].ID)
	assert.Equal(t, "second", summaries[0].Entries[1].ID)
}

func TestAggregatePartition(t *testing.T) {
	entries := []models.WorkEntry{
		{ID: "a", Date: date(2025, time.January, 5)},
		{ID: "b", Date: date(2025, time.January, 6)},
		{ID: "c", Date: date(2024, time.December, 31)},
		{ID: "d", Date: date(2023, time.June, 1)},
		{ID: "skipped"}, // zero date is excluded, not an error
	}

	summaries := Aggregate(entries, nil, "u1")

	seen := make(map[string]int)
	for _, s := range summaries {
		for _, e := range s.Entries {
			seen[e.ID]++
		}
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1, "d": 1}, seen)
}

func TestAggregateIdempotent(t *testing.T) {
	entries := []models.WorkEntry{
		{ID: "a", Date: date(2025, time.March, 1), TotalHours: 4},
		{ID: "b", Date: date(2025, time.April, 2), TotalHours: 5},
	}
	verifications := []models.VerificationRecord{
		{SubjectID: "u1", PeriodKey: "March 2025", IsVerified: true},
	}

	first := Aggregate(entries, verifications, "u1")
	second := Aggregate(entries, verifications, "u1")
	assert.Equal(t, first, second)
}

func TestAggregateVerificationLookup(t *testing.T) {
	entries := []models.WorkEntry{
		{ID: "a", Date: date(2025, time.March, 1)},
		{ID: "b", Date: date(2025, time.April, 1)},
	}
	verifications := []models.VerificationRecord{
		{SubjectID: "u1", PeriodKey: "March 2025", IsVerified: true},
		{SubjectID: "u2", PeriodKey: "April 2025", IsVerified: true}, // other subject
	}

	summaries := Aggregate(entries, verifications, "u1")
	require.Len(t, summaries, 2)

	// April first (most recent), unverified despite u2's record.
	assert.Equal(t, "April 2025", summaries[0].PeriodKey)
	assert.False(t, summaries[0].IsVerified)
	assert.Equal(t, "March 2025", summaries[1].PeriodKey)
	assert.True(t, summaries[1].IsVerified)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, nil, "u1"))
}
