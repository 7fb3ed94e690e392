package ledger

import (
	"context"
	"testing"
	"time"

	"loggit/models"
	"loggit/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	master   = &models.User{ID: "master-1", Role: models.RoleMaster, Status: models.StatusActive, FullName: "Administrator"}
	employee = &models.User{ID: "emp-1", Role: models.RoleEmployee, Status: models.StatusActive, FullName: "Employee One"}
	other    = &models.User{ID: "emp-2", Role: models.RoleEmployee, Status: models.StatusActive, FullName: "Employee Two"}
)

func newManager(t *testing.T) (*Manager, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	ctx := context.Background()
	for _, u := range []*models.User{master, employee, other} {
		require.NoError(t, store.PutUser(ctx, *u))
	}
	return NewManager(store), store
}

func shift(userID string, day time.Time) models.WorkEntry {
	return models.WorkEntry{
		UserID:       userID,
		Date:         day,
		TimeIn:       "08:00",
		TimeOut:      "17:00",
		MorningBreak: 15,
		Lunch:        45,
	}
}

func TestCreateEntryComputesHours(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	created, err := m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.March, 10)))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.InDelta(t, 8.0, created.TotalHours, 1e-9)
}

func TestCreateEntryDefaultsToActor(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	entry := shift("", date(2025, time.March, 10))
	created, err := m.CreateEntry(ctx, employee, entry)
	require.NoError(t, err)
	assert.Equal(t, employee.ID, created.UserID)
}

func TestCreateEntryOwnership(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	_, err := m.CreateEntry(ctx, employee, shift(other.ID, date(2025, time.March, 10)))
	var unauthorized *UnauthorizedOwnershipError
	require.ErrorAs(t, err, &unauthorized)
	assert.Equal(t, employee.ID, unauthorized.ActorID)

	// Master may log on anyone's behalf.
	_, err = m.CreateEntry(ctx, master, shift(other.ID, date(2025, time.March, 10)))
	assert.NoError(t, err)
}

func TestCreateEntryReusedIDOwnership(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	victim, err := m.CreateEntry(ctx, other, shift(other.ID, date(2025, time.March, 10)))
	require.NoError(t, err)

	// A create reusing an existing id is an overwrite and must pass the
	// prior entry's ownership check, not just the incoming one.
	attack := shift(employee.ID, date(2025, time.March, 11))
	attack.ID = victim.ID
	_, err = m.CreateEntry(ctx, employee, attack)
	var unauthorized *UnauthorizedOwnershipError
	require.ErrorAs(t, err, &unauthorized)

	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, other.ID, entries[0].UserID)
}

func TestCreateEntryReusedIDLockedPeriod(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	created, err := m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.March, 10)))
	require.NoError(t, err)
	require.NoError(t, m.SetVerification(ctx, master, employee.ID, "March 2025", true))

	// Re-creating the locked entry's id with a later date would move it out
	// of the verified month without going through ReplaceEntry.
	moved := shift(employee.ID, date(2025, time.April, 2))
	moved.ID = created.ID
	_, err = m.CreateEntry(ctx, employee, moved)
	var locked *LockedPeriodError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, "March 2025", locked.PeriodKey)

	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, date(2025, time.March, 10), entries[0].Date)

	// The master can still correct the record in place.
	_, err = m.CreateEntry(ctx, master, moved)
	assert.NoError(t, err)
}

func TestCreateEntryRequiresDate(t *testing.T) {
	m, _ := newManager(t)

	entry := shift(employee.ID, time.Time{})
	_, err := m.CreateEntry(context.Background(), employee, entry)
	assert.Error(t, err)
}

func TestCreateEntryRejectsBadClock(t *testing.T) {
	m, _ := newManager(t)

	entry := shift(employee.ID, date(2025, time.March, 10))
	entry.TimeOut = "bogus"
	_, err := m.CreateEntry(context.Background(), employee, entry)
	assert.Error(t, err)
}

func TestLockGating(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.SetVerification(ctx, master, employee.ID, "March 2025", true))

	_, err := m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.March, 12)))
	var locked *LockedPeriodError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, "March 2025", locked.PeriodKey)

	// Same date, master actor: allowed, and the period stays verified.
	_, err = m.CreateEntry(ctx, master, shift(employee.ID, date(2025, time.March, 12)))
	require.NoError(t, err)

	summaries, err := m.LedgerFor(ctx, master, employee.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].IsVerified)

	// Adjacent month is still open for the employee.
	_, err = m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.April, 2)))
	assert.NoError(t, err)
}

func TestReplaceEntryDeletesPriorRecord(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	created, err := m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.March, 10)))
	require.NoError(t, err)

	replacement := shift(employee.ID, date(2025, time.March, 11))
	replacement.ID = "replacement-id"
	updated, err := m.ReplaceEntry(ctx, employee, created.ID, replacement)
	require.NoError(t, err)
	assert.Equal(t, "replacement-id", updated.ID)

	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "replacement-id", entries[0].ID)
	assert.Equal(t, date(2025, time.March, 11), entries[0].Date)
}

func TestReplaceEntrySameID(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	created, err := m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.March, 10)))
	require.NoError(t, err)

	edited := created
	edited.TimeOut = "18:00"
	updated, err := m.ReplaceEntry(ctx, employee, created.ID, edited)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.InDelta(t, 9.0, updated.TotalHours, 1e-9)

	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReplaceEntryCollidingID(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	victim, err := m.CreateEntry(ctx, other, shift(other.ID, date(2025, time.March, 10)))
	require.NoError(t, err)
	created, err := m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.March, 12)))
	require.NoError(t, err)

	// Replacing one's own entry under another user's id is still an
	// overwrite of that user's record.
	replacement := shift(employee.ID, date(2025, time.March, 13))
	replacement.ID = victim.ID
	_, err = m.ReplaceEntry(ctx, employee, created.ID, replacement)
	var unauthorized *UnauthorizedOwnershipError
	require.ErrorAs(t, err, &unauthorized)

	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestReplaceEntryMissingPrior(t *testing.T) {
	m, _ := newManager(t)

	_, err := m.ReplaceEntry(context.Background(), employee, "no-such-id", shift(employee.ID, date(2025, time.March, 10)))
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestReplaceEntryLockedPriorPeriod(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	created, err := m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.March, 10)))
	require.NoError(t, err)
	require.NoError(t, m.SetVerification(ctx, master, employee.ID, "March 2025", true))

	// Moving a locked entry out of its period is still an edit of that period.
	_, err = m.ReplaceEntry(ctx, employee, created.ID, shift(employee.ID, date(2025, time.April, 1)))
	var locked *LockedPeriodError
	assert.ErrorAs(t, err, &locked)
}

func TestDeleteEntry(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	created, err := m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.March, 10)))
	require.NoError(t, err)

	// Another employee cannot delete it.
	err = m.DeleteEntry(ctx, other, created.ID)
	var unauthorized *UnauthorizedOwnershipError
	require.ErrorAs(t, err, &unauthorized)

	require.NoError(t, m.DeleteEntry(ctx, employee, created.ID))
	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, m.DeleteEntry(ctx, employee, created.ID), ErrEntryNotFound)
}

func TestDeleteEntryLockedPeriod(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	created, err := m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.March, 10)))
	require.NoError(t, err)
	require.NoError(t, m.SetVerification(ctx, master, employee.ID, "March 2025", true))

	var locked *LockedPeriodError
	assert.ErrorAs(t, m.DeleteEntry(ctx, employee, created.ID), &locked)

	// Master can still remove it.
	assert.NoError(t, m.DeleteEntry(ctx, master, created.ID))
}

func TestSetVerificationTogglesOneRecord(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.SetVerification(ctx, master, employee.ID, "March 2025", true))
	require.NoError(t, m.SetVerification(ctx, master, employee.ID, "March 2025", false))

	records, err := store.ListVerifications(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, employee.ID, records[0].SubjectID)
	assert.Equal(t, "March 2025", records[0].PeriodKey)
	assert.False(t, records[0].IsVerified)
}

func TestSetVerificationMasterOnly(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	var unauthorized *UnauthorizedOwnershipError
	assert.ErrorAs(t, m.SetVerification(ctx, employee, employee.ID, "March 2025", true), &unauthorized)
	assert.Error(t, m.SetVerification(ctx, master, employee.ID, "NotAMonth 2025", true))
	assert.Error(t, m.SetVerification(ctx, master, "", "March 2025", true))
}

func TestLedgerForScoping(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	_, err := m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.March, 10)))
	require.NoError(t, err)
	_, err = m.CreateEntry(ctx, other, shift(other.ID, date(2025, time.March, 11)))
	require.NoError(t, err)

	// Employees only see their own entries.
	summaries, err := m.LedgerFor(ctx, employee, "")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Len(t, summaries[0].Entries, 1)
	assert.Equal(t, employee.ID, summaries[0].Entries[0].UserID)

	// And cannot inspect anyone else.
	var unauthorized *UnauthorizedOwnershipError
	_, err = m.LedgerFor(ctx, employee, other.ID)
	assert.ErrorAs(t, err, &unauthorized)
	_, err = m.LedgerFor(ctx, employee, GlobalSubject)
	assert.ErrorAs(t, err, &unauthorized)

	// Master inspects an individual.
	summaries, err = m.LedgerFor(ctx, master, other.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, other.ID, summaries[0].Entries[0].UserID)
}

func TestLedgerForGlobalExcludesArchived(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()

	_, err := m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.March, 10)))
	require.NoError(t, err)
	_, err = m.CreateEntry(ctx, other, shift(other.ID, date(2025, time.March, 11)))
	require.NoError(t, err)

	left := models.StatusLeft
	require.NoError(t, store.PatchUser(ctx, other.ID, models.UserPatch{Status: &left}))

	summaries, err := m.LedgerFor(ctx, master, GlobalSubject)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Len(t, summaries[0].Entries, 1)
	assert.Equal(t, employee.ID, summaries[0].Entries[0].UserID)

	// Global verification records live under their own subject.
	require.NoError(t, m.SetVerification(ctx, master, GlobalSubject, "March 2025", true))
	summaries, err = m.LedgerFor(ctx, master, GlobalSubject)
	require.NoError(t, err)
	assert.True(t, summaries[0].IsVerified)

	individual, err := m.LedgerFor(ctx, master, employee.ID)
	require.NoError(t, err)
	assert.False(t, individual[0].IsVerified)
}

// Full walkthrough: employee logs March, master verifies, employee is
// blocked, master can still add, totals and flag hold up.
func TestVerificationScenario(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	first, err := m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.March, 10)))
	require.NoError(t, err)
	assert.InDelta(t, 8.0, first.TotalHours, 1e-9)

	require.NoError(t, m.SetVerification(ctx, master, employee.ID, "March 2025", true))

	_, err = m.CreateEntry(ctx, employee, shift(employee.ID, date(2025, time.March, 15)))
	var locked *LockedPeriodError
	require.ErrorAs(t, err, &locked)

	added, err := m.CreateEntry(ctx, master, shift(employee.ID, date(2025, time.March, 20)))
	require.NoError(t, err)

	summaries, err := m.LedgerFor(ctx, master, employee.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "March 2025", summaries[0].PeriodKey)
	assert.True(t, summaries[0].IsVerified)
	assert.InDelta(t, first.TotalHours+added.TotalHours, summaries[0].TotalHours, 1e-9)
}
