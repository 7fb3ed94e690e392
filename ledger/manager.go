package ledger

import (
	"context"
	"errors"
	"fmt"

	"loggit/models"
	"loggit/storage"

	"github.com/google/uuid"
)

// Manager orchestrates entry and verification mutations against the
// storage contract, applying ownership and lock checks before touching
// the store. Views are rebuilt through Aggregate after every mutation
// rather than patched in place.
type Manager struct {
	store storage.Store
}

func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// CreateEntry inserts a new entry on behalf of actor. Employees may only
// log their own shifts and are blocked inside verified periods; masters
// may log for anyone and are never blocked.
func (m *Manager) CreateEntry(ctx context.Context, actor *models.User, entry models.WorkEntry) (models.WorkEntry, error) {
	return m.upsert(ctx, actor, "", entry)
}

// ReplaceEntry edits an existing entry as delete-then-insert: the prior
// record is removed and the replacement stored, possibly under a new id.
// The two steps are not a single transaction; the storage contract spans
// tiers that cannot share one.
func (m *Manager) ReplaceEntry(ctx context.Context, actor *models.User, replacesID string, entry models.WorkEntry) (models.WorkEntry, error) {
	if replacesID == "" {
		return models.WorkEntry{}, fmt.Errorf("replaced entry id is required")
	}
	return m.upsert(ctx, actor, replacesID, entry)
}

func (m *Manager) upsert(ctx context.Context, actor *models.User, replacesID string, entry models.WorkEntry) (models.WorkEntry, error) {
	if entry.UserID == "" {
		entry.UserID = actor.ID
	}
	if !actor.CanManageEntriesFor(entry.UserID) {
		return models.WorkEntry{}, &UnauthorizedOwnershipError{ActorID: actor.ID, SubjectID: entry.UserID}
	}
	if entry.Date.IsZero() {
		return models.WorkEntry{}, fmt.Errorf("entry date is required")
	}

	verifications, err := m.store.ListVerifications(ctx)
	if err != nil {
		return models.WorkEntry{}, err
	}
	if actor.IsEmployee() && Locked(actor.Role, entry.UserID, entry.Date, verifications) {
		return models.WorkEntry{}, &LockedPeriodError{SubjectID: entry.UserID, PeriodKey: PeriodKey(entry.Date)}
	}

	total, err := entry.ComputeTotalHours()
	if err != nil {
		return models.WorkEntry{}, err
	}
	entry.TotalHours = total
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	// PutEntry upserts by id, so a create that reuses an existing id is an
	// overwrite and must pass the same prior-entry checks as an edit.
	priorID := replacesID
	if priorID == "" {
		priorID = entry.ID
	}
	prior, err := m.findEntry(ctx, priorID)
	removePrior := false
	switch {
	case errors.Is(err, ErrEntryNotFound):
		if replacesID != "" {
			return models.WorkEntry{}, err
		}
	case err != nil:
		return models.WorkEntry{}, err
	default:
		if err := m.checkOverwrite(actor, prior, verifications); err != nil {
			return models.WorkEntry{}, err
		}
		removePrior = prior.ID != entry.ID
	}

	// A replacement carrying a different id may still collide with a third
	// entry; that overwrite needs the same checks before anything mutates.
	if replacesID != "" && entry.ID != replacesID {
		target, err := m.findEntry(ctx, entry.ID)
		switch {
		case errors.Is(err, ErrEntryNotFound):
		case err != nil:
			return models.WorkEntry{}, err
		default:
			if err := m.checkOverwrite(actor, target, verifications); err != nil {
				return models.WorkEntry{}, err
			}
		}
	}

	if removePrior {
		if err := m.store.RemoveEntry(ctx, prior.ID); err != nil {
			return models.WorkEntry{}, err
		}
	}

	if err := m.store.PutEntry(ctx, entry); err != nil {
		return models.WorkEntry{}, err
	}
	return entry, nil
}

// checkOverwrite gates any write that would displace an existing entry:
// the actor must own it and, for employees, its period must be open.
func (m *Manager) checkOverwrite(actor *models.User, existing models.WorkEntry, verifications []models.VerificationRecord) error {
	if !actor.CanManageEntriesFor(existing.UserID) {
		return &UnauthorizedOwnershipError{ActorID: actor.ID, SubjectID: existing.UserID}
	}
	if actor.IsEmployee() && Locked(actor.Role, existing.UserID, existing.Date, verifications) {
		return &LockedPeriodError{SubjectID: existing.UserID, PeriodKey: PeriodKey(existing.Date)}
	}
	return nil
}

// DeleteEntry removes an entry after an ownership check. Employees cannot
// delete out of a verified period either; allowing it would hollow out the
// lock the master signed off on.
func (m *Manager) DeleteEntry(ctx context.Context, actor *models.User, entryID string) error {
	entry, err := m.findEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if !actor.CanManageEntriesFor(entry.UserID) {
		return &UnauthorizedOwnershipError{ActorID: actor.ID, SubjectID: entry.UserID}
	}
	if actor.IsEmployee() {
		verifications, err := m.store.ListVerifications(ctx)
		if err != nil {
			return err
		}
		if Locked(actor.Role, entry.UserID, entry.Date, verifications) {
			return &LockedPeriodError{SubjectID: entry.UserID, PeriodKey: PeriodKey(entry.Date)}
		}
	}
	return m.store.RemoveEntry(ctx, entryID)
}

// findEntry scans the store for an entry by id. The storage contract is
// list-based, matching the collaborator it fronts.
func (m *Manager) findEntry(ctx context.Context, id string) (models.WorkEntry, error) {
	entries, err := m.store.ListEntries(ctx)
	if err != nil {
		return models.WorkEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.WorkEntry{}, ErrEntryNotFound
}

// SetVerification upserts the lock flag for one (subject, period) pair.
// Only masters may toggle it; records are never deleted, only flipped.
// It has no effect on stored entries, only on future lock evaluations.
func (m *Manager) SetVerification(ctx context.Context, actor *models.User, subjectID, periodKey string, isVerified bool) error {
	if !actor.IsMaster() {
		return &UnauthorizedOwnershipError{ActorID: actor.ID, SubjectID: subjectID}
	}
	if subjectID == "" {
		return fmt.Errorf("subject id is required")
	}
	if !ValidPeriodKey(periodKey) {
		return fmt.Errorf("invalid period key %q", periodKey)
	}
	return m.store.PutVerification(ctx, subjectID, periodKey, isVerified)
}

// LedgerFor builds the month summaries for a subject. Employees see only
// their own ledger; masters can inspect any user or, via GlobalSubject,
// the combined ledger over all active personnel.
func (m *Manager) LedgerFor(ctx context.Context, actor *models.User, subjectID string) ([]MonthSummary, error) {
	if subjectID == "" {
		subjectID = actor.ID
	}
	if subjectID != actor.ID && !actor.IsMaster() {
		return nil, &UnauthorizedOwnershipError{ActorID: actor.ID, SubjectID: subjectID}
	}

	entries, err := m.store.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	verifications, err := m.store.ListVerifications(ctx)
	if err != nil {
		return nil, err
	}

	var scoped []models.WorkEntry
	if subjectID == GlobalSubject {
		users, err := m.store.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		owners := make(map[string]bool, len(users))
		for _, u := range users {
			owners[u.ID] = u.IsMaster() || u.IsActive()
		}
		for _, e := range entries {
			if owners[e.UserID] {
				scoped = append(scoped, e)
			}
		}
	} else {
		for _, e := range entries {
			if e.UserID == subjectID {
				scoped = append(scoped, e)
			}
		}
	}

	return Aggregate(scoped, verifications, subjectID), nil
}
