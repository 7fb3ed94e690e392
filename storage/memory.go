package storage

import (
	"context"
	"sync"

	"loggit/models"
)

// Memory is a map-backed Store. It backs tests and serves as a last-resort
// tier when no local database path is usable. Entries keep insertion order
// so that aggregation tie-breaks stay stable.
type Memory struct {
	mu            sync.Mutex
	users         []models.User
	entries       []models.WorkEntry
	verifications []models.VerificationRecord
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.User(nil), m.users...), nil
}

func (m *Memory) ListEntries(ctx context.Context) ([]models.WorkEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.WorkEntry(nil), m.entries...), nil
}

func (m *Memory) ListVerifications(ctx context.Context) ([]models.VerificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.VerificationRecord(nil), m.verifications...), nil
}

func (m *Memory) PutEntry(ctx context.Context, entry models.WorkEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == entry.ID {
			m.entries[i] = entry
			return nil
		}
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *Memory) RemoveEntry(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory) PutVerification(ctx context.Context, subjectID, periodKey string, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range m.verifications {
		if v.SubjectID == subjectID && v.PeriodKey == periodKey {
			m.verifications[i].IsVerified = verified
			return nil
		}
	}
	m.verifications = append(m.verifications, models.VerificationRecord{
		SubjectID:  subjectID,
		PeriodKey:  periodKey,
		IsVerified: verified,
	})
	return nil
}

func (m *Memory) PutUser(ctx context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.users {
		if u.ID == user.ID {
			m.users[i] = user
			return nil
		}
	}
	m.users = append(m.users, user)
	return nil
}

func (m *Memory) PatchUser(ctx context.Context, id string, patch models.UserPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID != id {
			continue
		}
		u := &m.users[i]
		if patch.Username != nil {
			u.Username = *patch.Username
		}
		if patch.FullName != nil {
			u.FullName = *patch.FullName
		}
		if patch.Email != nil {
			u.Email = *patch.Email
		}
		if patch.Tel != nil {
			u.Tel = *patch.Tel
		}
		if patch.Address != nil {
			u.Address = *patch.Address
		}
		if patch.DOB != nil {
			u.DOB = *patch.DOB
		}
		if patch.Status != nil {
			u.Status = *patch.Status
		}
		if patch.PasscodeHash != nil {
			u.PasscodeHash = *patch.PasscodeHash
		}
		if patch.PasscodeSet != nil {
			u.PasscodeSet = *patch.PasscodeSet
		}
		return nil
	}
	return nil
}

func (m *Memory) RemoveUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.users {
		if u.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return nil
}
