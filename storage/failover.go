package storage

import (
	"context"
	"log"
	"sync"

	"loggit/models"
)

// Failover serves the Store contract from a remote tier while it answers,
// degrading to the local tier on any remote failure. Writes always mirror
// into the local tier so that reads after a degradation still see every
// write this process made. Once degraded it stays on the local tier until
// restart; there is no retry loop.
type Failover struct {
	remote Store
	local  Store

	mu     sync.RWMutex
	status Status
}

// NewFailover wraps a remote and a local tier. remote may be nil when the
// remote database was never reachable at startup.
func NewFailover(remote, local Store) *Failover {
	return &Failover{
		remote: remote,
		local:  local,
		status: StatusConnecting,
	}
}

// Connect probes the remote tier once and settles the connection status.
func (f *Failover) Connect(ctx context.Context) {
	if f.remote == nil {
		f.setStatus(StatusLocal)
		log.Printf("[storage] no remote store configured, using local store")
		return
	}
	if _, err := f.remote.ListUsers(ctx); err != nil {
		f.setStatus(StatusLocal)
		log.Printf("[storage] remote store unreachable, using local store: %v", err)
		return
	}
	f.setStatus(StatusConnected)
	log.Printf("[storage] remote store connected")
}

// Status reports which tier is currently answering.
func (f *Failover) Status() Status {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.status
}

func (f *Failover) setStatus(s Status) {
	f.mu.Lock()
	f.status = s
	f.mu.Unlock()
}

func (f *Failover) connected() bool {
	return f.Status() == StatusConnected
}

// degrade flips to the local tier after a remote failure. Downgraded
// durability, not a user-visible error.
func (f *Failover) degrade(op string, err error) {
	f.setStatus(StatusLocal)
	log.Printf("[storage] remote %s failed, falling back to local store: %v", op, err)
}

func (f *Failover) ListUsers(ctx context.Context) ([]models.User, error) {
	if f.connected() {
		users, err := f.remote.ListUsers(ctx)
		if err == nil {
			return users, nil
		}
		f.degrade("list users", err)
	}
	return f.local.ListUsers(ctx)
}

func (f *Failover) ListEntries(ctx context.Context) ([]models.WorkEntry, error) {
	if f.connected() {
		entries, err := f.remote.ListEntries(ctx)
		if err == nil {
			return entries, nil
		}
		f.degrade("list entries", err)
	}
	return f.local.ListEntries(ctx)
}

func (f *Failover) ListVerifications(ctx context.Context) ([]models.VerificationRecord, error) {
	if f.connected() {
		records, err := f.remote.ListVerifications(ctx)
		if err == nil {
			return records, nil
		}
		f.degrade("list verifications", err)
	}
	return f.local.ListVerifications(ctx)
}

func (f *Failover) PutEntry(ctx context.Context, entry models.WorkEntry) error {
	if f.connected() {
		if err := f.remote.PutEntry(ctx, entry); err != nil {
			f.degrade("put entry", err)
		}
	}
	if err := f.local.PutEntry(ctx, entry); err != nil {
		return &StoreUnavailableError{Op: "put entry", Err: err}
	}
	return nil
}

func (f *Failover) RemoveEntry(ctx context.Context, id string) error {
	if f.connected() {
		if err := f.remote.RemoveEntry(ctx, id); err != nil {
			f.degrade("remove entry", err)
		}
	}
	if err := f.local.RemoveEntry(ctx, id); err != nil {
		return &StoreUnavailableError{Op: "remove entry", Err: err}
	}
	return nil
}

func (f *Failover) PutVerification(ctx context.Context, subjectID, periodKey string, verified bool) error {
	if f.connected() {
		if err := f.remote.PutVerification(ctx, subjectID, periodKey, verified); err != nil {
			f.degrade("put verification", err)
		}
	}
	if err := f.local.PutVerification(ctx, subjectID, periodKey, verified); err != nil {
		return &StoreUnavailableError{Op: "put verification", Err: err}
	}
	return nil
}

func (f *Failover) PutUser(ctx context.Context, user models.User) error {
	if f.connected() {
		if err := f.remote.PutUser(ctx, user); err != nil {
			f.degrade("put user", err)
		}
	}
	if err := f.local.PutUser(ctx, user); err != nil {
		return &StoreUnavailableError{Op: "put user", Err: err}
	}
	return nil
}

func (f *Failover) PatchUser(ctx context.Context, id string, patch models.UserPatch) error {
	if f.connected() {
		if err := f.remote.PatchUser(ctx, id, patch); err != nil {
			f.degrade("patch user", err)
		}
	}
	if err := f.local.PatchUser(ctx, id, patch); err != nil {
		return &StoreUnavailableError{Op: "patch user", Err: err}
	}
	return nil
}

func (f *Failover) RemoveUser(ctx context.Context, id string) error {
	if f.connected() {
		if err := f.remote.RemoveUser(ctx, id); err != nil {
			f.degrade("remove user", err)
		}
	}
	if err := f.local.RemoveUser(ctx, id); err != nil {
		return &StoreUnavailableError{Op: "remove user", Err: err}
	}
	return nil
}
