package storage

import (
	"context"
	"fmt"

	"loggit/models"
)

// Status is the observable connection state of a store. The failover
// store starts connecting, then settles on connected (remote tier
// answering) or local (serving from the fallback).
type Status string

const (
	StatusConnecting Status = "connecting"
	StatusConnected  Status = "connected"
	StatusLocal      Status = "local"
)

// Store is the persistence contract the core depends on. Reads must
// reflect the most recent prior write observed by this process; whether a
// remote database or the local fallback answered is invisible to callers.
type Store interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListEntries(ctx context.Context) ([]models.WorkEntry, error)
	ListVerifications(ctx context.Context) ([]models.VerificationRecord, error)
	PutEntry(ctx context.Context, entry models.WorkEntry) error
	RemoveEntry(ctx context.Context, id string) error
	PutVerification(ctx context.Context, subjectID, periodKey string, verified bool) error
	PutUser(ctx context.Context, user models.User) error
	PatchUser(ctx context.Context, id string, patch models.UserPatch) error
	RemoveUser(ctx context.Context, id string) error
}

// StoreUnavailableError is returned only when every tier failed to serve
// an operation. Remote-tier failures alone degrade to the local store and
// are logged, not surfaced.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable for %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}
