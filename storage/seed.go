package storage

import (
	"context"
	"log"

	"loggit/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedMaster creates the master account when none exists. Run against the
// failover store so the account lands in every tier.
func SeedMaster(ctx context.Context, store Store, username, passcode string) error {
	users, err := store.ListUsers(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.IsMaster() {
			return nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	master := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		FullName:     "Administrator",
		Role:         models.RoleMaster,
		Status:       models.StatusActive,
		PasscodeHash: string(hash),
		PasscodeSet:  true,
	}
	if err := store.PutUser(ctx, master); err != nil {
		return err
	}

	log.Printf("Master account created (username: %s)", username)
	return nil
}
