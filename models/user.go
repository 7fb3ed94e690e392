package models

import (
	"time"
)

type Role string

const (
	RoleMaster   Role = "MASTER"
	RoleEmployee Role = "EMPLOYEE"
)

// Status tracks whether an employee is still in service. Users who have
// left keep their historical entries but lose login access.
type Status string

const (
	StatusActive Status = "active"
	StatusLeft   Status = "left"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"uniqueIndex;not null;size:100" json:"username"`
	FullName     string    `gorm:"not null;size:200" json:"full_name"`
	Email        string    `gorm:"size:200" json:"email"`
	Tel          string    `gorm:"size:50" json:"tel"`
	Address      string    `gorm:"size:300" json:"address"`
	DOB          string    `gorm:"size:10" json:"dob"`
	Role         Role      `gorm:"not null;size:20" json:"role"`
	Status       Status    `gorm:"not null;size:10;default:active" json:"status"`
	PasscodeHash string    `json:"-"`
	PasscodeSet  bool      `gorm:"default:false" json:"passcode_set"`
}

// UserPatch carries a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Username     *string `json:"username"`
	FullName     *string `json:"full_name"`
	Email        *string `json:"email"`
	Tel          *string `json:"tel"`
	Address      *string `json:"address"`
	DOB          *string `json:"dob"`
	Status       *Status `json:"status"`
	PasscodeHash *string `json:"-"`
	PasscodeSet  *bool   `json:"-"`
}

// Fields returns the patch as a column/value map, suitable for a partial
// update against either storage tier.
func (p UserPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Username != nil {
		fields["username"] = *p.Username
	}
	if p.FullName != nil {
		fields["full_name"] = *p.FullName
	}
	if p.Email != nil {
		fields["email"] = *p.Email
	}
	if p.Tel != nil {
		fields["tel"] = *p.Tel
	}
	if p.Address != nil {
		fields["address"] = *p.Address
	}
	if p.DOB != nil {
		fields["dob"] = *p.DOB
	}
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	if p.PasscodeHash != nil {
		fields["passcode_hash"] = *p.PasscodeHash
	}
	if p.PasscodeSet != nil {
		fields["passcode_set"] = *p.PasscodeSet
	}
	return fields
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

func (u *User) IsMaster() bool {
	return u.Role == RoleMaster
}

func (u *User) IsEmployee() bool {
	return u.Role == RoleEmployee
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// CanLogIn reports whether the account still has access. Masters are never
// locked out by status.
func (u *User) CanLogIn() bool {
	return u.IsMaster() || u.IsActive()
}

func (u *User) CanManageEntriesFor(userID string) bool {
	if u.IsMaster() {
		return true
	}
	return u.ID == userID
}
