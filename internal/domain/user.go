package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is an explicit enumeration of profile roles. Capability checks
// go through the methods below rather than comparing strings at call
// sites.
type Role string

const (
	RoleCustomer    Role = "customer"
	RoleAdmin       Role = "admin"
	RoleMasterAdmin Role = "master_admin"
)

// ParseRole maps a stored role value to a Role, defaulting unknown
// values to customer so a corrupt row never grants privileges.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleMasterAdmin:
		return RoleMasterAdmin
	default:
		return RoleCustomer
	}
}

// CanAccessAdmin reports whether the role may use the admin back office.
func (r Role) CanAccessAdmin() bool {
	return r == RoleAdmin || r == RoleMasterAdmin
}

// CanManageUsers reports whether the role may create, edit and delete
// other profiles. Only master admins can.
func (r Role) CanManageUsers() bool {
	return r == RoleMasterAdmin
}

// Profile is a storefront account. The ID doubles as the auth identity.
type Profile struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Phone        string    `json:"phone" db:"phone"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RefreshToken is an opaque long-lived credential stored server side.
type RefreshToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
}

// PasswordResetToken is a single-use credential mailed to the user on a
// reset request.
type PasswordResetToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Used      bool      `json:"used" db:"used"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
