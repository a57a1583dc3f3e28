package models

import (
	"time"

	"github.com/google/uuid"
)

// GuestOwnerID namespaces records created without an authenticated profile.
const GuestOwnerID = "guest"

// Profile is a registered user. Only the bcrypt hash of the password is stored.
type Profile struct {
	ID           uuid.UUID `db:"id"            json:"id"`
	Name         string    `db:"name"          json:"name"`
	Email        string    `db:"email"         json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	TargetRole   string    `db:"target_role"   json:"target_role"`
	Skills       []string  `db:"skills"        json:"skills"`
	CreatedAt    time.Time `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"    json:"updated_at"`
}

// OwnerID is the key under which this profile's records are stored.
func (p *Profile) OwnerID() string {
	return p.ID.String()
}
