package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User is the stored principal. A user may hold a password hash, an external id, or both
// after linking; Provider only records where the account came from last.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"           json:"id"`
	Email        string             `bson:"email"                   json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Name         string             `bson:"name"                    json:"name"`
	Provider     string             `bson:"provider"                json:"provider"`    // "local" | "google"
	ExternalID   string             `bson:"external_id,omitempty"   json:"-"`           // Google sub
	CreatedAt    time.Time          `bson:"created_at"              json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"              json:"updated_at"`
}

func (u *User) HasPassword() bool { return u.PasswordHash != "" }

// Profile is the public view of a User.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Provider string `json:"provider,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Provider: u.Provider}
}

// NormalizeEmail is the single place emails are canonicalized before they are stored or compared.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
