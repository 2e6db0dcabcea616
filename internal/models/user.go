package models

import "time"

// AuthProvider records how a user signs in.
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
)

// User represents the user model in the database
type User struct {
	Base
	Email        string       `gorm:"uniqueIndex;not null" json:"email"`
	Password     string       `json:"-"`
	AuthProvider AuthProvider `gorm:"not null;default:'local'" json:"auth_provider"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	IsActive     bool         `gorm:"default:true" json:"is_active"`
	// SessionTokenHash is the SHA-256 of the token issued at the last
	// sign-in. Signing out clears it, which revokes the token.
	SessionTokenHash string        `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time    `json:"last_login_at,omitempty"`
	Accounts         []Account     `gorm:"foreignKey:UserID" json:"accounts,omitempty"`
	Transactions     []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	Installments     []Installment `gorm:"foreignKey:UserID" json:"installments,omitempty"`
}
