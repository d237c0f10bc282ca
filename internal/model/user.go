package model

import (
	"time"

	"coinhub/internal/credential"
)

// User represents an authenticated user in the system.
type User struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	Email        credential.Email `json:"email" gorm:"uniqueIndex;size:254;not null"`
	PasswordHash string           `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName    string           `json:"firstName" gorm:"size:255;not null"`
	LastName     string           `json:"lastName" gorm:"size:255;not null"`
	CreatedAt    time.Time        `json:"creationDate"`
	UpdatedAt    time.Time        `json:"-"`

	// Relations
	Accounts   []Account  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Categories []Category `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// Password rehydrates the stored hash.
func (u *User) Password() (credential.Password, error) {
	return credential.PasswordFromHash(u.PasswordHash)
}

// Public is the minimal projection returned by the auth endpoints.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email.String()}
}

// Safe drops the credential before the user leaves the service layer.
func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:        u.ID,
		Email:     u.Email.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser carries only id and email.
type PublicUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// SafeUser is a user without its password hash. It is also the cached form.
type SafeUser struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"creationDate"`
}

// UserChanges lists the fields an update may touch; nil means unchanged.
type UserChanges struct {
	Email        *credential.Email
	PasswordHash *string
	FirstName    *string
	LastName     *string
}
