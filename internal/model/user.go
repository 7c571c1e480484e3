package model

import "time"

// GoogleIDPrefix scopes Google subject identifiers in the user key space.
const GoogleIDPrefix = "google-"

// Identity is the caller resolved from a verified Google token
type Identity struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Email   string `json:"email,omitempty"`
	Gender  string `json:"gender,omitempty"`
}

// NewGoogleIdentity builds an Identity from a Google subject and profile fields
func NewGoogleIdentity(sub, name, picture, email, gender string) *Identity {
	return &Identity{
		ID:      GoogleIDPrefix + sub,
		Name:    name,
		Picture: picture,
		Email:   email,
		Gender:  gender,
	}
}

// User is the persisted profile of an authenticated caller.
// Optional fields are nil until a token supplies them, and are never cleared afterwards.
type User struct {
	UserID    string    `json:"userId" gorm:"primaryKey;size:255"`
	Name      string    `json:"name,omitempty" gorm:"size:255;not null;default:''"`
	Picture   string    `json:"picture,omitempty" gorm:"size:1024;not null;default:''"`
	Email     *string   `json:"email,omitempty" gorm:"size:255"`
	Gender    *string   `json:"gender,omitempty" gorm:"size:50"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

// NewUserFromIdentity copies only the non-empty fields of an identity
func NewUserFromIdentity(identity *Identity) *User {
	user := &User{
		UserID:  identity.ID,
		Name:    identity.Name,
		Picture: identity.Picture,
	}
	if identity.Email != "" {
		email := identity.Email
		user.Email = &email
	}
	if identity.Gender != "" {
		gender := identity.Gender
		user.Gender = &gender
	}
	return user
}
