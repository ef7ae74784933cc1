package models

import "time"

// Role is the authorization role attached to a user account.
type Role string

// RoleUser is assigned to every self-registered account.
const RoleUser Role = "user"

// User represents a registered account.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(250);not null" validate:"required,max=250"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(250);not null" validate:"required,email,max=250"`
	PwHash    string    `json:"-" gorm:"column:pw_hash;type:varchar(250);not null"` // Never serialized
	Role      Role      `json:"role" gorm:"type:varchar(10);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Principal is the authenticated identity bound to a session or token.
type Principal struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Principal returns the identity view of the user.
func (u *User) Principal() *Principal {
	return &Principal{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
