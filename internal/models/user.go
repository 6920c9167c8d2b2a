package models

import "time"

// User represents a collaborator or leader with an account on the platform.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsLeader     bool      `gorm:"not null;default:false" json:"is_leader"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role constants carried in JWT claims.
const (
	RoleLeader       = "leader"
	RoleCollaborator = "collaborator"
)

// Role returns the role string used for authorization decisions.
func (u User) Role() string {
	if u.IsLeader {
		return RoleLeader
	}
	return RoleCollaborator
}
