// Package repository defines domain models and data access interfaces for
// users and their activity log.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Role is a user's role in the system
type Role string

const (
	// RoleAdmin has full access including user management
	RoleAdmin Role = "admin"
	// RoleValidator can validate and edit content
	RoleValidator Role = "validator"
	// RoleUser is a regular user of the assistant
	RoleUser Role = "user"
)

// Permissions returns the permission names associated with a role.
func (r Role) Permissions() []string {
	switch r {
	case RoleAdmin:
		return []string{"all"}
	case RoleValidator:
		return []string{"validate_content", "view_users", "edit_content"}
	case RoleUser:
		return []string{"view_content", "ask_questions"}
	default:
		return nil
	}
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleValidator, RoleUser:
		return true
	}
	return false
}

// User represents a registered user. Email is the primary identifier;
// identity fields come from Google sign-in.
type User struct {
	Email      string
	GoogleID   string
	Role       Role
	IsActive   bool
	GivenName  string
	FamilyName string
	FullName   string
	PictureURL string
	Locale     string
	Metadata   map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastLogin  *time.Time
	LastSeen   *time.Time
	CreatedBy  string
}

// Activity records one user action for auditing
type Activity struct {
	ID        uuid.UUID
	UserEmail string
	Type      string
	Details   map[string]any
	Timestamp time.Time
}

// UserRepository defines operations for user persistence
type UserRepository interface {
	Upsert(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	UpdateRole(ctx context.Context, email string, role Role) error
	SetActive(ctx context.Context, email string, active bool) error
	TouchLogin(ctx context.Context, email string, at time.Time) error
	TouchSeen(ctx context.Context, email string, at time.Time) error
}

// ActivityRepository defines operations for the user activity log
type ActivityRepository interface {
	Create(ctx context.Context, activity *Activity) error
	ListByUser(ctx context.Context, email string, limit, offset int) ([]*Activity, error)
}
