package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jlacunza/udcito/internal/auth"
	"github.com/jlacunza/udcito/internal/repository"
)

// UserService manages user accounts created through Google sign-in and the
// user activity log.
type UserService struct {
	users      repository.UserRepository
	activities repository.ActivityRepository
	logger     *slog.Logger
}

// NewUserService creates a user service
func NewUserService(users repository.UserRepository, activities repository.ActivityRepository, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:      users,
		activities: activities,
		logger:     logger,
	}
}

// EnsureUser upserts a user from a verified Google identity and returns the
// stored record. New users start with the regular user role; existing users
// keep their role and only have identity fields refreshed.
func (s *UserService) EnsureUser(ctx context.Context, identity *auth.GoogleIdentity) (*repository.User, error) {
	user := &repository.User{
		Email:      identity.Email,
		GoogleID:   identity.Subject,
		Role:       repository.RoleUser,
		IsActive:   true,
		GivenName:  identity.GivenName,
		FamilyName: identity.FamilyName,
		FullName:   identity.Name,
		PictureURL: identity.Picture,
		Locale:     identity.Locale,
		CreatedBy:  "google-signin",
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	stored, err := s.users.GetByEmail(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user after upsert: %w", err)
	}

	return stored, nil
}

// Login verifies account state, records the login and returns the user.
func (s *UserService) Login(ctx context.Context, identity *auth.GoogleIdentity) (*repository.User, error) {
	user, err := s.EnsureUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, fmt.Errorf("user %s is deactivated", user.Email)
	}

	now := time.Now()
	if err := s.users.TouchLogin(ctx, user.Email, now); err != nil {
		s.logger.Warn("failed to record login time", "email", user.Email, "error", err)
	}

	s.RecordActivity(ctx, user.Email, "login", map[string]any{"google_id": user.GoogleID})

	return user, nil
}

// GetUser retrieves a user by email
func (s *UserService) GetUser(ctx context.Context, email string) (*repository.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// ListUsers returns users with pagination
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*repository.User, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, limit, offset)
}

// UpdateRole changes a user's role. The actor is recorded in the activity log.
func (s *UserService) UpdateRole(ctx context.Context, actor, email string, role repository.Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role: %s", role)
	}

	if err := s.users.UpdateRole(ctx, email, role); err != nil {
		return err
	}

	s.RecordActivity(ctx, email, "role_changed", map[string]any{
		"new_role":   string(role),
		"changed_by": actor,
	})

	return nil
}

// SetActive enables or disables a user account
func (s *UserService) SetActive(ctx context.Context, actor, email string, active bool) error {
	if err := s.users.SetActive(ctx, email, active); err != nil {
		return err
	}

	s.RecordActivity(ctx, email, "active_changed", map[string]any{
		"is_active":  active,
		"changed_by": actor,
	})

	return nil
}

// RecordActivity writes an entry to the activity log. Failures are logged
// and do not propagate; the log is best effort.
func (s *UserService) RecordActivity(ctx context.Context, email, activityType string, details map[string]any) {
	activity := &repository.Activity{
		ID:        uuid.New(),
		UserEmail: email,
		Type:      activityType,
		Details:   details,
		Timestamp: time.Now(),
	}

	if err := s.activities.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity",
			"email", email,
			"type", activityType,
			"error", err,
		)
	}

	if err := s.users.TouchSeen(ctx, email, activity.Timestamp); err != nil {
		s.logger.Warn("failed to update last seen", "email", email, "error", err)
	}
}

// ListActivities returns a user's activity log, newest first
func (s *UserService) ListActivities(ctx context.Context, email string, limit, offset int) ([]*repository.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.activities.ListByUser(ctx, email, limit, offset)
}
