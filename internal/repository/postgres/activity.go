package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jlacunza/udcito/internal/repository"
)

// ActivityRepo implements repository.ActivityRepository
type ActivityRepo struct {
	db *DB
}

// NewActivityRepo creates a new activity repository
func NewActivityRepo(db *DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

// Create records a user activity
func (r *ActivityRepo) Create(ctx context.Context, activity *repository.Activity) error {
	detailsJSON, err := json.Marshal(activity.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}

	query := `
		INSERT INTO user_activities (id, user_email, activity_type, details, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.db.Pool.Exec(ctx, query,
		activity.ID, activity.UserEmail, activity.Type, detailsJSON, activity.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// ListByUser retrieves activities for one user, newest first
func (r *ActivityRepo) ListByUser(ctx context.Context, email string, limit, offset int) ([]*repository.Activity, error) {
	query := `
		SELECT id, user_email, activity_type, details, timestamp
		FROM user_activities
		WHERE user_email = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Pool.Query(ctx, query, email, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []*repository.Activity
	for rows.Next() {
		var activity repository.Activity
		var detailsJSON []byte
		if err := rows.Scan(&activity.ID, &activity.UserEmail, &activity.Type,
			&detailsJSON, &activity.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &activity.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal details: %w", err)
			}
		}
		activities = append(activities, &activity)
	}

	return activities, nil
}

// Ensure ActivityRepo implements the interface
var _ repository.ActivityRepository = (*ActivityRepo)(nil)
