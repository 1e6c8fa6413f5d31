package repository

import (
	"context"
	"database/sql"
	"fmt"
	"lexora/internal/domain/model"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	// ListRecent returns the newest activities first.
	ListRecent(ctx context.Context, limit int) ([]*model.Activity, error)
}

type pgActivityRepository struct {
	db *sql.DB
}

func NewPgActivityRepository(db *sql.DB) ActivityRepository {
	return &pgActivityRepository{db: db}
}

func (r *pgActivityRepository) Create(ctx context.Context, activity *model.Activity) error {
	query := `INSERT INTO activities (id, user_id, type, timestamp) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, activity.ID, activity.UserID, string(activity.Type), activity.Timestamp)
	if err != nil {
		return fmt.Errorf("pgActivityRepository.Create: %w", err)
	}
	return nil
}

func (r *pgActivityRepository) ListRecent(ctx context.Context, limit int) ([]*model.Activity, error) {
	query := `SELECT id, user_id, type, timestamp FROM activities ORDER BY timestamp DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgActivityRepository.ListRecent: %w", err)
	}
	defer rows.Close()

	activities := []*model.Activity{}
	for rows.Next() {
		a := &model.Activity{}
		var typ string
		if err := rows.Scan(&a.ID, &a.UserID, &typ, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("pgActivityRepository.ListRecent scan: %w", err)
		}
		a.Type = model.ActivityType(typ)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgActivityRepository.ListRecent rows: %w", err)
	}
	return activities, nil
}
