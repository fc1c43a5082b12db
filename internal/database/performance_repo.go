package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"stagecoach/internal/models"
)

// ErrPersistenceFailed marks a failed performance write. The already
// uploaded video and completed analysis are not rolled back.
var ErrPersistenceFailed = errors.New("persistence failed")

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type PerformanceRepository struct {
	db *DB
}

func NewPerformanceRepository(db *DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// Insert writes one performance row. Called exactly once per successful
// aggregation; rows are never updated afterwards.
func (r *PerformanceRepository) Insert(ctx context.Context, performance *models.Performance) error {
	aiFeedback, err := json.Marshal(performance.AIFeedback)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal ai feedback: %v", ErrPersistenceFailed, err)
	}

	voiceFeedback, err := json.Marshal(performance.VoiceFeedback)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal voice feedback: %v", ErrPersistenceFailed, err)
	}

	query := `
		INSERT INTO performances (id, user_id, title, video_url, ai_feedback, voice_feedback, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.conn.ExecContext(ctx, query,
		performance.ID,
		performance.UserID,
		performance.Title,
		performance.VideoURL,
		string(aiFeedback),
		string(voiceFeedback),
		performance.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	return nil
}

func (r *PerformanceRepository) GetByID(ctx context.Context, id string) (*models.Performance, error) {
	query := `
		SELECT id, user_id, title, video_url, ai_feedback, voice_feedback, created_at
		FROM performances
		WHERE id = ?`

	return r.scanOne(r.db.conn.QueryRowContext(ctx, query, id))
}

// ListByUser returns the user's performances, newest first.
func (r *PerformanceRepository) ListByUser(ctx context.Context, userID string) ([]*models.Performance, error) {
	query := `
		SELECT id, user_id, title, video_url, ai_feedback, voice_feedback, created_at
		FROM performances
		WHERE user_id = ?
		ORDER BY created_at DESC`

	rows, err := r.db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query performances: %w", err)
	}
	defer rows.Close()

	var performances []*models.Performance
	for rows.Next() {
		performance, err := scanPerformance(rows.Scan)
		if err != nil {
			return nil, err
		}
		performances = append(performances, performance)
	}

	return performances, rows.Err()
}

func (r *PerformanceRepository) scanOne(row *sql.Row) (*models.Performance, error) {
	performance, err := scanPerformance(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return performance, nil
}

func scanPerformance(scan func(dest ...any) error) (*models.Performance, error) {
	performance := &models.Performance{}
	var aiFeedback, voiceFeedback string

	err := scan(
		&performance.ID,
		&performance.UserID,
		&performance.Title,
		&performance.VideoURL,
		&aiFeedback,
		&voiceFeedback,
		&performance.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan performance: %w", err)
	}

	if err := json.Unmarshal([]byte(aiFeedback), &performance.AIFeedback); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ai feedback: %w", err)
	}
	if err := json.Unmarshal([]byte(voiceFeedback), &performance.VoiceFeedback); err != nil {
		return nil, fmt.Errorf("failed to unmarshal voice feedback: %w", err)
	}

	return performance, nil
}
