package database

import (
	"context"
	"database/sql"
	"fmt"

	"stagecoach/internal/models"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, api_key, methodology, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.conn.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.APIKey,
		string(user.Methodology),
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, email, api_key, methodology, created_at FROM users WHERE id = ?`
	return r.scanOne(r.db.conn.QueryRowContext(ctx, query, id))
}

// GetByAPIKey resolves a bearer credential to its account.
func (r *UserRepository) GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	query := `SELECT id, email, api_key, methodology, created_at FROM users WHERE api_key = ?`
	return r.scanOne(r.db.conn.QueryRowContext(ctx, query, apiKey))
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var methodology string

	err := row.Scan(&user.ID, &user.Email, &user.APIKey, &methodology, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.Methodology = models.MethodologyFromString(methodology)
	return user, nil
}
