package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"lexora/internal/common"
	"lexora/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	// FindByIDs returns the users that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	// List returns every user, newest first.
	List(ctx context.Context) ([]*model.User, error)
	UpdateAvatar(ctx context.Context, id, avatar string) (*model.User, error)
	// ToggleActive flips isActive in a single write and returns the result.
	ToggleActive(ctx context.Context, id string) (*model.User, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, name, email, hashed_password, role, avatar, bio, is_active, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Name, &user.Email, &user.HashedPassword,
		&user.Role, &user.Avatar, &user.Bio, &user.IsActive, &user.CreatedAt,
	)
	return user, err
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, name, email, hashed_password, role, avatar, bio, is_active, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Name, user.Email, user.HashedPassword,
		user.Role, user.Avatar, user.Bio, user.IsActive, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) findOne(ctx context.Context, op, where string, arg any) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "FindByEmail", "email = $1", email)
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "FindByUsername", "username = $1", username)
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "FindByID", "id = $1", id)
}

func (r *pgUserRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`
	return r.queryUsers(ctx, "FindByIDs", query, ids)
}

func (r *pgUserRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	return r.queryUsers(ctx, "List", query)
}

func (r *pgUserRepository) queryUsers(ctx context.Context, op, query string, args ...any) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.%s: %w", op, err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("pgUserRepository.%s scan: %w", op, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.%s rows: %w", op, err)
	}
	return users, nil
}

func (r *pgUserRepository) UpdateAvatar(ctx context.Context, id, avatar string) (*model.User, error) {
	query := `UPDATE users SET avatar = $2 WHERE id = $1 RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, avatar))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.UpdateAvatar: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) ToggleActive(ctx context.Context, id string) (*model.User, error) {
	query := `UPDATE users SET is_active = NOT is_active WHERE id = $1 RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.ToggleActive: %w", err)
	}
	return user, nil
}
