package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userCols = `id, email, password_hash, full_name, role, verified, failed_logins,
	verify_token, reset_token, reset_expires, created_at, updated_at`

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
		&u.Verified, &u.FailedLogins, &u.VerifyToken, &u.ResetToken, &u.ResetExpires,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return &u, nil
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	query := `INSERT INTO app_user (id, email, password_hash, full_name, role, verified, verify_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.Role, u.Verified, u.VerifyToken,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM app_user WHERE id = $1`, userCols)
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM app_user WHERE lower(email) = lower($1)`, userCols)
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *repoPG) GetByVerifyToken(ctx context.Context, token string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM app_user WHERE verify_token = $1`, userCols)
	return scanUser(r.pool.QueryRow(ctx, query, token))
}

func (r *repoPG) GetByResetToken(ctx context.Context, token string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM app_user WHERE reset_token = $1`, userCols)
	return scanUser(r.pool.QueryRow(ctx, query, token))
}

func (r *repoPG) ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM app_user WHERE role = $1`, role).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM app_user WHERE role = $1 ORDER BY full_name LIMIT $2 OFFSET $3`, userCols)
	rows, err := r.pool.Query(ctx, query, role, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var results []*User
	for rows.Next() {
		var u User
		err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
			&u.Verified, &u.FailedLogins, &u.VerifyToken, &u.ResetToken, &u.ResetExpires,
			&u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning user: %w", err)
		}
		results = append(results, &u)
	}
	return results, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	query := `UPDATE app_user SET
			email = $2, password_hash = $3, full_name = $4, role = $5,
			verified = $6, failed_logins = $7, verify_token = $8, reset_token = $9,
			reset_expires = $10, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.Role,
		u.Verified, u.FailedLogins, u.VerifyToken, u.ResetToken, u.ResetExpires,
	).Scan(&u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user not found")
		}
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM app_user WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}
