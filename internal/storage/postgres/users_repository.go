package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventra/server/internal/domain/accounts"
	"github.com/eventra/server/internal/metrics"
)

// UserRepository persists user records.
type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ accounts.Repository = (*UserRepository)(nil)

func (r *UserRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const userColumns = `id, first_name, middle_name, last_name, username, email,
	phone_number, date_of_birth, password_hash, is_verified, is_staff,
	is_superuser, created_at`

func scanUser(row pgx.Row) (*accounts.User, error) {
	var u accounts.User
	err := row.Scan(
		&u.ID, &u.FirstName, &u.MiddleName, &u.LastName, &u.Username,
		&u.Email, &u.PhoneNumber, &u.DateOfBirth, &u.PasswordHash,
		&u.IsVerified, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, params accounts.CreateParams) (u *accounts.User, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("users.create", start, err) }()

	query := `
		INSERT INTO users (
			id, first_name, middle_name, last_name, username, email,
			phone_number, date_of_birth, password_hash, is_verified,
			is_staff, is_superuser
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + userColumns

	u, err = scanUser(r.queryer().QueryRow(ctx, query,
		params.ID, params.FirstName, params.MiddleName, params.LastName,
		params.Username, params.Email, params.PhoneNumber, params.DateOfBirth,
		params.PasswordHash, params.IsVerified, params.IsStaff, params.IsSuperuser,
	))
	if err != nil {
		switch {
		case constraintViolated(err, "users_email_key"):
			return nil, accounts.ErrEmailTaken
		case constraintViolated(err, "users_username_key"):
			return nil, accounts.ErrUsernameTaken
		case constraintViolated(err, "users_phone_number_key"):
			return nil, accounts.ErrPhoneTaken
		case constraintViolated(err, "users_pkey"):
			return nil, fmt.Errorf("user id collision: %w", err)
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*accounts.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)
	u, err := scanUser(r.queryer().QueryRow(ctx, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, accounts.ErrNotFound
		}
		return nil, fmt.Errorf("querying user by %s: %w", column, err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (u *accounts.User, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("users.get_by_id", start, err) }()
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (u *accounts.User, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("users.get_by_email", start, err) }()
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (u *accounts.User, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("users.get_by_username", start, err) }()
	return r.getBy(ctx, "username", username)
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (u *accounts.User, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("users.get_by_phone", start, err) }()
	return r.getBy(ctx, "phone_number", phone)
}

func (r *UserRepository) List(ctx context.Context) (users []accounts.User, err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("users.list", start, err) }()

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.queryer().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users = []accounts.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) MarkVerified(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { metrics.RecordQuery("users.mark_verified", start, err) }()

	tag, err := r.queryer().Exec(ctx, `UPDATE users SET is_verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("marking user verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return accounts.ErrNotFound
	}
	return nil
}
