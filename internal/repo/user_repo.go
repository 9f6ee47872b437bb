package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"postboard/internal/domain"
)

// UserRepo provides user persistence.
type UserRepo interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// Create inserts a new user and returns it with DB-assigned timestamps.
func (r *PGUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	query := `
		INSERT INTO users (id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, email, password_hash, role, created_at`
	var out domain.User
	err := r.db.QueryRow(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash, u.Role).Scan(
		&out.ID, &out.Username, &out.Email, &out.PasswordHash, &out.Role, &out.CreatedAt,
	)
	return out, err
}

// GetByID returns the user by id.
func (r *PGUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, role, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// GetByEmail returns the user by email.
func (r *PGUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, email, password_hash, role, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	return u, err
}

// EmailExists reports whether a user with the given email exists.
func (r *PGUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	return exists, err
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (code 23505).
func IsUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pge.Code == "23505"
	}
	return false
}

// UniqueViolationConstraint returns the name of the violated unique
// constraint, or "" if err is not a unique violation.
func UniqueViolationConstraint(err error) string {
	var pge *pgconn.PgError
	if errors.As(err, &pge) && pge.Code == "23505" {
		return pge.ConstraintName
	}
	return ""
}
