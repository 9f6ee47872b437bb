package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"postboard/internal/domain"
)

// ListParams narrows the cross-user post listing. Zero values mean no
// limit, no offset, no search filter.
type ListParams struct {
	Limit  int32
	Offset int32
	Search string
}

// PostRepo provides post persistence.
type PostRepo interface {
	Create(ctx context.Context, p domain.Post) (domain.Post, error)
	GetByID(ctx context.Context, id string) (domain.Post, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Post, error)
	List(ctx context.Context, params ListParams) ([]domain.Post, error)
	UpdateContent(ctx context.Context, id, content string) (domain.Post, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// PGPostRepo implements PostRepo with Postgres.
type PGPostRepo struct {
	db *pgxpool.Pool
}

// NewPGPostRepo returns a new PGPostRepo.
func NewPGPostRepo(db *pgxpool.Pool) *PGPostRepo {
	return &PGPostRepo{db: db}
}

func (r *PGPostRepo) Create(ctx context.Context, p domain.Post) (domain.Post, error) {
	query := `
		INSERT INTO posts (id, content, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, content, user_id, created_at, updated_at`
	var out domain.Post
	err := r.db.QueryRow(ctx, query, p.ID, p.Content, p.UserID).Scan(
		&out.ID, &out.Content, &out.UserID, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *PGPostRepo) GetByID(ctx context.Context, id string) (domain.Post, error) {
	query := `
		SELECT id, content, user_id, created_at, updated_at
		FROM posts WHERE id = $1`
	var p domain.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Content, &p.UserID, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// ListByUser returns a user's posts newest first.
func (r *PGPostRepo) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	query := `
		SELECT id, content, user_id, created_at, updated_at
		FROM posts WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Content, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// List returns posts across all users, newest first, with optional content
// search and limit/offset paging.
func (r *PGPostRepo) List(ctx context.Context, params ListParams) ([]domain.Post, error) {
	query := `
		SELECT id, content, user_id, created_at, updated_at
		FROM posts
		WHERE ($1 = '' OR content ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT NULLIF($2, 0) OFFSET $3`
	rows, err := r.db.Query(ctx, query, params.Search, params.Limit, params.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Content, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// UpdateContent replaces the content and stamps updated_at.
func (r *PGPostRepo) UpdateContent(ctx context.Context, id, content string) (domain.Post, error) {
	query := `
		UPDATE posts SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, content, user_id, created_at, updated_at`
	var p domain.Post
	err := r.db.QueryRow(ctx, query, id, content).Scan(
		&p.ID, &p.Content, &p.UserID, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Delete removes the post. Returns false if no row matched.
func (r *PGPostRepo) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
