package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"daystack/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// TagStore persists tags in PostgreSQL via pgx. Tag names are unique per
// user; a duplicate create reports sentinel.ErrConflict.
type TagStore struct {
	pool *pgxpool.Pool
}

func NewTagStore(pool *pgxpool.Pool) *TagStore {
	return &TagStore{pool: pool}
}

func (s *TagStore) Create(ctx context.Context, tag *Tag) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tags (id, user_id, name, color, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		tag.ID, tag.UserID, tag.Name, tag.Color, tag.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("tag %q: %w", tag.Name, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

func (s *TagStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]Tag, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, color, created_at
		 FROM tags WHERE user_id = $1 ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Tag])
	if err != nil {
		return nil, fmt.Errorf("scan tags: %w", err)
	}
	return tags, nil
}

func (s *TagStore) Rename(ctx context.Context, userID, id uuid.UUID, name string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tags SET name = $1 WHERE id = $2 AND user_id = $3`,
		name, id, userID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("tag %q: %w", name, sentinel.ErrConflict)
		}
		return fmt.Errorf("rename tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *TagStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM tags WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
