package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"movie-tracker/internal/domain"
)

// WatchedRepository define el contrato de persistencia para contenido visto.
type WatchedRepository interface {
	Create(ctx context.Context, item domain.WatchedItem) error
	GetByID(ctx context.Context, id string) (domain.WatchedItem, error)
	ListByUser(ctx context.Context, userID string) ([]domain.WatchedItem, error)
	Update(ctx context.Context, id string, rating *int, notes string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// PgWatchedRepository implementa WatchedRepository usando pgxpool.
type PgWatchedRepository struct {
	pool *pgxpool.Pool
}

func NewPgWatchedRepository(pool *pgxpool.Pool) *PgWatchedRepository {
	return &PgWatchedRepository{pool: pool}
}

const watchedColumns = `id, user_id, media_id, title, poster_path, backdrop_path, overview, vote_average, media_type, watched_date, rating, notes, created_at, updated_at`

func (r *PgWatchedRepository) Create(ctx context.Context, item domain.WatchedItem) error {
	const query = `
		INSERT INTO watched_items (id, user_id, media_id, title, poster_path, backdrop_path, overview, vote_average, media_type, watched_date, rating, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.UserID,
		item.MediaID,
		item.Title,
		item.PosterPath,
		item.BackdropPath,
		item.Overview,
		item.VoteAverage,
		item.MediaType,
		item.WatchedDate,
		item.Rating,
		item.Notes,
		item.CreatedAt,
		item.UpdatedAt,
	)
	return err
}

func (r *PgWatchedRepository) GetByID(ctx context.Context, id string) (domain.WatchedItem, error) {
	const query = `SELECT ` + watchedColumns + ` FROM watched_items WHERE id = $1`
	return r.scanItem(r.pool.QueryRow(ctx, query, id))
}

func (r *PgWatchedRepository) ListByUser(ctx context.Context, userID string) ([]domain.WatchedItem, error) {
	const query = `SELECT ` + watchedColumns + ` FROM watched_items WHERE user_id = $1 ORDER BY watched_date DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.WatchedItem, 0)
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PgWatchedRepository) Update(ctx context.Context, id string, rating *int, notes string, updatedAt time.Time) error {
	const query = `
		UPDATE watched_items
		SET rating = $2, notes = $3, updated_at = $4
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, rating, notes, updatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgWatchedRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM watched_items WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgWatchedRepository) scanItem(row rowScanner) (domain.WatchedItem, error) {
	var item domain.WatchedItem
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.MediaID,
		&item.Title,
		&item.PosterPath,
		&item.BackdropPath,
		&item.Overview,
		&item.VoteAverage,
		&item.MediaType,
		&item.WatchedDate,
		&item.Rating,
		&item.Notes,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return domain.WatchedItem{}, err
	}
	return item, nil
}
