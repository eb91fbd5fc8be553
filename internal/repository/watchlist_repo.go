package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"movie-tracker/internal/domain"
)

// WatchlistRepository define el contrato de persistencia para la watchlist.
type WatchlistRepository interface {
	Create(ctx context.Context, item domain.WatchlistItem) error
	GetByID(ctx context.Context, id string) (domain.WatchlistItem, error)
	ListByUser(ctx context.Context, userID string) ([]domain.WatchlistItem, error)
	Delete(ctx context.Context, id string) error
}

// PgWatchlistRepository implementa WatchlistRepository usando pgxpool.
type PgWatchlistRepository struct {
	pool *pgxpool.Pool
}

func NewPgWatchlistRepository(pool *pgxpool.Pool) *PgWatchlistRepository {
	return &PgWatchlistRepository{pool: pool}
}

const watchlistColumns = `id, user_id, media_id, title, poster_path, backdrop_path, overview, vote_average, media_type, added_at`

func (r *PgWatchlistRepository) Create(ctx context.Context, item domain.WatchlistItem) error {
	const query = `
		INSERT INTO watchlist_items (id, user_id, media_id, title, poster_path, backdrop_path, overview, vote_average, media_type, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
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
		item.AddedAt,
	)
	return err
}

func (r *PgWatchlistRepository) GetByID(ctx context.Context, id string) (domain.WatchlistItem, error) {
	const query = `SELECT ` + watchlistColumns + ` FROM watchlist_items WHERE id = $1`
	var item domain.WatchlistItem
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.UserID,
		&item.MediaID,
		&item.Title,
		&item.PosterPath,
		&item.BackdropPath,
		&item.Overview,
		&item.VoteAverage,
		&item.MediaType,
		&item.AddedAt,
	)
	if err != nil {
		return domain.WatchlistItem{}, err
	}
	return item, nil
}

func (r *PgWatchlistRepository) ListByUser(ctx context.Context, userID string) ([]domain.WatchlistItem, error) {
	const query = `SELECT ` + watchlistColumns + ` FROM watchlist_items WHERE user_id = $1 ORDER BY added_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.WatchlistItem, 0)
	for rows.Next() {
		var item domain.WatchlistItem
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.MediaID,
			&item.Title,
			&item.PosterPath,
			&item.BackdropPath,
			&item.Overview,
			&item.VoteAverage,
			&item.MediaType,
			&item.AddedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PgWatchlistRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM watchlist_items WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
