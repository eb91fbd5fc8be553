package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"movie-tracker/internal/domain"
	"movie-tracker/internal/repository"
)

var (
	ErrItemNotFound  = errors.New("item not found")
	ErrInvalidItem   = errors.New("invalid item")
	ErrInvalidRating = errors.New("rating must be between 1 and 10")
)

// ContentService coordina watchlist y contenido visto.
type ContentService struct {
	watchlist repository.WatchlistRepository
	watched   repository.WatchedRepository

	now func() time.Time
}

func NewContentService(watchlist repository.WatchlistRepository, watched repository.WatchedRepository) *ContentService {
	return &ContentService{
		watchlist: watchlist,
		watched:   watched,
		now:       time.Now,
	}
}

type AddItemInput struct {
	MediaID      int
	Title        string
	PosterPath   string
	BackdropPath string
	Overview     string
	VoteAverage  float64
	MediaType    string
}

func (in AddItemInput) validate() error {
	if in.MediaID == 0 || strings.TrimSpace(in.Title) == "" {
		return ErrInvalidItem
	}
	if in.MediaType != domain.MediaTypeMovie && in.MediaType != domain.MediaTypeTV {
		return ErrInvalidItem
	}
	return nil
}

func (s *ContentService) AddToWatchlist(ctx context.Context, userID string, input AddItemInput) (domain.WatchlistItem, error) {
	if err := input.validate(); err != nil {
		return domain.WatchlistItem{}, err
	}

	item := domain.WatchlistItem{
		ID:           uuid.NewString(),
		UserID:       userID,
		MediaID:      input.MediaID,
		Title:        input.Title,
		PosterPath:   input.PosterPath,
		BackdropPath: input.BackdropPath,
		Overview:     input.Overview,
		VoteAverage:  input.VoteAverage,
		MediaType:    input.MediaType,
		AddedAt:      s.now().UTC(),
	}
	if err := s.watchlist.Create(ctx, item); err != nil {
		return domain.WatchlistItem{}, err
	}
	return item, nil
}

func (s *ContentService) ListWatchlist(ctx context.Context, userID string) ([]domain.WatchlistItem, error) {
	return s.watchlist.ListByUser(ctx, userID)
}

func (s *ContentService) RemoveFromWatchlist(ctx context.Context, userID, id string) error {
	if _, err := s.ownedWatchlistItem(ctx, userID, id); err != nil {
		return err
	}
	if err := s.watchlist.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return err
	}
	return nil
}

type AddWatchedInput struct {
	AddItemInput
	WatchedDate time.Time
	Rating      *int
	Notes       string
}

func (s *ContentService) AddWatched(ctx context.Context, userID string, input AddWatchedInput) (domain.WatchedItem, error) {
	if err := input.validate(); err != nil {
		return domain.WatchedItem{}, err
	}
	if err := validateRating(input.Rating); err != nil {
		return domain.WatchedItem{}, err
	}

	now := s.now().UTC()
	watchedDate := input.WatchedDate
	if watchedDate.IsZero() {
		watchedDate = now
	}

	item := domain.WatchedItem{
		ID:           uuid.NewString(),
		UserID:       userID,
		MediaID:      input.MediaID,
		Title:        input.Title,
		PosterPath:   input.PosterPath,
		BackdropPath: input.BackdropPath,
		Overview:     input.Overview,
		VoteAverage:  input.VoteAverage,
		MediaType:    input.MediaType,
		WatchedDate:  watchedDate,
		Rating:       input.Rating,
		Notes:        input.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.watched.Create(ctx, item); err != nil {
		return domain.WatchedItem{}, err
	}
	return item, nil
}

func (s *ContentService) ListWatched(ctx context.Context, userID string) ([]domain.WatchedItem, error) {
	return s.watched.ListByUser(ctx, userID)
}

func (s *ContentService) UpdateWatched(ctx context.Context, userID, id string, rating *int, notes string) error {
	if err := validateRating(rating); err != nil {
		return err
	}
	item, err := s.watched.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return err
	}
	if item.UserID != userID {
		return ErrItemNotFound
	}
	return s.watched.Update(ctx, id, rating, notes, s.now().UTC())
}

func (s *ContentService) RemoveWatched(ctx context.Context, userID, id string) error {
	item, err := s.watched.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return err
	}
	if item.UserID != userID {
		return ErrItemNotFound
	}
	return s.watched.Delete(ctx, id)
}

// MarkWatched mueve un item de la watchlist a contenido visto con fecha actual.
func (s *ContentService) MarkWatched(ctx context.Context, userID, watchlistID string) (domain.WatchedItem, error) {
	source, err := s.ownedWatchlistItem(ctx, userID, watchlistID)
	if err != nil {
		return domain.WatchedItem{}, err
	}

	now := s.now().UTC()
	item := domain.WatchedItem{
		ID:           uuid.NewString(),
		UserID:       source.UserID,
		MediaID:      source.MediaID,
		Title:        source.Title,
		PosterPath:   source.PosterPath,
		BackdropPath: source.BackdropPath,
		Overview:     source.Overview,
		VoteAverage:  source.VoteAverage,
		MediaType:    source.MediaType,
		WatchedDate:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.watched.Create(ctx, item); err != nil {
		return domain.WatchedItem{}, err
	}
	if err := s.watchlist.Delete(ctx, watchlistID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.WatchedItem{}, err
	}
	return item, nil
}

func (s *ContentService) ownedWatchlistItem(ctx context.Context, userID, id string) (domain.WatchlistItem, error) {
	item, err := s.watchlist.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WatchlistItem{}, ErrItemNotFound
		}
		return domain.WatchlistItem{}, err
	}
	// Operar sobre filas ajenas se reporta igual que una fila inexistente.
	if item.UserID != userID {
		return domain.WatchlistItem{}, ErrItemNotFound
	}
	return item, nil
}

func validateRating(rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < 1 || *rating > 10 {
		return ErrInvalidRating
	}
	return nil
}
