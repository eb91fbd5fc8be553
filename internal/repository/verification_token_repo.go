package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"movie-tracker/internal/domain"
)

// VerificationTokenRepository define el contrato de persistencia para tokens de verificación.
type VerificationTokenRepository interface {
	Create(ctx context.Context, token domain.VerificationToken) error
	// GetValid devuelve el token sólo si existe y expires_at > now.
	GetValid(ctx context.Context, token string, now time.Time) (domain.VerificationToken, error)
	// Consume borra el token si sigue vigente; pgx.ErrNoRows cuando ya fue
	// consumido o expiró. El borrado condicional es lo que evita el doble consumo.
	Consume(ctx context.Context, token string, now time.Time) error
}

// PgVerificationTokenRepository implementa VerificationTokenRepository usando pgxpool.
type PgVerificationTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgVerificationTokenRepository(pool *pgxpool.Pool) *PgVerificationTokenRepository {
	return &PgVerificationTokenRepository{pool: pool}
}

func (r *PgVerificationTokenRepository) Create(ctx context.Context, token domain.VerificationToken) error {
	const query = `
		INSERT INTO verification_tokens (identifier, token, expires_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.pool.Exec(ctx, query, token.Identifier, token.Token, token.ExpiresAt)
	return err
}

func (r *PgVerificationTokenRepository) GetValid(ctx context.Context, token string, now time.Time) (domain.VerificationToken, error) {
	const query = `
		SELECT identifier, token, expires_at
		FROM verification_tokens
		WHERE token = $1 AND expires_at > $2
	`
	var t domain.VerificationToken
	err := r.pool.QueryRow(ctx, query, token, now).Scan(&t.Identifier, &t.Token, &t.ExpiresAt)
	if err != nil {
		return domain.VerificationToken{}, err
	}
	return t, nil
}

func (r *PgVerificationTokenRepository) Consume(ctx context.Context, token string, now time.Time) error {
	const query = `
		DELETE FROM verification_tokens
		WHERE token = $1 AND expires_at > $2
	`
	tag, err := r.pool.Exec(ctx, query, token, now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
