package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sokocrafts/sokoni/internal/claims"
)

// PostgresIdentityStore persists identities in the identity service's
// own database.
type PostgresIdentityStore struct {
	pool *pgxpool.Pool
}

func NewPostgresIdentityStore(pool *pgxpool.Pool) *PostgresIdentityStore {
	return &PostgresIdentityStore{pool: pool}
}

func (s *PostgresIdentityStore) Save(ctx context.Context, identity *Identity) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO identities (id, name, email, password_hash, role, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			avatar = EXCLUDED.avatar,
			updated_at = EXCLUDED.updated_at`,
		identity.ID,
		identity.Name,
		identity.Email,
		identity.PasswordHash,
		string(identity.Role),
		identity.Avatar,
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}
	return nil
}

func (s *PostgresIdentityStore) FindByID(ctx context.Context, id string) (*Identity, error) {
	return s.findOne(ctx, `
		SELECT id, name, email, password_hash, role, avatar, created_at, updated_at
		FROM identities WHERE id = $1`, id)
}

func (s *PostgresIdentityStore) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	return s.findOne(ctx, `
		SELECT id, name, email, password_hash, role, avatar, created_at, updated_at
		FROM identities WHERE email = $1`, email)
}

func (s *PostgresIdentityStore) findOne(ctx context.Context, query string, arg any) (*Identity, error) {
	var identity Identity
	var role string

	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&identity.ID,
		&identity.Name,
		&identity.Email,
		&identity.PasswordHash,
		&role,
		&identity.Avatar,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query identity: %w", err)
	}

	identity.Role = claims.Role(role)
	return &identity, nil
}

func (s *PostgresIdentityStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM identities WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresIdentityStore) Delete(ctx context.Context, id string) error {
	// Deleting an absent row is a success.
	_, err := s.pool.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	return nil
}
