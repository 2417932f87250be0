package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresListingStore persists listings in the catalog service's own
// database.
type PostgresListingStore struct {
	pool *pgxpool.Pool
}

func NewPostgresListingStore(pool *pgxpool.Pool) *PostgresListingStore {
	return &PostgresListingStore{pool: pool}
}

const listingColumns = `id, name, description, price, quantity, owner_id, asset_ids, created_at, updated_at`

func (s *PostgresListingStore) Save(ctx context.Context, listing *Listing) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO listings (id, name, description, price, quantity, owner_id, asset_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			quantity = EXCLUDED.quantity,
			asset_ids = EXCLUDED.asset_ids,
			updated_at = EXCLUDED.updated_at`,
		listing.ID,
		listing.Name,
		listing.Description,
		listing.Price,
		listing.Quantity,
		listing.OwnerID,
		listing.AssetIDs,
		listing.CreatedAt,
		listing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

func (s *PostgresListingStore) FindByID(ctx context.Context, id string) (*Listing, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)

	listing, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query listing: %w", err)
	}
	return listing, nil
}

func (s *PostgresListingStore) FindAll(ctx context.Context) ([]Listing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+listingColumns+` FROM listings ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func (s *PostgresListingStore) FindByOwner(ctx context.Context, ownerID string) ([]Listing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings by owner: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func (s *PostgresListingStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	return nil
}

func scanListing(row pgx.Row) (*Listing, error) {
	var listing Listing
	err := row.Scan(
		&listing.ID,
		&listing.Name,
		&listing.Description,
		&listing.Price,
		&listing.Quantity,
		&listing.OwnerID,
		&listing.AssetIDs,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func collectListings(rows pgx.Rows) ([]Listing, error) {
	var listings []Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listings: %w", err)
	}
	return listings, nil
}
