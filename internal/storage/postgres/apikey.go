package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/salescore/internal/domain/auth"
)

const (
	getAPIKeyByHashSQL = `SELECT id, key_hash, name FROM api_keys WHERE key_hash = $1`

	insertAPIKeySQL = `INSERT INTO api_keys (key_hash, name) VALUES ($1, $2)
		ON CONFLICT (key_hash) DO NOTHING`
)

var _ auth.Repository = (*APIKeyRepository)(nil)

// APIKeyRepository implements auth.Repository backed by PostgreSQL.
type APIKeyRepository struct {
	pool *pgxpool.Pool
}

// NewAPIKeyRepository returns an APIKeyRepository that uses the given pool.
func NewAPIKeyRepository(pool *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

// FindByHash looks up an API key by its HMAC hash.
// Returns auth.ErrKeyNotFound when no key matches.
func (r *APIKeyRepository) FindByHash(ctx context.Context, hash string) (*auth.Key, error) {
	var key auth.Key
	err := r.pool.QueryRow(ctx, getAPIKeyByHashSQL, hash).Scan(&key.ID, &key.KeyHash, &key.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrKeyNotFound
		}
		return nil, errors.Wrap(err, "find api key")
	}
	return &key, nil
}

// InsertKey stores a hashed API key. Used by the seed tool.
func (r *APIKeyRepository) InsertKey(ctx context.Context, hash, name string) error {
	if _, err := r.pool.Exec(ctx, insertAPIKeySQL, hash, name); err != nil {
		return errors.Wrap(err, "insert api key")
	}
	return nil
}
