// Package pg implementa CredentialRepository para PostgreSQL.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/centinela/internal/store"
)

// credentialRepo implementa store.CredentialRepository.
type credentialRepo struct {
	pool *pgxpool.Pool
}

// NewCredentialRepo crea el repositorio de credenciales.
func NewCredentialRepo(pool *pgxpool.Pool) store.CredentialRepository {
	return &credentialRepo{pool: pool}
}

// GetUserByUsername busca un usuario activo dentro de un tenant.
func (r *credentialRepo) GetUserByUsername(ctx context.Context, tenantID, username string) (*store.User, error) {
	query := `
		SELECT id, tenant_id, username, password_hash,
			COALESCE(role_ids, '{}'), is_super_admin
		FROM users
		WHERE tenant_id = $1 AND username = $2 AND deleted_at IS NULL
	`

	var u store.User
	err := r.pool.QueryRow(ctx, query, tenantID, username).Scan(
		&u.ID, &u.TenantID, &u.Username, &u.PasswordHash,
		&u.RoleIDs, &u.IsSuperAdmin,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

// Connect abre el pool de PostgreSQL y verifica la conexión.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	return pool, nil
}
