package pg

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/centinela/migrations"
)

// Migrate aplica las migraciones embebidas en orden lexicográfico.
// Todas las sentencias son idempotentes (IF NOT EXISTS), así que correrlas
// en cada arranque es seguro.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	entries, err := migrations.PostgresFS.ReadDir(migrations.PostgresDir)
	if err != nil {
		return fmt.Errorf("pg: read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := migrations.PostgresFS.ReadFile(migrations.PostgresDir + "/" + name)
		if err != nil {
			return fmt.Errorf("pg: read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("pg: apply migration %s: %w", name, err)
		}
	}
	return nil
}
