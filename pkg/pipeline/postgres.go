package pipeline

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hexmerlin/kgseed/pkg/logger"
)

// PostgresResetter truncates the relational tables the storage engine owns.
// It opens a short-lived connection per call; the reset runs once per
// process, so pooling buys nothing here.
type PostgresResetter struct {
	url string
}

func NewPostgresResetter(url string) *PostgresResetter {
	return &PostgresResetter{url: url}
}

// TruncateAll discovers every table in the public schema whose name matches
// the engine's kg_ prefix and truncates it with CASCADE. It returns the
// number of tables truncated. Tables that fail to truncate are skipped so a
// single locked table does not block the rest of the reset.
func (r *PostgresResetter) TruncateAll(ctx context.Context) (int, error) {
	conn, err := pgx.Connect(ctx, r.url)
	if err != nil {
		return 0, fmt.Errorf("connect to postgres: %w", err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name LIKE 'kg\_%'
		ORDER BY table_name`)
	if err != nil {
		return 0, fmt.Errorf("list tables: %w", err)
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return 0, fmt.Errorf("read table names: %w", err)
	}

	truncated := 0
	for _, table := range tables {
		if _, err := conn.Exec(ctx, fmt.Sprintf(`TRUNCATE TABLE %s CASCADE`, pgx.Identifier{table}.Sanitize())); err != nil {
			logger.Warn(fmt.Sprintf("[Reset] Could not truncate table %s: %v", table, err))
			continue
		}
		truncated++
	}
	if truncated < len(tables) {
		return truncated, fmt.Errorf("%w: truncated %d of %d tables", ErrStoreCleanup, truncated, len(tables))
	}
	return truncated, nil
}
