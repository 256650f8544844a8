package dbtest

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"propinvest/pkg/application/connectors"
)

// NewSQLite поднимает базу в памяти и применяет миграции.
// Каждое соединение :memory: видит свою базу, поэтому пул ограничен одним соединением.
func NewSQLite(t *testing.T, migrations ...string) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	conn := &connectors.Postgres{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}

	require.NoError(t, conn.Migrate(ctx, migrations...))

	t.Cleanup(func() { conn.Close(ctx) })

	return conn.Client(ctx)
}
