package connectors

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // golang postgres driver
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	_ "modernc.org/sqlite" // pure go sqlite driver for local runs

	"propinvest/pkg/logx"
)

const (
	driverPgx    = "pgx"
	driverSQLite = "sqlite"
)

// Postgres SQL-подключение. Driver "sqlite" используется для локального запуска без сервера БД.
type Postgres struct {
	value           *sqlx.DB
	Driver          string
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	init            sync.Once
}

func (p *Postgres) Client(ctx context.Context) *sqlx.DB {
	p.init.Do(func() {
		driver := p.driver()

		if driver == driverSQLite {
			sqlx.BindDriver(driverSQLite, sqlx.QUESTION)
		}

		p.value = lo.Must(sqlx.ConnectContext(ctx, driver, p.DSN))

		p.value.SetMaxOpenConns(p.MaxOpenConns)
		p.value.SetMaxIdleConns(p.MaxIdleConns)
		p.value.SetConnMaxLifetime(p.ConnMaxLifetime)

		logger(ctx).Info("database connected", slog.String("driver", driver))
	})

	return p.value
}

// Migrate выполняет SQL-файлы по порядку. Файлы должны быть идемпотентными.
func (p *Postgres) Migrate(ctx context.Context, fileNames ...string) error {
	db := p.Client(ctx)

	for _, fileName := range fileNames {
		query, err := os.ReadFile(fileName)
		if err != nil {
			return fmt.Errorf("os.ReadFile: %w", err)
		}

		if _, err = db.ExecContext(ctx, string(query)); err != nil {
			return fmt.Errorf("db.ExecContext(%s): %w", fileName, err)
		}

		logger(ctx).Info("migration applied", slog.String("file", fileName))
	}

	return nil
}

func (p *Postgres) Close(ctx context.Context) {
	if p.value == nil {
		return
	}

	if err := p.value.Close(); err != nil {
		logger(ctx).Error("db.Close", logx.Error(err))
	}

	logger(ctx).Info("database disconnected", slog.String("driver", p.driver()))
}

func (p *Postgres) driver() string {
	if p.Driver == "" {
		return driverPgx
	}

	return p.Driver
}
