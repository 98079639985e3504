package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"

	"github.com/padraicbc/regattaapi/config"
	"github.com/padraicbc/regattaapi/models"
)

// Setup opens the configured database and exits the process on failure.
func Setup(cfg *config.Config) *bun.DB {
	db, err := Open(context.Background(), cfg)
	if err != nil {
		zap.L().Fatal("failed to connect to database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	return db
}

// Open connects with the dialect selected by cfg.DBDriver and pings the
// server.
func Open(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	var db *bun.DB
	switch cfg.DBDriver {
	case config.DriverPostgres:
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
		db = bun.NewDB(sqldb, pgdialect.New())
	case config.DriverMySQL:
		sqldb, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db = bun.NewDB(sqldb, mysqldialect.New())
	case config.DriverSQLite:
		sqldb, err := sql.Open("sqlite3", sqliteDSN(cfg.SQLitePath))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// SQLite allows one writer; an in-memory database also lives only as
		// long as its single connection.
		sqldb.SetMaxOpenConns(1)
		sqldb.SetMaxIdleConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.DBDriver, err)
	}
	return db, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:"
	}
	return "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
}

// CreateTables creates all tables in dependency order.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Regatta)(nil),
		(*models.Boat)(nil),
		(*models.Race)(nil),
		(*models.Result)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	indexes := []struct {
		model   interface{}
		name    string
		columns []string
	}{
		{(*models.Boat)(nil), "boats_regatta_idx", []string{"regatta_id"}},
		{(*models.Race)(nil), "races_regatta_idx", []string{"regatta_id"}},
		{(*models.Result)(nil), "results_boat_idx", []string{"boat_id"}},
	}
	for _, ix := range indexes {
		q := db.NewCreateIndex().Model(ix.model).Index(ix.name).Column(ix.columns...)
		if db.Dialect().Name() != dialect.MySQL {
			q = q.IfNotExists()
		}
		if _, err := q.Exec(ctx); err != nil {
			zap.L().Warn("create index", zap.String("index", ix.name), zap.Error(err))
		}
	}

	return nil
}
