package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type key int

const ctxKey key = 0

// WithLogging turns on query logging for everything run with the returned
// context, regardless of the database_debug setting.
func WithLogging(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey, true)
}

type logQueryHook struct {
	log    logger.Logger
	always bool
}

func (*logQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (qh *logQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	enabled, _ := ctx.Value(ctxKey).(bool)
	if !enabled && !qh.always {
		return
	}

	data := logger.Data{"duration_ms": time.Since(event.StartTime).Milliseconds()}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		data["error"] = event.Err.Error()
	}
	qh.log.Debug(event.Query, data)
}

// New opens the connection pool for the configured driver, waits for the
// database to come up, and applies per-driver session settings. The caller
// owns the returned handle and must Close it on shutdown.
func New(cfg *config.Config) (*bun.DB, error) {
	var db *bun.DB
	var err error

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		db, err = openPostgres(cfg)
	default:
		db, err = openSQLite(cfg)
	}
	if err != nil {
		return nil, err
	}

	db.AddQueryHook(&logQueryHook{log: logger.NewWithLevel("debug"), always: cfg.DatabaseDebug})

	// Retry up to a few times to ensure that the database can connect.
	for i := 0; i < cfg.DatabaseConnectRetryCount; i++ {
		_, err = db.Exec("SELECT 1")
		if err != nil {
			time.Sleep(cfg.DatabaseConnectRetryDelay)
			continue
		}
		// We've successfully connected.
		break
	}
	if err != nil {
		_ = db.Close()
		return nil, errors.WithStack(err)
	}

	if cfg.DatabaseDriver != config.DriverPostgres {
		if err := configureSQLite(db, cfg); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return db, nil
}

func openSQLite(cfg *config.Config) (*bun.DB, error) {
	drv := sqliteshim.Driver()
	drvCtx, ok := drv.(interface {
		OpenConnector(name string) (driver.Connector, error)
	})
	var connector driver.Connector
	if ok {
		c, err := drvCtx.OpenConnector(cfg.DatabaseFilePath)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		connector = c
	} else {
		connector = newDriverConnector(drv, cfg.DatabaseFilePath)
	}

	// Wrap the connector with retry logic for SQLITE_BUSY errors.
	sqldb := sql.OpenDB(newRetryConnector(connector, cfg.DatabaseMaxRetries))

	// SQLite has no row locks. A single connection means a transaction holds
	// the whole database until it commits, so concurrent loan mutations are
	// serialized in the pool instead of failing with SQLITE_BUSY. It also keeps
	// ":memory:" databases from splitting across connections.
	sqldb.SetMaxOpenConns(1)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func configureSQLite(db *bun.DB, cfg *config.Config) error {
	// WAL mode allows concurrent reads from other processes during writes.
	if cfg.DatabaseFilePath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return errors.Wrap(err, "failed to enable WAL mode")
		}
	}

	// busy_timeout makes SQLite wait before returning SQLITE_BUSY when another
	// process (e.g. the migrations CLI) holds the write lock.
	if _, err := db.Exec("PRAGMA busy_timeout=" + strconv.FormatInt(cfg.DatabaseBusyTimeout.Milliseconds(), 10)); err != nil {
		return errors.Wrap(err, "failed to set busy_timeout")
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return errors.Wrap(err, "failed to enable foreign keys")
	}

	return nil
}

func openPostgres(cfg *config.Config) (*bun.DB, error) {
	connConfig, err := pgx.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid database_url")
	}

	// lock_timeout bounds how long SELECT ... FOR UPDATE waits for another
	// transaction. Hitting it surfaces as a contention conflict.
	if connConfig.RuntimeParams == nil {
		connConfig.RuntimeParams = map[string]string{}
	}
	connConfig.RuntimeParams["lock_timeout"] = strconv.FormatInt(cfg.DatabaseLockTimeout.Milliseconds(), 10)

	sqldb := stdlib.OpenDB(*connConfig)
	sqldb.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.DatabaseMaxOpenConns)
	sqldb.SetConnMaxIdleTime(5 * time.Minute)

	return bun.NewDB(sqldb, pgdialect.New()), nil
}
