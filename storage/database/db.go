package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/trezcool/rastreio/core"
	appfs "github.com/trezcool/rastreio/fs"
)

const sqliteDriver = "sqlite"

// goose keeps its dialect and FS globally.
var gooseMu sync.Mutex

func init() {
	sqlx.BindDriver(sqliteDriver, sqlx.QUESTION)
}

type (
	// Executor runs queries, on the DB or inside a transaction.
	Executor interface {
		sqlx.ExtContext
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	DB struct {
		db      *sqlx.DB
		engine  string
		builder sq.StatementBuilderType
	}

	txKey struct{}
)

var _ core.Transactor = (*DB)(nil)

func newDB(sqlDB *sql.DB, engine string) *DB {
	driver := engine
	var placeholder sq.PlaceholderFormat = sq.Dollar
	if engine == core.EngineSQLite {
		driver = sqliteDriver
		placeholder = sq.Question
	}
	return &DB{
		db:      sqlx.NewDb(sqlDB, driver),
		engine:  engine,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

func openPostgres(dbName string, admin bool, conf *core.Config) (*sql.DB, error) {
	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   core.EnginePostgres,
		User:     user,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return sql.Open(core.EnginePostgres, u.String())
}

// Open connects to the configured database and waits for it to be ready.
func Open(conf *core.Config) (*DB, error) {
	switch conf.Database.Engine {
	case core.EnginePostgres:
		sqlDB, err := openPostgres(conf.Database.Name, false, conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening database")
		}
		if err = ping(sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return newDB(sqlDB, core.EnginePostgres), nil
	case core.EngineSQLite:
		path := conf.Database.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(conf.WorkDir, path)
		}
		return OpenSQLite(path)
	default:
		return nil, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
	}
}

// OpenSQLite opens (or creates) the SQLite database file at path.
func OpenSQLite(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", filepath.Clean(path))
	sqlDB, err := sql.Open(sqliteDriver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite database")
	}
	// one writer at a time; transactions hold the only connection.
	sqlDB.SetMaxOpenConns(1)
	if err = sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "pinging sqlite database")
	}
	return newDB(sqlDB, core.EngineSQLite), nil
}

func (db *DB) Engine() string { return db.engine }

func (db *DB) Close() error { return db.db.Close() }

// SQL returns the underlying connection pool.
func (db *DB) SQL() *sql.DB { return db.db.DB }

// Builder returns a query builder using the placeholders of the engine.
func (db *DB) Builder() sq.StatementBuilderType { return db.builder }

// Executor returns the transaction running in ctx, if any, or the DB.
func (db *DB) Executor(ctx context.Context) Executor {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db.db
}

// WithinTx runs fn inside a transaction, committed when fn succeeds and rolled back otherwise.
// Calls made within fn's context join the same transaction.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rolling back transaction: %v", rbErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// Get runs q and scans its single row into dest; returns sql.ErrNoRows when nothing matches.
func (db *DB) Get(ctx context.Context, dest interface{}, q sq.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return db.Executor(ctx).GetContext(ctx, dest, query, args...)
}

// Select runs q and scans all its rows into dest.
func (db *DB) Select(ctx context.Context, dest interface{}, q sq.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return db.Executor(ctx).SelectContext(ctx, dest, query, args...)
}

// Exec runs q and returns the number of affected rows.
func (db *DB) Exec(ctx context.Context, q sq.Sqlizer) (int64, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of rows matched by q, a select without columns nor ordering.
func (db *DB) Count(ctx context.Context, q sq.SelectBuilder) (int, error) {
	var count int
	err := db.Get(ctx, &count, q.Column("COUNT(*)"))
	return count, err
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func queryExists(db *sql.DB, query string, args ...interface{}) (bool, error) {
	var exists bool
	err := db.QueryRow(query, args...).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return exists, err
}

func createAppUser(db *sql.DB, conf *core.Config) error {
	if conf.Database.User == "" {
		return nil
	}

	exists, err := queryExists(db, "SELECT true FROM pg_roles WHERE rolname = $1", conf.Database.User)
	if err != nil {
		return errors.Wrap(err, "checking app user")
	}
	if !exists {
		q := fmt.Sprintf("CREATE USER %q CREATEDB ENCRYPTED PASSWORD '%s'", conf.Database.User, conf.Database.Password)
		if _, err = db.Exec(q); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}
	return nil
}

func createDB(db *sql.DB, conf *core.Config) error {
	exists, err := queryExists(db, "SELECT true FROM pg_database WHERE datname = $1", conf.Database.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !exists {
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %q", conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the postgres app user & database. SQLite files are created on open.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Database.Engine != core.EnginePostgres {
		return nil
	}

	// connect as admin
	adminDB, err := openPostgres("postgres", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = adminDB.Close() }()
	if err = ping(adminDB); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppUser(adminDB, conf); err != nil {
		return err
	}

	// create DB as app user
	appDB, err := openPostgres("postgres", false, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = appDB.Close() }()
	return createDB(appDB, conf)
}

func (db *DB) gooseDialect() string {
	if db.engine == core.EngineSQLite {
		return "sqlite3"
	}
	return core.EnginePostgres
}

// RunMigrations runs a goose command (up, down, status, redo, version...) over the embedded migrations.
func RunMigrations(ctx context.Context, db *DB, command string, args ...string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(appfs.FS)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect(db.gooseDialect()); err != nil {
		return errors.Wrap(err, "setting migrations dialect")
	}
	if err := goose.RunContext(ctx, command, db.SQL(), appfs.MigrationsDir, args...); err != nil {
		return errors.Wrapf(err, "running migrations %s", command)
	}
	return nil
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *DB) error {
	return RunMigrations(ctx, db, "up")
}
