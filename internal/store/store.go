package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// MySQL driver for shared deployments.
	_ "github.com/go-sql-driver/mysql"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Config selects the database driver and data source.
type Config struct {
	Driver string `mapstructure:"driver"` // "sqlite" (default) or "mysql"
	DSN    string `mapstructure:"dsn"`    // file path for sqlite, DSN for mysql
}

// Store owns the database handle. Its embedded Repos run against the
// handle directly; InTx hands out Repos bound to a transaction.
type Store struct {
	*Repos
	db *sql.DB
}

// Open connects to the configured database and runs auto-migration.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	var (
		db  *sql.DB
		dia string
		err error
	)

	switch cfg.Driver {
	case "", "sqlite", "sqlite3":
		dia = dialectSQLite
		db, err = sql.Open("sqlite", sqliteDSN(cfg.DSN))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		// One writer at a time. Transactions must only use the Repos they
		// are handed, never the Store, or they deadlock on the pool.
		db.SetMaxOpenConns(1)
	case "mysql":
		dia = dialectMySQL
		db, err = sql.Open("mysql", mysqlDSN(cfg.DSN))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown database driver: %q", cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(ctx, entsql.OpenDB(dia, db)); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{
		Repos: &Repos{q: db, dialect: dia},
		db:    db,
	}, nil
}

const (
	dialectSQLite = dialect.SQLite
	dialectMySQL  = dialect.MySQL
)

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn inside a transaction. fn's error rolls everything back.
func (s *Store) InTx(ctx context.Context, fn func(tx *Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&Repos{q: tx, dialect: s.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// sqlitePragmas are applied to every pooled connection through the DSN.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

// sqliteDSN turns a file path into a modernc DSN carrying our pragmas.
// DSNs that already set pragmas are left alone.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}

	params := url.Values{}
	for _, p := range sqlitePragmas {
		params.Add("_pragma", p)
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + params.Encode()
}

// mysqlDSN defaults the connection charset to utf8mb4.
func mysqlDSN(dsn string) string {
	if strings.Contains(dsn, "charset=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "charset=utf8mb4"
}

// DefaultDBPath resolves the database file path in priority order:
// 1. GAMEIQ_DB environment variable
// 2. $XDG_DATA_HOME/gameiq/gameiq.db
// 3. ~/.local/share/gameiq/gameiq.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("GAMEIQ_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "gameiq", "gameiq.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
