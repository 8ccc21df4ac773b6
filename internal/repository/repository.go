package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/gymscore/internal/models"
)

// Dialect selects SQL syntax differences between the supported drivers
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// DialectFor picks the dialect from a DSN. postgres:// and postgresql:// URLs
// use lib/pq; anything else is a SQLite path.
func DialectFor(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository provides data access methods
type Repository struct {
	db      *sql.DB
	tx      *sql.Tx // set on the copy handed to WithTx callbacks
	dialect Dialect
}

// New opens the store named by dsn and applies migrations
func New(dsn string) (*Repository, error) {
	dialect := DialectFor(dsn)

	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case DialectPostgres:
		connector, cerr := pq.NewConnector(dsn)
		if cerr != nil {
			return nil, cerr
		}
		db = sql.OpenDB(connector)
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	default:
		db, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, err
		}
		// Enable foreign key constraints
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, err
		}
		// SQLite works best with single connection; :memory: needs it
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	repo := &Repository{db: db, dialect: dialect}

	if err := repo.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s schema: %w", dialect, err)
	}

	return repo, nil
}

// Dialect reports which SQL dialect the repository speaks
func (r *Repository) Dialect() Dialect {
	return r.dialect
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithTx runs fn inside one transaction. fn receives a repository bound to
// the transaction; returning an error or panicking rolls everything back.
// Nested calls join the outer transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(FullRepository) error) (err error) {
	if r.tx != nil {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(&Repository{db: r.db, tx: tx, dialect: r.dialect})
}

func (r *Repository) conn() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// rebind rewrites ? placeholders to $1..$n for postgres
func (r *Repository) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (r *Repository) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := r.conn().ExecContext(ctx, r.rebind(query), args...)
	return res, translate(err)
}

func (r *Repository) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.conn().QueryContext(ctx, r.rebind(query), args...)
}

func (r *Repository) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.conn().QueryRowContext(ctx, r.rebind(query), args...)
}

// insert runs an INSERT ... RETURNING id
func (r *Repository) insert(ctx context.Context, query string, args ...any) (int, error) {
	var id int
	if err := r.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, translate(err)
	}
	return id, nil
}

// placeholders returns "?, ?, ?" for n values
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func intArgs(ids []int) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// column types that differ between dialects
func (r *Repository) schemaReplacer() *strings.Replacer {
	if r.dialect == DialectPostgres {
		return strings.NewReplacer(
			"{{pk}}", "SERIAL PRIMARY KEY",
			"{{real}}", "DOUBLE PRECISION",
			"{{ts}}", "TIMESTAMPTZ",
		)
	}
	return strings.NewReplacer(
		"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{real}}", "REAL",
		"{{ts}}", "TIMESTAMP",
	)
}

// migrate creates the schema. Foreign keys are restrictive; cascades are
// done explicitly inside transactions.
func (r *Repository) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS clubs (
			id {{pk}},
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS seasons (
			id {{pk}},
			year INTEGER NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id {{pk}},
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at {{ts}} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS gymnasts (
			id {{pk}},
			name TEXT NOT NULL,
			level TEXT NOT NULL,
			club_id INTEGER NOT NULL REFERENCES clubs(id),
			age INTEGER,
			goals TEXT,
			achievements TEXT,
			injuries TEXT,
			user_id INTEGER REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS competitions (
			id {{pk}},
			name TEXT NOT NULL,
			address TEXT NOT NULL,
			date TEXT,
			season_id INTEGER REFERENCES seasons(id),
			status TEXT NOT NULL DEFAULT 'draft',
			started_at {{ts}},
			ended_at {{ts}}
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			id {{pk}},
			competition_id INTEGER NOT NULL REFERENCES competitions(id),
			gymnast_id INTEGER NOT NULL REFERENCES gymnasts(id),
			UNIQUE(competition_id, gymnast_id)
		)`,
		`CREATE TABLE IF NOT EXISTS apparatus (
			id {{pk}},
			name TEXT NOT NULL UNIQUE,
			display_order INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			id {{pk}},
			entry_id INTEGER NOT NULL REFERENCES entries(id),
			apparatus_id INTEGER NOT NULL REFERENCES apparatus(id),
			e_score {{real}} NOT NULL DEFAULT 0,
			d_score {{real}} NOT NULL DEFAULT 0,
			penalty {{real}} NOT NULL DEFAULT 0,
			total {{real}} NOT NULL DEFAULT 0,
			UNIQUE(entry_id, apparatus_id)
		)`,
		`CREATE TABLE IF NOT EXISTS judge_scores (
			id {{pk}},
			score_id INTEGER NOT NULL REFERENCES scores(id),
			judge_number INTEGER NOT NULL,
			e_score {{real}} NOT NULL,
			UNIQUE(score_id, judge_number)
		)`,
		`CREATE TABLE IF NOT EXISTS athlete_applications (
			id {{pk}},
			user_id INTEGER NOT NULL REFERENCES users(id),
			club_name TEXT NOT NULL,
			level TEXT NOT NULL,
			years_experience INTEGER NOT NULL DEFAULT 0,
			coach_name TEXT,
			achievements TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at {{ts}} NOT NULL,
			reviewed_at {{ts}}
		)`,
		// At most one live competition
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_competitions_one_live ON competitions(status) WHERE status = 'live'`,
		`CREATE INDEX IF NOT EXISTS idx_gymnasts_club ON gymnasts(club_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_gymnast ON entries(gymnast_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_apparatus ON scores(apparatus_id)`,
		`CREATE INDEX IF NOT EXISTS idx_competitions_date ON competitions(date)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_user ON athlete_applications(user_id)`,
	}

	replacer := r.schemaReplacer()
	for _, migration := range migrations {
		if _, err := r.db.ExecContext(ctx, replacer.Replace(migration)); err != nil {
			return err
		}
	}

	for i, name := range models.DefaultApparatus {
		if _, err := r.exec(ctx,
			`INSERT INTO apparatus (name, display_order) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`,
			name, i+1); err != nil {
			return err
		}
	}

	return nil
}
