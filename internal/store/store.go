package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Driver selects the SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

type Store struct {
	db     *sql.DB
	driver Driver
}

// New opens the database and ensures the schema exists. For sqlite the dsn
// is a file path; for postgres it is a connection URL.
func New(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
		if dsn == "" {
			dsn = "autograder.db"
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	case DriverPostgres:
		drvName = "pgx"
		if dsn == "" {
			dsn = "postgres://localhost:5432/autograder?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := schemaSQLite
	if s.driver == DriverPostgres {
		schema = schemaPostgres
	}
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// q rewrites ? placeholders to $n for postgres.
func (s *Store) q(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	teacher_id INTEGER NOT NULL DEFAULT 0,
	question_file TEXT NOT NULL DEFAULT '',
	solution_file TEXT NOT NULL,
	deadline DATETIME NOT NULL,
	total_marks REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	assignment_id INTEGER NOT NULL,
	student_id INTEGER NOT NULL DEFAULT 0,
	submitted_file TEXT NOT NULL,
	submitted_at DATETIME NOT NULL,
	grade REAL NOT NULL DEFAULT 0,
	feedback TEXT NOT NULL DEFAULT '',
	graded BOOLEAN NOT NULL DEFAULT FALSE,
	graded_at DATETIME,
	FOREIGN KEY (assignment_id) REFERENCES assignments(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS question_feedback (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	submission_id INTEGER NOT NULL,
	question_number TEXT NOT NULL,
	max_marks REAL NOT NULL,
	obtained_marks REAL NOT NULL,
	feedback TEXT NOT NULL DEFAULT '',
	UNIQUE (submission_id, question_number),
	FOREIGN KEY (submission_id) REFERENCES submissions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS metadata (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	teacher_id BIGINT NOT NULL DEFAULT 0,
	question_file TEXT NOT NULL DEFAULT '',
	solution_file TEXT NOT NULL,
	deadline TIMESTAMPTZ NOT NULL,
	total_marks DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
	id BIGSERIAL PRIMARY KEY,
	assignment_id BIGINT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
	student_id BIGINT NOT NULL DEFAULT 0,
	submitted_file TEXT NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL,
	grade DOUBLE PRECISION NOT NULL DEFAULT 0,
	feedback TEXT NOT NULL DEFAULT '',
	graded BOOLEAN NOT NULL DEFAULT FALSE,
	graded_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS question_feedback (
	id BIGSERIAL PRIMARY KEY,
	submission_id BIGINT NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
	question_number TEXT NOT NULL,
	max_marks DOUBLE PRECISION NOT NULL,
	obtained_marks DOUBLE PRECISION NOT NULL,
	feedback TEXT NOT NULL DEFAULT '',
	UNIQUE (submission_id, question_number)
);

CREATE TABLE IF NOT EXISTS metadata (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
