package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/choplin/medialedger/internal/logging"
	sqldb "github.com/choplin/medialedger/internal/database/sqlc"
)

// queryLogger traces every statement and its duration.
type queryLogger struct {
	next sqldb.DBTX
}

func logQueries(db sqldb.DBTX) sqldb.DBTX {
	return &queryLogger{next: db}
}

func (l *queryLogger) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := l.next.ExecContext(ctx, query, args...)
	l.log(query, args, start, err)
	return res, err
}

func (l *queryLogger) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	start := time.Now()
	stmt, err := l.next.PrepareContext(ctx, query)
	l.log(query, nil, start, err)
	return stmt, err
}

func (l *queryLogger) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := l.next.QueryContext(ctx, query, args...)
	l.log(query, args, start, err)
	return rows, err
}

func (l *queryLogger) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := l.next.QueryRowContext(ctx, query, args...)
	l.log(query, args, start, row.Err())
	return row
}

func (l *queryLogger) log(query string, args []any, start time.Time, err error) {
	event := logging.Trace()
	if !event.Enabled() {
		return
	}
	event.
		Str("query", strings.Join(strings.Fields(query), " ")).
		Interface("params", args).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("sql")
}
