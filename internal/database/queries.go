package database

import (
	sqldb "github.com/choplin/medialedger/internal/database/sqlc"
)

func queriesFromContext(ctx *Context) *sqldb.Queries {
	if ctx == nil {
		return nil
	}
	if ctx.Queries != nil {
		return ctx.Queries
	}
	if ctx.DB == nil {
		return nil
	}
	return sqldb.New(logQueries(ctx.DB))
}
