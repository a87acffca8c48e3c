// Package postgres provides PostgreSQL implementations of the store
// interfaces together with the embedded schema migrations.
//
// Stores accept a store.DBTX so the same code runs against a *sql.DB or a
// *sql.Tx obtained through store.RunInTransaction. Driver errors are
// translated into store sentinel errors by MapError so callers never see
// pgconn types.
package postgres
