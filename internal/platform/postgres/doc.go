// Package postgres implements the store interfaces on PostgreSQL through the
// pgx database/sql driver. The schema is managed by goose migrations embedded
// in the binary.
package postgres
