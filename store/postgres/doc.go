// Package postgres persists workflow runs in PostgreSQL through a pgx pool.
//
// Artifacts are stored as JSONB. The DBPool interface lets tests substitute
// a pgxmock pool for a live database.
package postgres
