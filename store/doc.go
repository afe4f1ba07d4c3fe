// Package store persists workflow runs: the input of a chart or SQL workflow
// and every artifact it produced (generated code, queries, feedback, chart
// paths, result tables).
//
// RunStore has four implementations:
//
//   - store/memory: process-local map, the default
//   - store/sqlite: a single SQLite file via mattn/go-sqlite3
//   - store/redis: go-redis, one key per run plus a sorted-set index per workflow
//   - store/postgres: pgx connection pool
//
// Example:
//
//	import "github.com/smallnest/agentpatterns/store/sqlite"
//
//	runs, err := sqlite.NewRunStore(sqlite.Options{Path: "./runs.db"})
//	if err != nil {
//	    return err
//	}
//	defer runs.Close()
//
//	run := store.NewRun("sql", "Which color of product has the highest total sales?")
//	run.Set("sql_v1", "SELECT color, SUM(qty_delta) FROM transactions GROUP BY color")
//	err = runs.Save(ctx, run)
package store
