// Package sqlite persists workflow runs in a local SQLite file.
//
// Artifacts are stored as a JSON text column; runs are listed by workflow in
// creation order.
//
//	runs, err := sqlite.NewRunStore(sqlite.Options{Path: "./runs.db"})
//	if err != nil {
//		return err
//	}
//	defer runs.Close()
package sqlite
