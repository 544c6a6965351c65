// Package database provides SQLite connectivity for the Shelley verifier.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations read from an fs.FS (embedded by the migrations package)
//   - Connection lifecycle and health checks
//
// The store holds declared devices (see device.SQLiteRepository) and
// verification reports (see verify.SQLiteReportStore).
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{
//	    Path:        cfg.Database.Path,
//	    WALMode:     cfg.Database.WALMode,
//	    BusyTimeout: cfg.Database.BusyTimeout,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql, each with a
// matching .down.sql. Migrations are additive: new columns must be NULLABLE
// or have DEFAULT values.
package database
