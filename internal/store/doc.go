// Package store implements the run journal of taskqueue.
//
// The journal is a DuckDB database, either a file or in memory, holding one
// row per finished job run. Pending scheduler work is never written here.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├─────────────────────────────────────────────────────────────────┤
//	│                           RunStore                              │
//	│                              ▼                                  │
//	│                      QueryInterceptor                           │
//	│                              ▼                                  │
//	│                      runs (DuckDB table)                        │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Tables
//
// Tables created by migrations (internal/store/migrations/sql/):
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  runs              │  One row per journaled job run              │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # Initialization Flow
//
//	db, err := store.NewDB(cfg.Store.Path)   // ":memory:" for in-memory
//	err = migrations.Run(ctx, db)            // idempotent
//	s := store.NewStore(db)
//
// # RunStore
//
// Schema:
//
//	runs (
//	    id VARCHAR PRIMARY KEY,
//	    job VARCHAR NOT NULL,
//	    state VARCHAR NOT NULL,          -- running|completed|failed|canceled
//	    error VARCHAR NOT NULL DEFAULT '',
//	    output VARCHAR NOT NULL DEFAULT '', -- JSON result of a completed run
//	    started_at TIMESTAMP NOT NULL,
//	    finished_at TIMESTAMP
//	)
//
// Methods:
//   - Save(ctx, run) → error (uses UPSERT on id)
//   - Get(ctx, id) → *models.Run, ResourceNotFoundError when unknown
//   - List(ctx, opts...) → []models.Run, most recent first
//   - Count(ctx, opts...) → int, ignoring pagination
//   - Prune(ctx, before) → number of deleted runs
//
// List Options:
//
// List and Count use the functional options pattern. Each ListOption
// modifies a squirrel.SelectBuilder:
//
//	runs, err := s.Runs().List(ctx,
//	    store.ByJob("find", "compress"),
//	    store.ByState(models.RunStateFailed),
//	    store.WithLimit(50),
//	    store.WithOffset(0),
//	)
//
// An option called with no values leaves the query unchanged.
//
// # QueryInterceptor
//
// Every statement goes through a QueryInterceptor that logs the query, its
// arguments and its duration at debug level under the "store" logger.
package store
