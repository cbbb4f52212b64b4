// Package services implements the jobs of taskqueue on top of pkg/scheduler.
//
// Each service owns one kind of job and bounds its own concurrency, either
// with MapAsync or with a dedicated Scheduler. Jobs started from the HTTP API
// run on the shared scheduler and are journaled.
//
// # Service Dependency Graph
//
//	Handlers (HTTP endpoints)          CLI (cmd/taskqueue)
//	    │                                  │
//	    ▼                                  ▼
//	Services Layer
//	    ├── Jobs ─────────────► Scheduler, Journal, Files
//	    ├── Journal ──────────► Store
//	    ├── Files ────────────► Scheduler (per call), backoff, gobreaker
//	    ├── Compression ──────► errgroup, klauspost/compress
//	    ├── Crimes ───────────► MapAsync, excelize
//	    └── Ticker
//
// # Files
//
// Concat reads every input concurrently with MapAsync and appends them to
// the destination in argument order. Reads are retried with backoff behind a
// circuit breaker shared by the service; missing or unreadable files fail at
// once.
//
// List and Find traverse a directory tree on a dedicated scheduler:
//
//	readDir(root)
//	    ├── subdirectory  → AddWork(readDir(sub))
//	    └── file          → List: collect
//	                        Find: AddWork(search(file))
//
// A task submits its children before it returns, so the scheduler only goes
// idle once the whole tree was visited. The first failure cancels the
// pending tasks and is returned once the running ones are done. Results are
// sorted.
//
// # Compression
//
// Compress reads the input once and tees it into one pipe per codec:
//
//	input ──► MultiWriter ──┬──► gzip    ──► <file>.gzip
//	                        ├──► deflate ──► <file>.deflate
//	                        └──► zstd    ──► <file>.zstd
//
// The reader and the codecs run in one errgroup. A failing codec closes its
// pipe with the error, which stops the tee and the other codecs. Stats list
// the original file first.
//
// # Crimes
//
// Crimes aggregates the London crime CSV
// (lsoa_code,borough,major_category,minor_category,value,year,month) as a
// stream; the header is skipped. Several files are aggregated concurrently
// and merged. The report answers:
//   - the least common major category
//   - the borough with the most crimes
//   - the most common category per borough
//   - whether crimes increased over the last N years (latest > earliest)
//
// Ties go to the alphabetically first name. ExportCrimeReport writes the
// report to an XLSX workbook.
//
// # Ticker
//
// Run emits a tick every 50ms until the maximum duration. A tick whose
// millisecond timestamp is divisible by 5 is faulty and reported to the
// error callback instead; the predicate can be replaced with
// WithFaultyTick.
//
// # Journal
//
// Track registers a future under a job name. The run is kept in memory until
// the future settles, then saved with its state:
//
//	┌─────────────────────────────┬────────────┐
//	│  Outcome                    │  State     │
//	├─────────────────────────────┼────────────┤
//	│  value                      │  completed │
//	│  context.Canceled, closed   │  canceled  │
//	│  any other error            │  failed    │
//	└─────────────────────────────┴────────────┘
//
// A completed run stores its value encoded as JSON.
//
// # Thread Safety
//
// All services are safe for concurrent use. Journal guards its in-memory
// runs with a mutex; the others only hold immutable settings.
package services
