package store

// Run queries
const (
	queryUpsertRun = `
		INSERT INTO runs (id, job, state, error, output, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			error = EXCLUDED.error,
			output = EXCLUDED.output,
			finished_at = EXCLUDED.finished_at`

	queryDeleteRunsBefore = `DELETE FROM runs WHERE finished_at < ?`
)

// runColumns lists the columns scanned by scanRun, in order.
var runColumns = []string{"id", "job", "state", "error", "output", "started_at", "finished_at"}
