package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/san-kum/chaser/internal/sim"
)

const tickSchema = `
	CREATE TABLE IF NOT EXISTS ticks (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		elapsed_ns INTEGER NOT NULL,
		agent_x DOUBLE, agent_y DOUBLE, agent_theta DOUBLE,
		target_x DOUBLE, target_y DOUBLE, target_theta DOUBLE,
		distance DOUBLE, bearing DOUBLE, heading_error DOUBLE,
		mode TEXT NOT NULL,
		linear DOUBLE, angular DOUBLE,
		send_err TEXT NOT NULL DEFAULT '',
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (run_id, seq)
	);
`

// TickLog appends every observed tick of one run to a SQLite database. It
// is a sim.Observer; the first insert failure is kept and reported by Err.
type TickLog struct {
	db     *sql.DB
	insert *sql.Stmt
	runID  string

	mu  sync.Mutex
	err error
}

// tickPragmas run on every pooled connection; modernc applies _pragma
// query parameters each time it opens one.
var tickPragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

func tickLogDSN(path string) string {
	q := make(url.Values)
	for _, p := range tickPragmas {
		q.Add("_pragma", p)
	}
	return path + "?" + q.Encode()
}

func OpenTickLog(path, runID string) (*TickLog, error) {
	db, err := sql.Open("sqlite", tickLogDSN(path))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	if _, err := db.Exec(tickSchema); err != nil {
		db.Close()
		return nil, err
	}

	insert, err := db.Prepare(`INSERT INTO ticks (
		run_id, seq, elapsed_ns,
		agent_x, agent_y, agent_theta,
		target_x, target_y, target_theta,
		distance, bearing, heading_error,
		mode, linear, angular, send_err
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &TickLog{db: db, insert: insert, runID: runID}, nil
}

func (l *TickLog) RunID() string { return l.runID }

func (l *TickLog) OnTick(t sim.Tick) {
	r := Record(t)
	_, err := l.insert.Exec(
		l.runID, int64(t.Seq), t.Elapsed.Nanoseconds(),
		r.Agent.X, r.Agent.Y, r.Agent.Theta,
		r.Target.X, r.Target.Y, r.Target.Theta,
		r.Distance, r.Bearing, r.HeadingError,
		r.Mode, r.Linear, r.Angular, r.SendErr,
	)
	if err != nil {
		l.mu.Lock()
		if l.err == nil {
			l.err = fmt.Errorf("storage: log tick %d: %w", t.Seq, err)
		}
		l.mu.Unlock()
	}
}

func (l *TickLog) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Ticks reads back the ticks of runID in sequence order.
func (l *TickLog) Ticks(runID string) ([]sim.Tick, error) {
	rows, err := l.db.Query(`SELECT
		seq, elapsed_ns,
		agent_x, agent_y, agent_theta,
		target_x, target_y, target_theta,
		distance, bearing, heading_error,
		mode, linear, angular, send_err
	FROM ticks WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ticks := make([]sim.Tick, 0)
	for rows.Next() {
		var (
			seq, elapsed int64
			r            TickRecord
		)
		if err := rows.Scan(
			&seq, &elapsed,
			&r.Agent.X, &r.Agent.Y, &r.Agent.Theta,
			&r.Target.X, &r.Target.Y, &r.Target.Theta,
			&r.Distance, &r.Bearing, &r.HeadingError,
			&r.Mode, &r.Linear, &r.Angular, &r.SendErr,
		); err != nil {
			return nil, err
		}
		r.Seq = uint64(seq)
		t, err := r.Tick()
		if err != nil {
			return nil, err
		}
		t.Elapsed = time.Duration(elapsed)
		ticks = append(ticks, t)
	}
	return ticks, rows.Err()
}

// Runs lists the run ids present in the log.
func (l *TickLog) Runs() ([]string, error) {
	rows, err := l.db.Query(`SELECT DISTINCT run_id FROM ticks ORDER BY run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (l *TickLog) Close() error {
	return errors.Join(l.insert.Close(), l.db.Close())
}

var _ sim.Observer = (*TickLog)(nil)
