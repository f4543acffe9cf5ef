package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/csd.report/internal/validate"
)

// Run is a stored validation run.
type Run struct {
	RunID      string          `json:"run_id"`
	StartedAt  int64           `json:"started_at"`
	FinishedAt int64           `json:"finished_at"`
	Total      int             `json:"total"`
	Passed     int             `json:"passed"`
	ConfigJSON json.RawMessage `json:"config_json,omitempty"`
}

// Failed reports whether any scenario of the run failed.
func (r Run) Failed() bool { return r.Passed < r.Total }

// ScenarioResult is one stored scenario outcome.
type ScenarioResult struct {
	RunID     string  `json:"run_id"`
	Scenario  string  `json:"scenario"`
	Method    string  `json:"method"`
	Profile   string  `json:"profile"`
	Removed   int     `json:"removed"`
	Decimal   int     `json:"decimal"`
	Passed    bool    `json:"passed"`
	MaxAbsDev float64 `json:"max_abs_dev"`
	MaxRelDev float64 `json:"max_rel_dev"`
	Unit      string  `json:"unit,omitempty"`
	Error     string  `json:"error,omitempty"`
	Warnings  int     `json:"warnings"`
	Duration  int64   `json:"duration_ns"`
}

// Record stores report under a new run ID and returns the ID. cfg is
// stored as JSON alongside the run; nil stores nothing.
func (db *DB) Record(report *validate.Report, cfg any) (string, error) {
	var cfgJSON interface{}
	if cfg != nil {
		b, err := json.Marshal(cfg)
		if err != nil {
			return "", fmt.Errorf("failed to encode run config: %w", err)
		}
		cfgJSON = string(b)
	}

	started, finished := report.Started, report.Finished
	if started.IsZero() {
		started = time.Now()
	}
	if finished.IsZero() {
		finished = started
	}

	runID := uuid.New().String()
	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO validation_runs (run_id, started_at, finished_at, total, passed, config_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, started.UnixNano(), finished.UnixNano(), len(report.Results), report.Passed(), cfgJSON,
	); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, res := range report.Results {
		var unit, errText interface{}
		if res.Compared() {
			unit = res.Want.Unit().Symbol()
		}
		if res.Err != nil {
			errText = res.Err.Error()
		}
		sc := res.Scenario
		if _, err := tx.Exec(`
			INSERT INTO scenario_results (
				run_id, scenario, method, profile, removed, decimals, passed,
				max_abs_dev, max_rel_dev, unit, error, warnings, duration_ns
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, sc.Name, string(sc.Method), sc.Profile.Name, sc.Removed, sc.Decimal, res.Passed(),
			nullFloat(res.MaxAbs), nullFloat(res.MaxRel), unit, errText, len(res.Warnings), res.Duration.Nanoseconds(),
		); err != nil {
			return "", fmt.Errorf("failed to insert scenario %s: %w", sc.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns all.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT run_id, started_at, finished_at, total, passed, config_json
		FROM validation_runs
		ORDER BY started_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r   Run
			cfg sql.NullString
		)
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Total, &r.Passed, &cfg); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if cfg.Valid {
			r.ConfigJSON = json.RawMessage(cfg.String)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Scenarios returns the stored scenario outcomes of a run in name order.
func (db *DB) Scenarios(runID string) ([]ScenarioResult, error) {
	rows, err := db.Query(`
		SELECT run_id, scenario, method, profile, removed, decimals, passed,
		       max_abs_dev, max_rel_dev, unit, error, warnings, duration_ns
		FROM scenario_results
		WHERE run_id = ?
		ORDER BY scenario`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenarios: %w", err)
	}
	defer rows.Close()

	var out []ScenarioResult
	for rows.Next() {
		var (
			s             ScenarioResult
			abs, rel      sql.NullFloat64
			unit, errText sql.NullString
		)
		if err := rows.Scan(&s.RunID, &s.Scenario, &s.Method, &s.Profile, &s.Removed, &s.Decimal, &s.Passed,
			&abs, &rel, &unit, &errText, &s.Warnings, &s.Duration); err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		s.MaxAbsDev, s.MaxRelDev = abs.Float64, rel.Float64
		s.Unit, s.Error = unit.String, errText.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// nullFloat maps NaN to NULL; SQLite has no NaN.
func nullFloat(v float64) interface{} {
	if v != v {
		return nil
	}
	return v
}
