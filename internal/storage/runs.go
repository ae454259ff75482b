package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cronbackhq/cronback/internal/models"
)

const runColumns = `id, trigger_id, project_id, action, payload, mode, status, latest_attempt_id, created_at`

// RunWithLatestAttempt pairs a run with its most recent attempt so list
// callers get a delivery summary in one round-trip.
type RunWithLatestAttempt struct {
	Run           models.Run
	LatestAttempt *models.Attempt
}

// StoreRun inserts a fresh run row.
func (c *MySQLClient) StoreRun(ctx context.Context, run *models.Run) error {
	actionCol, err := marshalColumn(&run.Action)
	if err != nil {
		return err
	}
	payloadCol, err := marshalColumn(run.Payload)
	if err != nil {
		return err
	}

	if _, err := c.db.ExecContext(
		ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.TriggerID,
		run.ProjectID,
		actionCol,
		payloadCol,
		run.Mode,
		run.Status,
		nullString(run.LatestAttemptID),
		run.CreatedAt,
	); err != nil {
		if translated := translateDuplicate(err); errors.Is(translated, ErrDuplicateRecord) {
			return translated
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// UpdateRun writes status and latest attempt back, tenant-guarded.
func (c *MySQLClient) UpdateRun(ctx context.Context, run *models.Run) error {
	res, err := c.db.ExecContext(
		ctx,
		`UPDATE runs SET status = ?, latest_attempt_id = ? WHERE id = ? AND project_id = ?`,
		run.Status,
		nullString(run.LatestAttemptID),
		run.ID,
		run.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun fetches one run scoped to its project.
func (c *MySQLClient) GetRun(ctx context.Context, projectID, runID string) (*models.Run, error) {
	row := c.db.QueryRowContext(
		ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? AND project_id = ?`,
		runID,
		projectID,
	)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRunsByTrigger pages a trigger's runs newest-first, each joined
// with its latest attempt.
func (c *MySQLClient) ListRunsByTrigger(
	ctx context.Context,
	projectID string,
	triggerID string,
	cursor string,
	limit int,
) ([]RunWithLatestAttempt, bool, error) {
	args := []interface{}{projectID, triggerID}
	cursorClause := ""
	if cursor != "" {
		cursorClause = "AND r.id < ?"
		args = append(args, cursor)
	}
	args = append(args, limit+1)

	query := fmt.Sprintf(`
		SELECT r.id, r.trigger_id, r.project_id, r.action, r.payload, r.mode, r.status, r.latest_attempt_id, r.created_at,
		       a.id, a.run_id, a.trigger_id, a.project_id, a.attempt_num, a.status,
		       a.response_code, a.response_latency_s, a.error_message, a.created_at
		FROM runs r
		LEFT JOIN attempts a ON a.id = r.latest_attempt_id
		WHERE r.project_id = ? AND r.trigger_id = ? %s
		ORDER BY r.id DESC
		LIMIT ?`, cursorClause)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	results := make([]RunWithLatestAttempt, 0)
	for rows.Next() {
		var run models.Run
		var actionCol, payloadCol, latestAttemptID sql.NullString
		var attemptID, attemptRunID, attemptTriggerID, attemptProjectID sql.NullString
		var attemptNum sql.NullInt64
		var attemptStatus, attemptError sql.NullString
		var responseCode sql.NullInt64
		var responseLatency sql.NullFloat64
		var attemptCreatedAt sql.NullTime

		if err := rows.Scan(
			&run.ID,
			&run.TriggerID,
			&run.ProjectID,
			&actionCol,
			&payloadCol,
			&run.Mode,
			&run.Status,
			&latestAttemptID,
			&run.CreatedAt,
			&attemptID,
			&attemptRunID,
			&attemptTriggerID,
			&attemptProjectID,
			&attemptNum,
			&attemptStatus,
			&responseCode,
			&responseLatency,
			&attemptError,
			&attemptCreatedAt,
		); err != nil {
			return nil, false, fmt.Errorf("scan run row: %w", err)
		}

		if err := hydrateRun(&run, actionCol, payloadCol, latestAttemptID); err != nil {
			return nil, false, err
		}

		entry := RunWithLatestAttempt{Run: run}
		if attemptID.Valid {
			attempt := models.Attempt{
				ID:         attemptID.String,
				RunID:      attemptRunID.String,
				TriggerID:  attemptTriggerID.String,
				ProjectID:  attemptProjectID.String,
				AttemptNum: uint32(attemptNum.Int64),
				Status:     models.AttemptStatus(attemptStatus.String),
				Details: models.WebhookAttemptDetails{
					ResponseLatencyS: responseLatency.Float64,
					ErrorMessage:     attemptError.String,
				},
				CreatedAt: attemptCreatedAt.Time.UTC(),
			}
			if responseCode.Valid {
				code := int(responseCode.Int64)
				attempt.Details.ResponseCode = &code
			}
			entry.LatestAttempt = &attempt
		}
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate runs: %w", err)
	}

	hasMore := len(results) > limit
	if hasMore {
		results = results[:limit]
	}
	return results, hasMore, nil
}

// ListRunsByStatus scans every run in the given status. Startup
// recovery resubmits the attempting ones; no tenant scoping.
func (c *MySQLClient) ListRunsByStatus(ctx context.Context, status models.RunStatus) ([]*models.Run, error) {
	rows, err := c.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM runs WHERE status = ?`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs by status: %w", err)
	}
	defer rows.Close()

	runs := make([]*models.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var actionCol, payloadCol, latestAttemptID sql.NullString

	err := row.Scan(
		&run.ID,
		&run.TriggerID,
		&run.ProjectID,
		&actionCol,
		&payloadCol,
		&run.Mode,
		&run.Status,
		&latestAttemptID,
		&run.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if err := hydrateRun(&run, actionCol, payloadCol, latestAttemptID); err != nil {
		return nil, err
	}
	return &run, nil
}

func hydrateRun(run *models.Run, actionCol, payloadCol, latestAttemptID sql.NullString) error {
	if err := unmarshalColumn(actionCol, &run.Action); err != nil {
		return err
	}
	if payloadCol.Valid {
		run.Payload = &models.Payload{}
		if err := unmarshalColumn(payloadCol, run.Payload); err != nil {
			return err
		}
	}
	run.LatestAttemptID = latestAttemptID.String
	run.CreatedAt = run.CreatedAt.UTC()
	return nil
}
