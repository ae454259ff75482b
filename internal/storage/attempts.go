package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cronbackhq/cronback/internal/models"
)

const attemptColumns = `id, run_id, trigger_id, project_id, attempt_num, status, response_code, response_latency_s, error_message, created_at`

// LogAttempt appends one delivery attempt. Insert-only; attempts are
// never mutated.
func (c *MySQLClient) LogAttempt(ctx context.Context, attempt *models.Attempt) error {
	var responseCode sql.NullInt64
	if attempt.Details.ResponseCode != nil {
		responseCode = sql.NullInt64{Int64: int64(*attempt.Details.ResponseCode), Valid: true}
	}

	if _, err := c.db.ExecContext(
		ctx,
		`INSERT INTO attempts (`+attemptColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID,
		attempt.RunID,
		attempt.TriggerID,
		attempt.ProjectID,
		attempt.AttemptNum,
		attempt.Status,
		responseCode,
		attempt.Details.ResponseLatencyS,
		nullString(attempt.Details.ErrorMessage),
		attempt.CreatedAt,
	); err != nil {
		if translated := translateDuplicate(err); errors.Is(translated, ErrDuplicateRecord) {
			return translated
		}
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// ListAttemptsForRun pages a run's attempts newest-first.
func (c *MySQLClient) ListAttemptsForRun(
	ctx context.Context,
	projectID string,
	runID string,
	cursor string,
	limit int,
) ([]*models.Attempt, bool, error) {
	args := []interface{}{projectID, runID}
	cursorClause := ""
	if cursor != "" {
		cursorClause = "AND id < ?"
		args = append(args, cursor)
	}
	args = append(args, limit+1)

	query := fmt.Sprintf(
		`SELECT %s FROM attempts WHERE project_id = ? AND run_id = ? %s ORDER BY id DESC LIMIT ?`,
		attemptColumns,
		cursorClause,
	)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]*models.Attempt, 0)
	for rows.Next() {
		var a models.Attempt
		var responseCode sql.NullInt64
		var errorMessage sql.NullString
		if err := rows.Scan(
			&a.ID,
			&a.RunID,
			&a.TriggerID,
			&a.ProjectID,
			&a.AttemptNum,
			&a.Status,
			&responseCode,
			&a.Details.ResponseLatencyS,
			&errorMessage,
			&a.CreatedAt,
		); err != nil {
			return nil, false, fmt.Errorf("scan attempt: %w", err)
		}
		if responseCode.Valid {
			code := int(responseCode.Int64)
			a.Details.ResponseCode = &code
		}
		a.Details.ErrorMessage = errorMessage.String
		a.CreatedAt = a.CreatedAt.UTC()
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate attempts: %w", err)
	}

	hasMore := len(attempts) > limit
	if hasMore {
		attempts = attempts[:limit]
	}
	return attempts, hasMore, nil
}
