package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cronbackhq/cronback/internal/models"
)

const triggerColumns = `id, project_id, name, description, reference, schedule, action, payload, status, last_ran_at, created_at, updated_at`

// InstallTrigger inserts a fresh trigger row. A (project, name) or id
// collision surfaces as ErrDuplicateRecord.
func (c *MySQLClient) InstallTrigger(ctx context.Context, trigger *models.Trigger) error {
	scheduleCol, err := marshalColumn(trigger.Schedule)
	if err != nil {
		return err
	}
	actionCol, err := marshalColumn(&trigger.Action)
	if err != nil {
		return err
	}
	payloadCol, err := marshalColumn(trigger.Payload)
	if err != nil {
		return err
	}

	if _, err := c.db.ExecContext(
		ctx,
		`INSERT INTO triggers (`+triggerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trigger.ID,
		trigger.ProjectID,
		trigger.Name,
		nullString(trigger.Description),
		nullString(trigger.Reference),
		scheduleCol,
		actionCol,
		payloadCol,
		trigger.Status,
		nullTime(trigger.LastRanAt),
		trigger.CreatedAt,
		nullTime(trigger.UpdatedAt),
	); err != nil {
		if translated := translateDuplicate(err); errors.Is(translated, ErrDuplicateRecord) {
			return translated
		}
		return fmt.Errorf("insert trigger: %w", err)
	}
	return nil
}

// UpdateTrigger writes the full mutable row back, tenant-guarded.
func (c *MySQLClient) UpdateTrigger(ctx context.Context, trigger *models.Trigger) error {
	scheduleCol, err := marshalColumn(trigger.Schedule)
	if err != nil {
		return err
	}
	actionCol, err := marshalColumn(&trigger.Action)
	if err != nil {
		return err
	}
	payloadCol, err := marshalColumn(trigger.Payload)
	if err != nil {
		return err
	}

	res, err := c.db.ExecContext(
		ctx,
		`UPDATE triggers
		 SET name = ?, description = ?, reference = ?, schedule = ?, action = ?,
		     payload = ?, status = ?, last_ran_at = ?, updated_at = NOW()
		 WHERE id = ? AND project_id = ?`,
		trigger.Name,
		nullString(trigger.Description),
		nullString(trigger.Reference),
		scheduleCol,
		actionCol,
		payloadCol,
		trigger.Status,
		nullTime(trigger.LastRanAt),
		trigger.ID,
		trigger.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("update trigger: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTriggerNotFound
	}
	return nil
}

// GetTrigger fetches one trigger scoped to its project.
func (c *MySQLClient) GetTrigger(ctx context.Context, projectID, triggerID string) (*models.Trigger, error) {
	row := c.db.QueryRowContext(
		ctx,
		`SELECT `+triggerColumns+` FROM triggers WHERE id = ? AND project_id = ?`,
		triggerID,
		projectID,
	)
	return scanTrigger(row)
}

// GetTriggerByName fetches one trigger by its per-project unique name.
func (c *MySQLClient) GetTriggerByName(ctx context.Context, projectID, name string) (*models.Trigger, error) {
	row := c.db.QueryRowContext(
		ctx,
		`SELECT `+triggerColumns+` FROM triggers WHERE project_id = ? AND name = ?`,
		projectID,
		name,
	)
	return scanTrigger(row)
}

// FindTriggerIDForName resolves a name to its id; feeds the name cache.
func (c *MySQLClient) FindTriggerIDForName(ctx context.Context, projectID, name string) (string, error) {
	var id string
	err := c.db.QueryRowContext(
		ctx,
		`SELECT id FROM triggers WHERE project_id = ? AND name = ?`,
		projectID,
		name,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTriggerNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find trigger id: %w", err)
	}
	return id, nil
}

// GetTriggerStatus reads just the status column by name.
func (c *MySQLClient) GetTriggerStatus(ctx context.Context, projectID, name string) (models.TriggerStatus, error) {
	var status models.TriggerStatus
	err := c.db.QueryRowContext(
		ctx,
		`SELECT status FROM triggers WHERE project_id = ? AND name = ?`,
		projectID,
		name,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTriggerNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get trigger status: %w", err)
	}
	return status, nil
}

// ListAliveTriggers returns every scheduled or paused trigger across all
// projects. Startup only; the result seeds the active map.
func (c *MySQLClient) ListAliveTriggers(ctx context.Context) ([]*models.Trigger, error) {
	rows, err := c.db.QueryContext(
		ctx,
		`SELECT `+triggerColumns+` FROM triggers WHERE status IN (?, ?)`,
		models.TriggerStatusScheduled,
		models.TriggerStatusPaused,
	)
	if err != nil {
		return nil, fmt.Errorf("query alive triggers: %w", err)
	}
	defer rows.Close()

	return scanTriggerRows(rows)
}

// ListTriggersByProject pages a project's triggers newest-first. cursor
// is the last id the caller saw; statuses optionally filter. The second
// return reports whether a further page exists.
func (c *MySQLClient) ListTriggersByProject(
	ctx context.Context,
	projectID string,
	cursor string,
	limit int,
	statuses []models.TriggerStatus,
) ([]*models.Trigger, bool, error) {
	criteria := []string{"project_id = ?"}
	args := []interface{}{projectID}

	if cursor != "" {
		criteria = append(criteria, "id < ?")
		args = append(args, cursor)
	}
	if len(statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
		criteria = append(criteria, fmt.Sprintf("status IN (%s)", placeholders))
		for _, s := range statuses {
			args = append(args, s)
		}
	}

	// One extra row detects whether more pages follow.
	args = append(args, limit+1)

	query := fmt.Sprintf(
		`SELECT %s FROM triggers WHERE %s ORDER BY id DESC LIMIT ?`,
		triggerColumns,
		strings.Join(criteria, " AND "),
	)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("query triggers: %w", err)
	}
	defer rows.Close()

	triggers, err := scanTriggerRows(rows)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(triggers) > limit
	if hasMore {
		triggers = triggers[:limit]
	}
	return triggers, hasMore, nil
}

// DeleteTrigger removes one trigger, tenant-guarded.
func (c *MySQLClient) DeleteTrigger(ctx context.Context, projectID, triggerID string) error {
	res, err := c.db.ExecContext(
		ctx,
		`DELETE FROM triggers WHERE id = ? AND project_id = ?`,
		triggerID,
		projectID,
	)
	if err != nil {
		return fmt.Errorf("delete trigger: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTriggerNotFound
	}
	return nil
}

// DeleteProjectTriggers wipes every trigger a project owns.
func (c *MySQLClient) DeleteProjectTriggers(ctx context.Context, projectID string) error {
	if _, err := c.db.ExecContext(
		ctx,
		`DELETE FROM triggers WHERE project_id = ?`,
		projectID,
	); err != nil {
		return fmt.Errorf("delete project triggers: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrigger(row rowScanner) (*models.Trigger, error) {
	var t models.Trigger
	var description, reference sql.NullString
	var scheduleCol, actionCol, payloadCol sql.NullString
	var lastRanAt, updatedAt sql.NullTime

	err := row.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Name,
		&description,
		&reference,
		&scheduleCol,
		&actionCol,
		&payloadCol,
		&t.Status,
		&lastRanAt,
		&t.CreatedAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTriggerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan trigger: %w", err)
	}

	t.Description = description.String
	t.Reference = reference.String
	if scheduleCol.Valid {
		t.Schedule = &models.Schedule{}
		if err := unmarshalColumn(scheduleCol, t.Schedule); err != nil {
			return nil, err
		}
	}
	if err := unmarshalColumn(actionCol, &t.Action); err != nil {
		return nil, err
	}
	if payloadCol.Valid {
		t.Payload = &models.Payload{}
		if err := unmarshalColumn(payloadCol, t.Payload); err != nil {
			return nil, err
		}
	}
	if lastRanAt.Valid {
		ranAt := lastRanAt.Time.UTC()
		t.LastRanAt = &ranAt
	}
	t.CreatedAt = t.CreatedAt.UTC()
	if updatedAt.Valid {
		updated := updatedAt.Time.UTC()
		t.UpdatedAt = &updated
	}
	return &t, nil
}

func scanTriggerRows(rows *sql.Rows) ([]*models.Trigger, error) {
	triggers := make([]*models.Trigger, 0)
	for rows.Next() {
		trigger, err := scanTrigger(rows)
		if err != nil {
			return nil, err
		}
		triggers = append(triggers, trigger)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate triggers: %w", err)
	}
	return triggers, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
