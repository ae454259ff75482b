package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQLClient wraps direct SQL access for triggers, runs, and attempts.
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient wires a sql.DB; pass a configured instance from main.
func NewMySQLClient(db *sql.DB) *MySQLClient {
	return &MySQLClient{db: db}
}

// Sentinel errors shared by the stores.
var (
	ErrTriggerNotFound = errors.New("trigger not found")
	ErrRunNotFound     = errors.New("run not found")
	ErrDuplicateRecord = errors.New("duplicate record")
)

const mysqlDuplicateEntry = 1062

// translateDuplicate maps the driver's duplicate-key error onto the
// storage sentinel so callers never touch driver types.
func translateDuplicate(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return ErrDuplicateRecord
	}
	return err
}

func marshalColumn(v any) (sql.NullString, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal column: %w", err)
	}
	// Nil pointers marshal to the JSON literal null; store SQL NULL instead.
	if string(raw) == "null" {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func unmarshalColumn(raw sql.NullString, target any) error {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw.String), target); err != nil {
		return fmt.Errorf("unmarshal column: %w", err)
	}
	return nil
}
