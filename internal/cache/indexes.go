package cache

import (
	"context"
	"database/sql"

	"github.com/taskdaemon/taskstore/internal/record"
	"github.com/taskdaemon/taskstore/internal/taskerr"
)

// ReplaceIndexes atomically replaces every record_indexes row for
// (collection, id) with the given field→value mapping (I2). Called after
// UpsertRecord within the same transaction.
func ReplaceIndexes(ctx context.Context, tx *sql.Tx, collection, id string, fields map[string]record.Scalar) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM record_indexes WHERE collection = ? AND id = ?
	`, collection, id); err != nil {
		return &taskerr.CacheError{Collection: collection, Op: "clear-indexes", Err: err}
	}

	for field, val := range fields {
		var (
			valueText sql.NullString
			valueInt  sql.NullInt64
			valueBool sql.NullBool
		)
		switch val.Kind() {
		case record.KindText:
			s, _ := val.TextValue()
			valueText = sql.NullString{String: s, Valid: true}
		case record.KindInt:
			n, _ := val.IntValue()
			valueInt = sql.NullInt64{Int64: n, Valid: true}
		case record.KindBool:
			b, _ := val.BoolValue()
			valueBool = sql.NullBool{Bool: b, Valid: true}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO record_indexes (collection, id, field, value_text, value_int, value_bool)
			VALUES (?, ?, ?, ?, ?, ?)
		`, collection, id, field, valueText, valueInt, valueBool); err != nil {
			return &taskerr.CacheError{Collection: collection, Op: "insert-index:" + field, Err: err}
		}
	}

	return nil
}
