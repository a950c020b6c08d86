package cache

import (
	"database/sql"
	"fmt"

	"github.com/taskdaemon/taskstore/internal/taskerr"
)

// migration is one incremental, idempotent schema change gated on
// PRAGMA user_version. New migrations are appended to migrationsList;
// existing entries are never edited once released.
type migration struct {
	version int
	name    string
	apply   func(*sql.DB) error
}

// migrationsList is the ordered set of migrations applied on top of the
// base schema.sql. Currently empty — schema.sql already reflects
// generation 1 for a fresh database — but the scaffolding stays in place
// because schema.sql cannot retroactively add a column or index to a
// database file created before that change, only CREATE TABLE IF NOT
// EXISTS statements for brand-new tables.
var migrationsList = []migration{}

// runMigrations applies any migration whose version exceeds the
// database's current PRAGMA user_version, then advances user_version to
// currentSchemaVersion.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return &taskerr.CacheError{Op: "read-user-version", Err: err}
	}

	if version > currentSchemaVersion {
		return &taskerr.SchemaError{Found: version, Expected: currentSchemaVersion}
	}

	for _, m := range migrationsList {
		if m.version <= version {
			continue
		}
		if err := m.apply(db); err != nil {
			return &taskerr.CacheError{Op: "migrate:" + m.name, Err: err}
		}
		version = m.version
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return &taskerr.CacheError{Op: "set-user-version", Err: err}
	}
	return nil
}
