package kvstore

import (
	"context"
	"database/sql"
)

// SetSchemaVersionForTest rewrites the recorded schema version of an sqlite store.
func SetSchemaVersionForTest(ctx context.Context, path string, version int) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, "UPDATE schema_version SET version = ?", version)
	return err
}
