package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/panelarc/panelarc/internal/archive"
	"github.com/panelarc/panelarc/internal/panel"
)

// SaveArchive persists an archive's rows under the given name, creating
// the archive record on first use. The write is a single transaction:
// on any error nothing is persisted.
//
// Rows already present with identical fields are skipped (idempotent
// re-ingestion); a row conflicting with a stored one surfaces the same
// DuplicateKey error the in-memory build would produce. An existing
// archive with different kinds is an InconsistentKind error.
func (s *Store) SaveArchive(ctx context.Context, name string, a *archive.Archive) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	archiveID, err := ensureArchive(ctx, tx, name, a.LocationKind(), a.TimeKind())
	if err != nil {
		return err
	}
	if err := insertRows(ctx, tx, archiveID, a.Rows()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// ReplaceArchive atomically swaps a stored archive's rows for the given
// archive's rows. Used by compaction and merge outputs, where the new row
// set is authoritative.
func (s *Store) ReplaceArchive(ctx context.Context, name string, a *archive.Archive) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	archiveID, err := ensureArchive(ctx, tx, name, a.LocationKind(), a.TimeKind())
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM observations WHERE archive_id = ?`, archiveID); err != nil {
		return fmt.Errorf("clear archive %q: %w", name, err)
	}
	if err := insertRows(ctx, tx, archiveID, a.Rows()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

// ensureArchive returns the archive's row ID, creating the record if
// needed and verifying kind consistency if it already exists.
func ensureArchive(ctx context.Context, tx *sql.Tx, name string, locKind panel.LocationKind, timeKind panel.TimeKind) (int64, error) {
	var (
		id              int64
		gotLoc, gotTime string
	)
	err := tx.QueryRowContext(ctx, `
		SELECT id, location_kind, time_kind FROM archives WHERE name = ?
	`, name).Scan(&id, &gotLoc, &gotTime)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx, `
			INSERT INTO archives (name, location_kind, time_kind) VALUES (?, ?, ?)
		`, name, string(locKind), string(timeKind))
		if err != nil {
			return 0, fmt.Errorf("create archive %q: %w", name, err)
		}
		return res.LastInsertId()
	case err != nil:
		return 0, fmt.Errorf("lookup archive %q: %w", name, err)
	}

	if gotLoc != string(locKind) || gotTime != string(timeKind) {
		return 0, archive.NewInconsistentKindError(
			fmt.Sprintf("archive %q stores (%s, %s) kinds, got (%s, %s)",
				name, gotLoc, gotTime, locKind, timeKind), nil)
	}
	return id, nil
}

// insertRows writes observation rows, enforcing the duplicate-key
// invariant against rows already stored.
func insertRows(ctx context.Context, tx *sql.Tx, archiveID int64, rows []panel.Row) error {
	ins, err := tx.PrepareContext(ctx, `
		INSERT INTO observations (archive_id, location, time_value, version, fields)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(archive_id, location, time_value, version) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()

	for _, row := range rows {
		fieldsJSON, err := marshalFields(row.Fields)
		if err != nil {
			return fmt.Errorf("marshal row fields: %w", err)
		}
		res, err := ins.ExecContext(ctx, archiveID, row.Location, int64(row.Time), int64(row.Version), fieldsJSON)
		if err != nil {
			return fmt.Errorf("insert observation: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			// Key already stored: identical fields are an idempotent
			// re-ingest, different fields violate the key invariant.
			var existing string
			err := tx.QueryRowContext(ctx, `
				SELECT fields FROM observations
				WHERE archive_id = ? AND location = ? AND time_value = ? AND version = ?
			`, archiveID, row.Location, int64(row.Time), int64(row.Version)).Scan(&existing)
			if err != nil {
				return fmt.Errorf("read conflicting observation: %w", err)
			}
			if existing != fieldsJSON {
				return archive.NewDuplicateKeyError(row.Key())
			}
		}
	}
	return nil
}

// IngestRun records one completed feed ingestion for audit and log
// correlation.
type IngestRun struct {
	ID         string
	Archive    string
	Source     string
	RowCount   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecordIngest persists an ingest run with a fresh UUID and returns it.
func (s *Store) RecordIngest(ctx context.Context, run IngestRun) (IngestRun, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (id, archive, source, row_count, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Archive,
		run.Source,
		run.RowCount,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return IngestRun{}, fmt.Errorf("record ingest run: %w", err)
	}
	return run, nil
}
