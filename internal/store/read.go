package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/panelarc/panelarc/internal/archive"
	"github.com/panelarc/panelarc/internal/panel"
)

// ErrArchiveNotFound is returned when a named archive does not exist.
var ErrArchiveNotFound = errors.New("archive not found")

// ArchiveInfo describes one stored archive.
type ArchiveInfo struct {
	Name         string
	LocationKind panel.LocationKind
	TimeKind     panel.TimeKind
	RowCount     int
}

// LoadArchive reconstructs a stored archive. Rows are read in canonical
// (location, time, version) order; the build re-checks the store
// invariants on the way in.
func (s *Store) LoadArchive(ctx context.Context, name string) (*archive.Archive, error) {
	var (
		id                int64
		locKind, timeKind string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, location_kind, time_kind FROM archives WHERE name = ?
	`, name).Scan(&id, &locKind, &timeKind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrArchiveNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup archive %q: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT location, time_value, version, fields
		FROM observations
		WHERE archive_id = ?
		ORDER BY location ASC, time_value ASC, version ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var obs []panel.Row
	for rows.Next() {
		var (
			location    string
			timeV, verV int64
			fieldsJSON  string
		)
		if err := rows.Scan(&location, &timeV, &verV, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		fields, err := unmarshalFields(fieldsJSON)
		if err != nil {
			return nil, err
		}
		obs = append(obs, panel.Row{
			Location: location,
			Time:     panel.Time(timeV),
			Version:  panel.Time(verV),
			Fields:   fields,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}

	return archive.Build(obs, panel.LocationKind(locKind), panel.TimeKind(timeKind))
}

// ListArchives returns every stored archive with its row count, ordered
// by name.
func (s *Store) ListArchives(ctx context.Context) ([]ArchiveInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.name, a.location_kind, a.time_kind, COUNT(o.version)
		FROM archives a
		LEFT JOIN observations o ON o.archive_id = a.id
		GROUP BY a.id
		ORDER BY a.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query archives: %w", err)
	}
	defer rows.Close()

	infos := []ArchiveInfo{}
	for rows.Next() {
		var (
			info              ArchiveInfo
			locKind, timeKind string
		)
		if err := rows.Scan(&info.Name, &locKind, &timeKind, &info.RowCount); err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		info.LocationKind = panel.LocationKind(locKind)
		info.TimeKind = panel.TimeKind(timeKind)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archives: %w", err)
	}
	return infos, nil
}

// Versions returns the sorted distinct versions stored for an archive
// without materializing the rows.
func (s *Store) Versions(ctx context.Context, name string) ([]panel.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT o.version
		FROM observations o
		JOIN archives a ON a.id = o.archive_id
		WHERE a.name = ?
		ORDER BY o.version ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	var versions []panel.Time
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, panel.Time(v))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}
