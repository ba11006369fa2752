package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/panelarc/panelarc/internal/panel"
)

// ReadCSV decodes one feed into panel rows. The header must contain the
// spec's three role columns exactly once each; every other column becomes
// a value field of the same name.
//
// Value cells decode by shape: an empty cell or the literal "NA" becomes
// an explicit NA, integer-shaped text becomes an Int, float-shaped text a
// Float, and anything else a String.
func ReadCSV(r io.Reader, spec Spec) ([]panel.Row, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty feed: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read feed header: %w", err)
	}
	// Safe to reuse the record slice from here: every cell is copied or
	// parsed before the next Read.
	cr.ReuseRecord = true

	cols, err := resolveColumns(header, spec)
	if err != nil {
		return nil, err
	}

	_, timeKind := spec.Kinds()
	var rows []panel.Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read feed line %d: %w", line, err)
		}

		timeV, err := timeKind.Parse(record[cols.time])
		if err != nil {
			return nil, fmt.Errorf("feed line %d: time: %w", line, err)
		}
		version, err := timeKind.Parse(record[cols.version])
		if err != nil {
			return nil, fmt.Errorf("feed line %d: version: %w", line, err)
		}

		fields := make(panel.Fields, len(cols.values))
		for i, name := range header {
			if !cols.values[i] {
				continue
			}
			fields[name] = parseCell(record[i])
		}

		rows = append(rows, panel.Row{
			Location: panel.NormalizeLocation(record[cols.location]),
			Time:     timeV,
			Version:  version,
			Fields:   fields,
		})
	}
	return rows, nil
}

// columnRoles maps header positions onto the spec's roles.
type columnRoles struct {
	location, time, version int
	values                  []bool
}

func resolveColumns(header []string, spec Spec) (columnRoles, error) {
	roles := columnRoles{location: -1, time: -1, version: -1, values: make([]bool, len(header))}
	for i, name := range header {
		switch name {
		case spec.LocationColumn:
			if roles.location >= 0 {
				return roles, fmt.Errorf("duplicate location column %q", name)
			}
			roles.location = i
		case spec.TimeColumn:
			if roles.time >= 0 {
				return roles, fmt.Errorf("duplicate time column %q", name)
			}
			roles.time = i
		case spec.VersionColumn:
			if roles.version >= 0 {
				return roles, fmt.Errorf("duplicate version column %q", name)
			}
			roles.version = i
		default:
			roles.values[i] = true
		}
	}
	var missing []string
	if roles.location < 0 {
		missing = append(missing, spec.LocationColumn)
	}
	if roles.time < 0 {
		missing = append(missing, spec.TimeColumn)
	}
	if roles.version < 0 {
		missing = append(missing, spec.VersionColumn)
	}
	if len(missing) > 0 {
		return roles, fmt.Errorf("feed header missing required column(s): %s", strings.Join(missing, ", "))
	}
	return roles, nil
}

// parseCell decodes one value cell. Cells are untyped text; the decode
// never fails, falling back to String for anything unrecognized.
func parseCell(s string) panel.Value {
	if s == "" || s == "NA" {
		return panel.NA{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return panel.Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		// Non-finite numerics like "Inf" stay text: they have no
		// canonical JSON form and would be unstorable as floats.
		return panel.Float(f)
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return panel.Bool(b)
	}
	return panel.String(s)
}
