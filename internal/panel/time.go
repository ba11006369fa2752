package panel

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Time is an ordinal on one of the store's two time axes. The same type
// serves observation time and version so that "version <= cutoff" and
// "observation_time in window" comparisons share one ordering.
//
// Interpretation depends on the store's TimeKind:
//   - KindDay: days since 1970-01-01 (UTC)
//   - KindWeek: ISO year*100 + ISO week, e.g. 202013
//   - KindInteger: a raw ordinal with no calendar meaning
type Time int64

// TimeKind fixes how Time ordinals are parsed and rendered for a store.
// Immutable after store construction.
type TimeKind string

const (
	KindDay     TimeKind = "day"
	KindWeek    TimeKind = "week"
	KindInteger TimeKind = "integer"
)

// LocationKind tags the panel unit a store's locations identify
// (e.g. "state", "county", "nation"). Free-form but immutable after
// store construction.
type LocationKind string

// dayLayout is the calendar form of KindDay ordinals.
const dayLayout = "2006-01-02"

// Valid reports whether the kind is one of the supported time kinds.
func (k TimeKind) Valid() bool {
	switch k {
	case KindDay, KindWeek, KindInteger:
		return true
	}
	return false
}

// Parse converts a textual time into an ordinal under this kind.
//
//	day:     "2020-03-15"
//	week:    "202011" (ISO year*100 + week)
//	integer: any base-10 int64
func (k TimeKind) Parse(s string) (Time, error) {
	switch k {
	case KindDay:
		t, err := time.Parse(dayLayout, s)
		if err != nil {
			return 0, fmt.Errorf("parse day %q: %w", s, err)
		}
		return Time(t.Unix() / 86400), nil
	case KindWeek:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse week %q: %w", s, err)
		}
		t := Time(n)
		if !k.ValidOrdinal(t) {
			return 0, fmt.Errorf("week %q out of range (want yyyyww with ww in 1..53)", s)
		}
		return t, nil
	case KindInteger:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse integer time %q: %w", s, err)
		}
		return Time(n), nil
	default:
		return 0, fmt.Errorf("unknown time kind %q", string(k))
	}
}

// Format renders an ordinal under this kind. The inverse of Parse.
func (k TimeKind) Format(t Time) string {
	switch k {
	case KindDay:
		return time.Unix(int64(t)*86400, 0).UTC().Format(dayLayout)
	default:
		return strconv.FormatInt(int64(t), 10)
	}
}

// ValidOrdinal reports whether an ordinal is representable under this kind.
// Used at build time to reject rows whose time representation does not
// match the store's kind.
func (k TimeKind) ValidOrdinal(t Time) bool {
	switch k {
	case KindDay:
		// Plausible calendar range: 1800-01-01 .. 2500-01-01.
		return t >= -62091 && t <= 193574
	case KindWeek:
		week := int64(t) % 100
		year := int64(t) / 100
		return week >= 1 && week <= 53 && year >= 1800 && year <= 2500
	case KindInteger:
		return true
	default:
		return false
	}
}

// NormalizeLocation returns the NFC-normalized form of a location
// identifier. All stored locations are normalized so that equal panel
// units compare equal bytewise.
func NormalizeLocation(loc string) string {
	return norm.NFC.String(loc)
}
