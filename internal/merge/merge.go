package merge

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/panelarc/panelarc/internal/archive"
	"github.com/panelarc/panelarc/internal/panel"
)

// Policy governs how a source value that cannot be resolved at a version
// change-point is represented. A value is unresolvable when the key has
// not yet appeared in that source, or when the change-point lies beyond
// that source's latest recorded version (the source simply has not
// published there yet).
type Policy string

const (
	// PolicyLOCF carries the last known value forward and leaves fields
	// absent before a key's first appearance. Silent.
	PolicyLOCF Policy = "locf"

	// PolicyNA represents unresolvable values as explicit NA markers
	// instead of a possibly stale carried-forward value. Use when an
	// update failure must not masquerade as "no change".
	PolicyNA Policy = "na"

	// PolicyForbid fails with an UnresolvableMerge error if any
	// key/version combination would require filling.
	PolicyForbid Policy = "forbid"
)

// Valid reports whether the policy is one of the supported policies.
func (p Policy) Valid() bool {
	switch p {
	case PolicyLOCF, PolicyNA, PolicyForbid:
		return true
	}
	return false
}

// Options configures a merge call.
type Options struct {
	// Policy selects the gap-filling behavior. Required.
	Policy Policy

	// PrefixLeft and PrefixRight are prepended to the respective source's
	// field names, to disambiguate sources that share column names.
	PrefixLeft  string
	PrefixRight string
}

// PolicyOptions is a convenience constructor for Options carrying only a
// policy, the common case when sources do not share field names.
func PolicyOptions(p Policy) Options {
	return Options{Policy: p}
}

// source is one input archive pre-indexed for merging.
type source struct {
	groups     map[panel.GroupKey][]panel.Row // rows in version order per group
	fieldNames []string                       // prefixed, sorted
	maxVersion panel.Time
	hasMax     bool
	prefix     string
}

// Merge combines two archives into a new one. Neither input is mutated.
//
// The output's key space is the union of (location, time) pairs from both
// inputs and its version axis is the union of both inputs' version
// change-points. At each change-point every source is resolved by LOCF
// within itself and the merged row concatenates both sources' fields
// (after prefixing).
//
// Simultaneous updates - both sources publishing at the same version
// point - are commutative: each side's resolution is computed
// independently, so input order cannot influence the result.
//
// The result is compacted before it is returned, so its version axis
// carries only genuine change-points.
func Merge(left, right *archive.Archive, opts Options) (*archive.Archive, error) {
	if !opts.Policy.Valid() {
		return nil, fmt.Errorf("unknown merge policy %q", string(opts.Policy))
	}
	if left.LocationKind() != right.LocationKind() {
		return nil, newKindMismatchError(fmt.Sprintf("location kinds differ: %q vs %q",
			left.LocationKind(), right.LocationKind()))
	}
	if left.TimeKind() != right.TimeKind() {
		return nil, newKindMismatchError(fmt.Sprintf("time kinds differ: %q vs %q",
			left.TimeKind(), right.TimeKind()))
	}

	ls := indexSource(left, opts.PrefixLeft)
	rs := indexSource(right, opts.PrefixRight)

	if field, ok := firstCollision(ls.fieldNames, rs.fieldNames); ok {
		return nil, newFieldCollisionError(field)
	}

	axis := unionVersions(left.VersionsObserved(), right.VersionsObserved())
	groups := unionGroups(ls.groups, rs.groups)

	slog.Debug("merging archives",
		"policy", string(opts.Policy),
		"groups", len(groups),
		"versions", len(axis),
	)

	var merged []panel.Row
	for _, g := range groups {
		rows, err := mergeGroup(g, axis, ls, rs, opts.Policy)
		if err != nil {
			return nil, err
		}
		merged = append(merged, rows...)
	}

	out, err := archive.Build(merged, left.LocationKind(), left.TimeKind())
	if err != nil {
		// The inputs uphold the build invariants, so this indicates a bug
		// in the merge itself.
		return nil, fmt.Errorf("build merged archive: %w", err)
	}
	return out.Compact(), nil
}

// mergeGroup emits one merged row per version change-point at which the
// group has a defined value in at least one source.
func mergeGroup(g panel.GroupKey, axis []panel.Time, ls, rs *source, policy Policy) ([]panel.Row, error) {
	leftRows := ls.groups[g]
	rightRows := rs.groups[g]

	var (
		out      []panel.Row
		li, ri   int
		curLeft  panel.Fields
		curRight panel.Fields
	)
	for _, v := range axis {
		for li < len(leftRows) && leftRows[li].Version <= v {
			curLeft = leftRows[li].Fields
			li++
		}
		for ri < len(rightRows) && rightRows[ri].Version <= v {
			curRight = rightRows[ri].Fields
			ri++
		}
		if curLeft == nil && curRight == nil {
			// Key has not appeared anywhere yet: no row at this point.
			continue
		}

		fields := make(panel.Fields, len(ls.fieldNames)+len(rs.fieldNames))
		if err := resolveSide(fields, g, v, curLeft, ls, policy); err != nil {
			return nil, err
		}
		if err := resolveSide(fields, g, v, curRight, rs, policy); err != nil {
			return nil, err
		}
		out = append(out, panel.Row{
			Location: g.Location,
			Time:     g.Time,
			Version:  v,
			Fields:   fields,
		})
	}
	return out, nil
}

// resolveSide writes one source's contribution at change-point v into the
// merged field map, applying the gap-filling policy.
func resolveSide(dst panel.Fields, g panel.GroupKey, v panel.Time, cur panel.Fields, src *source, policy Policy) error {
	stale := src.hasMax && v > src.maxVersion
	resolved := cur != nil && !stale

	switch {
	case resolved:
		for name, val := range cur {
			dst[src.prefix+name] = val
		}
	case policy == PolicyLOCF && cur != nil:
		// Beyond the source's last recorded version: carry forward.
		for name, val := range cur {
			dst[src.prefix+name] = val
		}
	case policy == PolicyLOCF:
		// Not yet appeared: fields stay absent.
	case policy == PolicyNA:
		for _, name := range src.fieldNames {
			dst[name] = panel.NA{}
		}
	case policy == PolicyForbid:
		return newUnresolvableError(g, v)
	}
	return nil
}

func indexSource(a *archive.Archive, prefix string) *source {
	s := &source{
		groups: make(map[panel.GroupKey][]panel.Row),
		prefix: prefix,
	}
	names := make(map[string]struct{})
	a.Range(func(row panel.Row) bool {
		g := row.Key().Group()
		s.groups[g] = append(s.groups[g], row)
		for name := range row.Fields {
			names[name] = struct{}{}
		}
		return true
	})
	for name := range names {
		s.fieldNames = append(s.fieldNames, prefix+name)
	}
	sort.Strings(s.fieldNames)
	s.maxVersion, s.hasMax = a.MaxVersion()
	return s
}

// firstCollision returns the lexically first field name present in both
// sorted name sets.
func firstCollision(a, b []string) (string, bool) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			return a[i], true
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return "", false
}

func unionVersions(a, b []panel.Time) []panel.Time {
	out := make([]panel.Time, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i >= len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func unionGroups(a, b map[panel.GroupKey][]panel.Row) []panel.GroupKey {
	seen := make(map[panel.GroupKey]struct{}, len(a)+len(b))
	for g := range a {
		seen[g] = struct{}{}
	}
	for g := range b {
		seen[g] = struct{}{}
	}
	out := make([]panel.GroupKey, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		return panel.CompareGroup(out[i], out[j]) < 0
	})
	return out
}
