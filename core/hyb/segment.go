// core/hyb/segment.go
package hyb

import (
	"strconv"
	"strings"

	"hybgo-core/hyberr"
)

// SegmentProperties describes one aligned segment of a chimeric read:
// the reference it mapped to, 1-based coordinates within the read and
// the reference, and an alignment score (kept verbatim, since upstream
// tools emit either mapping scores or BLAST e-values).
//
// Unset fields are represented by "" (RefName, Score) or nil (coords);
// the hyb text placeholder "." always reads and writes as unset.
type SegmentProperties struct {
	RefName   string
	ReadStart *int
	ReadEnd   *int
	RefStart  *int
	RefEnd    *int
	Score     string
}

// Int is a convenience for building optional coordinate fields.
func Int(v int) *int { return &v }

// HasReadSpan reports whether both read coordinates are set.
func (s SegmentProperties) HasReadSpan() bool {
	return s.ReadStart != nil && s.ReadEnd != nil
}

// HasFullProps reports whether every field of the segment is set.
func (s SegmentProperties) HasFullProps() bool {
	return s.RefName != "" && s.Score != "" && s.HasReadSpan() &&
		s.RefStart != nil && s.RefEnd != nil
}

// HasIndels reports whether the read span and reference span differ in
// length, indicating an insertion or deletion in the alignment.
// Segments without both spans report false.
func (s SegmentProperties) HasIndels() bool {
	if !s.HasReadSpan() || s.RefStart == nil || s.RefEnd == nil {
		return false
	}
	return (*s.ReadEnd - *s.ReadStart) != (*s.RefEnd - *s.RefStart)
}

// SeqSlice extracts the segment's subsequence from the full hybrid
// sequence using its 1-based inclusive read coordinates.
func (s SegmentProperties) SeqSlice(seq string) (string, error) {
	if s.ReadStart == nil || s.ReadEnd == nil {
		return "", hyberr.Constructorf(
			"segment read coordinates required but not set (ref_name: %s)", orPlaceholder(s.RefName))
	}
	start, end := *s.ReadStart, *s.ReadEnd
	if start < 1 || end < start || end > len(seq) {
		return "", hyberr.Constructorf(
			"segment read coordinates %d-%d out of range for sequence of length %d", start, end, len(seq))
	}
	return seq[start-1 : end], nil
}

// parseSegmentFields builds a SegmentProperties from the six hyb-format
// columns: ref_name, read_start, read_end, ref_start, ref_end, score.
func parseSegmentFields(fields []string) (SegmentProperties, error) {
	var seg SegmentProperties
	if v := fromPlaceholder(fields[0]); v != "" {
		seg.RefName = v
	}
	coords := []struct {
		name string
		dst  **int
	}{
		{"read_start", &seg.ReadStart},
		{"read_end", &seg.ReadEnd},
		{"ref_start", &seg.RefStart},
		{"ref_end", &seg.RefEnd},
	}
	for i, c := range coords {
		raw := fromPlaceholder(fields[i+1])
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return seg, hyberr.Constructorf("segment %s: non-integer value %q", c.name, raw)
		}
		*c.dst = Int(n)
	}
	seg.Score = fromPlaceholder(fields[5])
	return seg, nil
}

// toFields renders the segment back to its six hyb-format columns.
func (s SegmentProperties) toFields(placeholder string) []string {
	return []string{
		orDefault(s.RefName, placeholder),
		intField(s.ReadStart, placeholder),
		intField(s.ReadEnd, placeholder),
		intField(s.RefStart, placeholder),
		intField(s.RefEnd, placeholder),
		orDefault(s.Score, placeholder),
	}
}

func intField(v *int, placeholder string) string {
	if v == nil {
		return placeholder
	}
	return strconv.Itoa(*v)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orPlaceholder(v string) string { return orDefault(v, Placeholder) }

// fromPlaceholder maps the hyb placeholder "." to the unset value.
func fromPlaceholder(v string) string {
	v = strings.TrimSpace(v)
	if v == Placeholder {
		return ""
	}
	return v
}
