// core/typefinder/finder.go

// Package typefinder assigns "type" labels (microRNA, mRNA, rRNA, ...)
// to aligned segments by parsing their reference identifiers. Each
// strategy implements hyb.TypeFinder and is passed explicitly to
// Record.EvalTypes.
package typefinder

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strings"

	"hybgo-core/hyb"
	"hybgo-core/hyberr"
)

// Hybformat identifies types from reference names shaped
// "<gene_id>_<transcript_id>_<gene_name>_<seg_type>", as used by the
// Hyb software package's reference database: the final "_"-separated
// component is the type.
type Hybformat struct{}

func (Hybformat) Find(seg hyb.SegmentProperties) (string, error) {
	if seg.RefName == "" {
		return "", nil
	}
	parts := strings.Split(seg.RefName, "_")
	return parts[len(parts)-1], nil
}

// MatchPair binds one search pattern to an assigned type.
type MatchPair struct {
	Pattern string
	Type    string
}

// StringMatchParams holds the patterns of a string-match legend,
// grouped by search kind in the order they are checked.
type StringMatchParams struct {
	StartsWith []MatchPair
	Contains   []MatchPair
	EndsWith   []MatchPair
	Matches    []MatchPair
}

// StringMatch identifies types by searching reference names against a
// legend of patterns. With CheckComplete, every pattern is tried and
// conflicting assignments are reported; otherwise the first hit wins.
type StringMatch struct {
	Params        StringMatchParams
	CheckComplete bool
}

func (m StringMatch) Find(seg hyb.SegmentProperties) (string, error) {
	name := seg.RefName
	found := map[string]bool{}
	add := func(t string) bool {
		found[t] = true
		return !m.CheckComplete
	}
	done := false
	for _, p := range m.Params.StartsWith {
		if strings.HasPrefix(name, p.Pattern) {
			if done = add(p.Type); done {
				break
			}
		}
	}
	if !done {
		for _, p := range m.Params.Contains {
			if strings.Contains(name, p.Pattern) {
				if done = add(p.Type); done {
					break
				}
			}
		}
	}
	if !done {
		for _, p := range m.Params.EndsWith {
			if strings.HasSuffix(name, p.Pattern) {
				if done = add(p.Type); done {
					break
				}
			}
		}
	}
	if !done {
		for _, p := range m.Params.Matches {
			if name == p.Pattern {
				if done = add(p.Type); done {
					break
				}
			}
		}
	}
	switch len(found) {
	case 0:
		return "", nil
	case 1:
		for t := range found {
			return t, nil
		}
	}
	types := make([]string, 0, len(found))
	for t := range found {
		types = append(types, t)
	}
	sort.Strings(types)
	return "", hyberr.Miscf(
		"multiple conflicting types found for segment %q: %s", name, strings.Join(types, ", "))
}

// ParseStringMatchParams reads a string-match legend CSV with lines
// "search_type,search_string,seg_type" (search types: startswith,
// contains, endswith, matches). Blank lines and "#" comments are
// skipped.
func ParseStringMatchParams(r io.Reader) (StringMatchParams, error) {
	var params StringMatchParams
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return params, hyberr.Constructorf(
				"legend line %d: expected three comma-separated entries, got %q", ln, line)
		}
		pair := MatchPair{Pattern: fields[1], Type: fields[2]}
		switch fields[0] {
		case "startswith":
			params.StartsWith = append(params.StartsWith, pair)
		case "contains":
			params.Contains = append(params.Contains, pair)
		case "endswith":
			params.EndsWith = append(params.EndsWith, pair)
		case "matches":
			params.Matches = append(params.Matches, pair)
		default:
			return params, hyberr.Constructorf(
				"legend line %d: unrecognized search type %q (allowed: startswith, contains, endswith, matches)",
				ln, fields[0])
		}
	}
	return params, sc.Err()
}

// LoadStringMatchParams reads a legend CSV from a file path.
func LoadStringMatchParams(path string) (StringMatchParams, error) {
	fh, err := os.Open(path)
	if err != nil {
		return StringMatchParams{}, err
	}
	defer func() { _ = fh.Close() }()
	return ParseStringMatchParams(fh)
}

// IDMap identifies types by direct lookup of the full reference name.
type IDMap map[string]string

func (m IDMap) Find(seg hyb.SegmentProperties) (string, error) {
	return m[seg.RefName], nil
}

// ParseIDMap reads an identifier-to-type CSV with lines
// "seg_id,seg_type" into m, rejecting conflicting reassignments.
func ParseIDMap(r io.Reader, m IDMap) error {
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			return hyberr.Constructorf(
				"id map line %d: expected two comma-separated entries, got %q", ln, line)
		}
		id, segType := fields[0], fields[1]
		if have, ok := m[id]; ok && have != segType {
			return hyberr.Constructorf(
				"conflicting types assigned for sequence id %q: %s | %s", id, have, segType)
		}
		m[id] = segType
	}
	return sc.Err()
}

// LoadIDMap reads one or more identifier-to-type CSV files.
func LoadIDMap(paths ...string) (IDMap, error) {
	if len(paths) == 0 {
		return nil, hyberr.Argf("id map loading requires at least one file")
	}
	m := IDMap{}
	for _, path := range paths {
		fh, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		err = ParseIDMap(fh, m)
		_ = fh.Close()
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}
