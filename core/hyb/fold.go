// core/hyb/fold.go
package hyb

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"hybgo-core/hyberr"
)

// SeqType selects how a FoldRecord's sequence is reconciled with a
// hyb record's sequence.
type SeqType int

const (
	// SeqTypeStatic expects the fold sequence to literally equal the
	// hyb record's full sequence.
	SeqTypeStatic SeqType = iota
	// SeqTypeDynamic expects the fold sequence to equal the
	// concatenation of the two segment subsequences, which may be
	// shorter (gapped) or longer (overlapping) than the full read.
	SeqTypeDynamic
)

func (t SeqType) String() string {
	if t == SeqTypeDynamic {
		return "dynamic"
	}
	return "static"
}

// ParseSeqType reads a seq-type name ("static" or "dynamic").
func ParseSeqType(s string) (SeqType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "static", "strict":
		return SeqTypeStatic, nil
	case "dynamic":
		return SeqTypeDynamic, nil
	}
	return SeqTypeStatic, hyberr.Argf("unrecognized seq type %q (allowed: static, dynamic)", s)
}

// FoldRecord is one RNA secondary-structure prediction: an identifier,
// the folded sequence, its dot-bracket string, and an optional folding
// energy. A FoldRecord never owns a hyb Record; it is validated
// against one on demand.
type FoldRecord struct {
	ID      string
	Seq     string
	Fold    string
	Energy  string
	SeqType SeqType
}

// NewFoldRecord validates and builds a FoldRecord. The fold string
// must be non-empty dot-bracket notation; the energy, when set, must
// parse as a number.
func NewFoldRecord(id, seq, foldStr, energy string, seqType SeqType) (*FoldRecord, error) {
	id = strings.TrimSpace(id)
	seq = strings.TrimSpace(seq)
	foldStr = strings.TrimSpace(foldStr)
	if id == "" || id == Placeholder {
		return nil, hyberr.Constructorf("fold record id is required and cannot be empty")
	}
	if seq == "" {
		return nil, hyberr.Constructorf("fold record seq is required and cannot be empty (id: %s)", id)
	}
	for _, r := range seq {
		if !unicode.IsLetter(r) {
			return nil, hyberr.Constructorf("fold record seq must be alphabetic, got %q (id: %s)", seq, id)
		}
	}
	if foldStr == "" {
		return nil, hyberr.Constructorf("fold record fold string is required (id: %s)", id)
	}
	for _, r := range foldStr {
		switch r {
		case '(', ')', '.', '-':
		default:
			return nil, hyberr.Constructorf(
				"fold record fold string contains non-dot-bracket character %q (id: %s)", r, id)
		}
	}
	energy = fromPlaceholder(energy)
	if energy != "" {
		if _, err := strconv.ParseFloat(energy, 64); err != nil {
			return nil, hyberr.Constructorf("fold record energy %q is not numeric (id: %s)", energy, id)
		}
	}
	return &FoldRecord{ID: id, Seq: seq, Fold: foldStr, Energy: energy, SeqType: seqType}, nil
}

// DynamicSeq reconstructs the chimeric sequence from a record's two
// segment subsequences, as folded by prediction tools that join the
// aligned regions rather than the raw read.
func DynamicSeq(hr *Record) (string, error) {
	seg1Seq, err := hr.Seg1.SeqSlice(hr.Seq)
	if err != nil {
		return "", err
	}
	seg2Seq, err := hr.Seg2.SeqSlice(hr.Seq)
	if err != nil {
		return "", err
	}
	return seg1Seq + seg2Seq, nil
}

// CountHybRecordMismatches compares the fold sequence to the hyb
// record's sequence under the record's seq type: position-wise up to
// the longer length, with absent positions counting as mismatches.
func (f *FoldRecord) CountHybRecordMismatches(hr *Record) (int, error) {
	ref := hr.Seq
	if f.SeqType == SeqTypeDynamic {
		var err error
		if ref, err = DynamicSeq(hr); err != nil {
			return 0, err
		}
	}
	return countMismatches(f.Seq, ref), nil
}

func countMismatches(a, b string) int {
	long := len(a)
	if len(b) > long {
		long = len(b)
	}
	count := 0
	for i := 0; i < long; i++ {
		if i >= len(a) || i >= len(b) || a[i] != b[i] {
			count++
		}
	}
	return count
}

// MatchesHybRecord reports whether the sequences reconcile within
// allowedMismatches.
func (f *FoldRecord) MatchesHybRecord(hr *Record, allowedMismatches int) (bool, error) {
	n, err := f.CountHybRecordMismatches(hr)
	if err != nil {
		return false, err
	}
	return n <= allowedMismatches, nil
}

// EnsureMatchesHybRecord fails with a diagnostic, including a
// position-by-position match ribbon, when the sequences do not
// reconcile within allowedMismatches.
func (f *FoldRecord) EnsureMatchesHybRecord(hr *Record, allowedMismatches int) error {
	ref := hr.Seq
	refLabel := "hyb seq"
	if f.SeqType == SeqTypeDynamic {
		var err error
		if ref, err = DynamicSeq(hr); err != nil {
			return err
		}
		refLabel = "dynamic seq"
	}
	n := countMismatches(f.Seq, ref)
	if n <= allowedMismatches {
		return nil
	}
	return hyberr.Miscf(
		"fold record sequence does not match hyb record (id: %s): %d mismatches > %d allowed\n"+
			"  fold seq:  %s\n  match:     %s\n  %s: %s",
		hr.ID, n, allowedMismatches, f.Seq, matchRibbon(f.Seq, ref), refLabel, ref)
}

// matchRibbon renders "|" at matching positions and "X" elsewhere.
func matchRibbon(a, b string) string {
	long := len(a)
	if len(b) > long {
		long = len(b)
	}
	var sb strings.Builder
	for i := 0; i < long; i++ {
		if i < len(a) && i < len(b) && a[i] == b[i] {
			sb.WriteByte('|')
		} else {
			sb.WriteByte('X')
		}
	}
	return sb.String()
}

// SegFold extracts the dot-bracket substring covering one segment of
// the paired hyb record. Static folds slice by the segment's own read
// coordinates; dynamic folds split at the length of segment 1's
// reconstructed span and return the half matching the requested
// segment.
func (f *FoldRecord) SegFold(seg SegmentProperties, hr *Record) (string, error) {
	if !seg.HasReadSpan() {
		return "", hyberr.Constructorf(
			"segment fold extraction requires read coordinates (id: %s)", hr.ID)
	}
	if f.SeqType == SeqTypeStatic {
		start, end := *seg.ReadStart, *seg.ReadEnd
		if start < 1 || end < start || end > len(f.Fold) {
			return "", hyberr.Miscf(
				"segment span %d-%d out of range for fold of length %d (id: %s)",
				start, end, len(f.Fold), hr.ID)
		}
		return f.Fold[start-1 : end], nil
	}

	if !hr.Seg1.HasReadSpan() || !hr.Seg2.HasReadSpan() {
		return "", hyberr.Constructorf(
			"dynamic segment fold extraction requires both segments' read coordinates (id: %s)", hr.ID)
	}
	dynSeq, err := DynamicSeq(hr)
	if err != nil {
		return "", err
	}
	if len(f.Fold) != len(dynSeq) {
		return "", hyberr.Miscf(
			"fold length %d does not match dynamic sequence length %d (id: %s)",
			len(f.Fold), len(dynSeq), hr.ID)
	}
	seg1Len := *hr.Seg1.ReadEnd - *hr.Seg1.ReadStart + 1
	if seg1Len < 0 || seg1Len > len(f.Fold) {
		return "", hyberr.Miscf(
			"segment 1 span length %d out of range for fold of length %d (id: %s)",
			seg1Len, len(f.Fold), hr.ID)
	}
	if *seg.ReadStart == *hr.Seg1.ReadStart && *seg.ReadEnd == *hr.Seg1.ReadEnd {
		return f.Fold[:seg1Len], nil
	}
	return f.Fold[seg1Len:], nil
}

// Seg1Fold returns the fold substring covering the record's 5' segment.
func (f *FoldRecord) Seg1Fold(hr *Record) (string, error) { return f.SegFold(hr.Seg1, hr) }

// Seg2Fold returns the fold substring covering the record's 3' segment.
func (f *FoldRecord) Seg2Fold(hr *Record) (string, error) { return f.SegFold(hr.Seg2, hr) }

// ToViennaLines renders the 3-line Vienna block (without newlines).
func (f *FoldRecord) ToViennaLines() []string {
	third := f.Fold
	if f.Energy != "" {
		third = fmt.Sprintf("%s\t(%s)", f.Fold, f.Energy)
	}
	return []string{">" + f.ID, f.Seq, third}
}

// ToViennaString renders the Vienna block as one newline-joined string.
func (f *FoldRecord) ToViennaString() string {
	return strings.Join(f.ToViennaLines(), "\n")
}
