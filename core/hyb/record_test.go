// core/hyb/record_test.go
package hyb

import (
	"errors"
	"strings"
	"testing"

	"hybgo-core/hyberr"
)

const realHybLine = "695_804\tATCACATTGCCAGGGATTTCCAATCCCCAACAATGTGAAAACGGCTGTC\t.\t" +
	"MIMAT0000078_MirBase_miR-23a_microRNA\t1\t21\t1\t21\t0.0027\t" +
	"ENSG00000188229_ENST00000340384_TUBB2C_mRNA\t23\t49\t1181\t1207\t1.2e-06\tdataset=test"

const artHybLine = "1_1000\tAAAAAAAAAAAAAAAAAAAAGGGGGGGGGGGGGGGGGGGG\t-10.0\t" +
	"ARTSEG1_SOURCE_NAME_microRNA\t1\t20\t1\t20\t0.001\t" +
	"ARTSEG2_SOURCE_NAME_mRNA\t21\t40\t21\t40\t0.001\tdataset=artificial"

func TestToFieldMap(t *testing.T) {
	rec, err := FromLine(artHybLine, LineOptions{})
	if err != nil {
		t.Fatalf("FromLine: %v", err)
	}
	m := rec.ToFieldMap()
	if len(m) != 16 {
		t.Fatalf("got %d keyed fields, want 16", len(m))
	}
	for key, want := range map[string]string{
		"id":              "1_1000",
		"energy":          "-10.0",
		"seg1_ref_name":   "ARTSEG1_SOURCE_NAME_microRNA",
		"seg1_read_start": "1",
		"seg2_ref_end":    "40",
		"seg2_score":      "0.001",
		"flags":           "dataset=artificial",
	} {
		if m[key] != want {
			t.Fatalf("field %q = %q, want %q", key, m[key], want)
		}
	}

	bare := strings.Join(strings.Split(artHybLine, "\t")[:15], "\t")
	rec, err = FromLine(bare, LineOptions{})
	if err != nil {
		t.Fatalf("FromLine: %v", err)
	}
	m = rec.ToFieldMap()
	if len(m) != 15 {
		t.Fatalf("got %d keyed fields without flags, want 15", len(m))
	}
	if _, ok := m["flags"]; ok {
		t.Fatal("flagless record should not map a flags field")
	}
}

func TestFromLineFields(t *testing.T) {
	rec, err := FromLine(realHybLine, LineOptions{})
	if err != nil {
		t.Fatalf("FromLine: %v", err)
	}
	if rec.ID != "695_804" {
		t.Fatalf("id = %q", rec.ID)
	}
	if rec.Energy != "" {
		t.Fatalf("placeholder energy should parse empty, got %q", rec.Energy)
	}
	if rec.Seg1.RefName != "MIMAT0000078_MirBase_miR-23a_microRNA" {
		t.Fatalf("seg1 ref = %q", rec.Seg1.RefName)
	}
	if *rec.Seg1.ReadStart != 1 || *rec.Seg1.ReadEnd != 21 {
		t.Fatalf("seg1 span = %d-%d", *rec.Seg1.ReadStart, *rec.Seg1.ReadEnd)
	}
	if rec.Seg2.Score != "1.2e-06" {
		t.Fatalf("seg2 score = %q", rec.Seg2.Score)
	}
	if rec.Flags.Dataset != "test" {
		t.Fatalf("dataset flag = %q", rec.Flags.Dataset)
	}
}

func TestFromLineRoundTrip(t *testing.T) {
	for _, line := range []string{realHybLine, artHybLine} {
		rec, err := FromLine(line, LineOptions{})
		if err != nil {
			t.Fatalf("FromLine: %v", err)
		}
		if got := rec.ToLine(); got != line {
			t.Fatalf("round trip mismatch:\n got %q\nwant %q", got, line)
		}
	}
}

func TestFromLineFieldCount(t *testing.T) {
	for _, line := range []string{
		"a\tCCC\t.",
		realHybLine + "\textra\tfields",
	} {
		if _, err := FromLine(line, LineOptions{}); !errors.Is(err, hyberr.ErrConstructor) {
			t.Fatalf("line %q: expected constructor error, got %v", line, err)
		}
	}
}

func TestNewRecordValidation(t *testing.T) {
	tests := []struct {
		name    string
		id, seq string
		opts    RecordOptions
		wantErr bool
	}{
		{name: "minimal", id: "r1", seq: "ACGT"},
		{name: "empty id", id: "", seq: "ACGT", wantErr: true},
		{name: "placeholder id", id: ".", seq: "ACGT", wantErr: true},
		{name: "empty seq", id: "r1", seq: "", wantErr: true},
		{name: "non-alphabetic seq", id: "r1", seq: "AC-GT", wantErr: true},
		{name: "numeric energy", id: "r1", seq: "ACGT", opts: RecordOptions{Energy: "-10.0"}},
		{name: "bad energy", id: "r1", seq: "ACGT", opts: RecordOptions{Energy: "cold"}, wantErr: true},
		{name: "placeholder energy", id: "r1", seq: "ACGT", opts: RecordOptions{Energy: "."}},
	}
	for _, tc := range tests {
		_, err := NewRecord(tc.id, tc.seq, tc.opts)
		if tc.wantErr && !errors.Is(err, hyberr.ErrConstructor) {
			t.Fatalf("%s: expected constructor error, got %v", tc.name, err)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
	}
}

func TestNewRecordReadCountConflict(t *testing.T) {
	var flags Flags
	flags.ReadCount = "5"
	n := 7
	_, err := NewRecord("r1", "ACGT", RecordOptions{Flags: flags, ReadCount: &n})
	if !errors.Is(err, hyberr.ErrConstructor) {
		t.Fatalf("expected constructor error on conflicting read counts, got %v", err)
	}
	n = 5
	rec, err := NewRecord("r1", "ACGT", RecordOptions{Flags: flags, ReadCount: &n})
	if err != nil {
		t.Fatalf("agreeing read counts: %v", err)
	}
	if got, ok := rec.ReadCount(); !ok || got != 5 {
		t.Fatalf("ReadCount = %d, %v", got, ok)
	}
}

func TestSetFlagVocabulary(t *testing.T) {
	rec, err := NewRecord("r1", "ACGT", RecordOptions{})
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if err := rec.SetFlag("count_total", "3"); err != nil {
		t.Fatalf("defined flag: %v", err)
	}
	if err := rec.SetFlag("my_flag", "x"); !errors.Is(err, hyberr.ErrConstructor) {
		t.Fatalf("undefined flag: expected constructor error, got %v", err)
	}

	rec, err = NewRecord("r1", "ACGT", RecordOptions{CustomFlags: []string{"my_flag"}})
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if err := rec.SetFlag("my_flag", "x"); err != nil {
		t.Fatalf("declared custom flag: %v", err)
	}
	if v, ok := rec.Flags.Get("my_flag"); !ok || v != "x" {
		t.Fatalf("Get custom flag = %q, %v", v, ok)
	}
}

func TestCountModes(t *testing.T) {
	rec, err := FromLine(artHybLine, LineOptions{})
	if err != nil {
		t.Fatalf("FromLine: %v", err)
	}
	if n, err := rec.Count("record"); err != nil || n != 1 {
		t.Fatalf("record count without flag = %d, %v", n, err)
	}
	if err := rec.SetFlag("count_total", "10"); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}
	if err := rec.SetFlag("read_count", "4"); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}
	if n, _ := rec.Count("record"); n != 10 {
		t.Fatalf("record count = %d", n)
	}
	if n, _ := rec.Count("read"); n != 4 {
		t.Fatalf("read count = %d", n)
	}
	if _, err := rec.Count("banana"); !errors.Is(err, hyberr.ErrArg) {
		t.Fatalf("bad mode: expected arg error, got %v", err)
	}
}

func TestInferHybformatID(t *testing.T) {
	rec, err := FromLine(artHybLine, LineOptions{HybformatID: true})
	if err != nil {
		t.Fatalf("FromLine: %v", err)
	}
	if got, ok := rec.ReadCount(); !ok || got != 1000 {
		t.Fatalf("inferred read count = %d, %v", got, ok)
	}
	bad := strings.Replace(artHybLine, "1_1000\t", "oneread\t", 1)
	if _, err := FromLine(bad, LineOptions{HybformatID: true}); !errors.Is(err, hyberr.ErrConstructor) {
		t.Fatalf("unparsable id: expected constructor error, got %v", err)
	}
}

func TestInferHybformatRef(t *testing.T) {
	rec, err := FromLine(realHybLine, LineOptions{HybformatRef: true})
	if err != nil {
		t.Fatalf("FromLine: %v", err)
	}
	if rec.Flags.Seg1Type != "microRNA" || rec.Flags.Seg2Type != "mRNA" {
		t.Fatalf("inferred types = %q, %q", rec.Flags.Seg1Type, rec.Flags.Seg2Type)
	}
}

func TestSeqIDsInClusterSetsCountTotal(t *testing.T) {
	line := strings.Replace(artHybLine,
		"dataset=artificial", "seq_IDs_in_cluster=a,b,c;dataset=artificial", 1)
	rec, err := FromLine(line, LineOptions{})
	if err != nil {
		t.Fatalf("FromLine: %v", err)
	}
	if rec.Flags.CountTotal != "3" {
		t.Fatalf("count_total = %q", rec.Flags.CountTotal)
	}
}

func TestFlagOrdering(t *testing.T) {
	line := strings.Replace(artHybLine,
		"dataset=artificial", "dataset=artificial;count_total=2", 1)
	rec, err := FromLine(line, LineOptions{})
	if err != nil {
		t.Fatalf("FromLine: %v", err)
	}
	if got := rec.ToLine(); !strings.HasSuffix(got, "count_total=2;dataset=artificial") {
		t.Fatalf("ToLine should reorder flags canonically, got suffix %q", got[len(got)-40:])
	}
	if got := rec.ToLineKeepOrder(); !strings.HasSuffix(got, "dataset=artificial;count_total=2") {
		t.Fatalf("ToLineKeepOrder should preserve order, got suffix %q", got[len(got)-40:])
	}
}

func TestEqual(t *testing.T) {
	a, _ := NewRecord("r1", "ACGT", RecordOptions{})
	b, _ := NewRecord("r1", "ACGT", RecordOptions{Energy: "-2.0"})
	c, _ := NewRecord("r2", "ACGT", RecordOptions{})
	if !a.Equal(b) {
		t.Fatal("records with same id and seq should be equal")
	}
	if a.Equal(c) || a.Equal(nil) {
		t.Fatal("records with different id should not be equal")
	}
}

func TestSegmentHelpers(t *testing.T) {
	seg := SegmentProperties{RefName: "ref", ReadStart: Int(3), ReadEnd: Int(6)}
	if !seg.HasReadSpan() {
		t.Fatal("HasReadSpan")
	}
	if seg.HasFullProps() {
		t.Fatal("HasFullProps without ref span")
	}
	got, err := seg.SeqSlice("AACCGGTT")
	if err != nil || got != "CCGG" {
		t.Fatalf("SeqSlice = %q, %v", got, err)
	}
	if _, err := seg.SeqSlice("ACG"); !errors.Is(err, hyberr.ErrConstructor) {
		t.Fatalf("out of range slice: expected constructor error, got %v", err)
	}

	indel := SegmentProperties{
		ReadStart: Int(1), ReadEnd: Int(10),
		RefStart: Int(1), RefEnd: Int(9),
	}
	if !indel.HasIndels() {
		t.Fatal("unequal read and ref span lengths should report indels")
	}
}
