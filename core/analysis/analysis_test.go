// core/analysis/analysis_test.go
package analysis

import (
	"errors"
	"strings"
	"testing"

	"hybgo-core/hyb"
	"hybgo-core/hyberr"
)

// artRecord builds an evaluated record from an artificial two-segment
// line, optionally tagged with a count_total flag.
func artRecord(t *testing.T, seg1Type, seg2Type string, countTotal string) *hyb.Record {
	t.Helper()
	line := "1_1000\tAAAAAAAAAAAAAAAAAAAAGGGGGGGGGGGGGGGGGGGG\t-10.0\t" +
		"ARTSEG1_SOURCE_NAME_" + seg1Type + "\t1\t20\t1\t20\t0.001\t" +
		"ARTSEG2_SOURCE_NAME_" + seg2Type + "\t21\t40\t21\t40\t0.001\tdataset=artificial"
	rec, err := hyb.FromLine(line, hyb.LineOptions{HybformatRef: true})
	if err != nil {
		t.Fatalf("FromLine: %v", err)
	}
	if err := rec.EvalMiRNA(false, nil); err != nil {
		t.Fatalf("EvalMiRNA: %v", err)
	}
	if countTotal != "" {
		if err := rec.SetFlag("count_total", countTotal); err != nil {
			t.Fatalf("SetFlag: %v", err)
		}
	}
	return rec
}

func TestTypeCounts(t *testing.T) {
	tc := NewTypeCounts(DefaultSettings())
	for _, rec := range []*hyb.Record{
		artRecord(t, "microRNA", "mRNA", ""),
		artRecord(t, "mRNA", "microRNA", ""),
		artRecord(t, "mRNA", "mRNA", ""),
	} {
		if err := tc.Add(rec); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	// miRNA-first sorting folds 5p and 3p hybrids into one key.
	if tc.Pairs["microRNA-mRNA"] != 2 {
		t.Fatalf("microRNA-mRNA = %d, want 2", tc.Pairs["microRNA-mRNA"])
	}
	if tc.Pairs["mRNA-mRNA"] != 1 {
		t.Fatalf("mRNA-mRNA = %d, want 1", tc.Pairs["mRNA-mRNA"])
	}
	if tc.Total != 3 {
		t.Fatalf("total = %d", tc.Total)
	}
	if tc.Types["mRNA"] != 4 || tc.Types["microRNA"] != 2 {
		t.Fatalf("per-type counts = %v", tc.Types)
	}
}

func TestTypeCountsAlphabeticalWithoutMiRNASort(t *testing.T) {
	s := DefaultSettings()
	s.MiRNASort = false
	tc := NewTypeCounts(s)
	if err := tc.Add(artRecord(t, "mRNA", "microRNA", "")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if tc.Pairs["mRNA-microRNA"] != 1 {
		t.Fatalf("pairs = %v, want alphabetical key", tc.Pairs)
	}
}

func TestTypeCountsRequiresEvalTypes(t *testing.T) {
	line := "1_1000\tAAAAAAAAAAAAAAAAAAAAGGGGGGGGGGGGGGGGGGGG\t-10.0\t" +
		"ARTSEG1_SOURCE_NAME_microRNA\t1\t20\t1\t20\t0.001\t" +
		"ARTSEG2_SOURCE_NAME_mRNA\t21\t40\t21\t40\t0.001\tdataset=artificial"
	rec, err := hyb.FromLine(line, hyb.LineOptions{})
	if err != nil {
		t.Fatalf("FromLine: %v", err)
	}
	tc := NewTypeCounts(DefaultSettings())
	if err := tc.Add(rec); !errors.Is(err, hyberr.ErrMisc) {
		t.Fatalf("expected misc error, got %v", err)
	}
}

func TestReadWeightedCounting(t *testing.T) {
	s := DefaultSettings()
	tc := NewTypeCounts(s)
	if err := tc.Add(artRecord(t, "microRNA", "mRNA", "7")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if tc.Total != 7 {
		t.Fatalf("record-weighted total = %d, want count_total weight", tc.Total)
	}
}

func TestMiRNACounts(t *testing.T) {
	mc := NewMiRNACounts(DefaultSettings())
	for _, rec := range []*hyb.Record{
		artRecord(t, "microRNA", "mRNA", ""),
		artRecord(t, "microRNA", "mRNA", ""),
		artRecord(t, "mRNA", "microRNA", ""),
		artRecord(t, "microRNA", "microRNA", ""),
		artRecord(t, "mRNA", "mRNA", ""),
	} {
		if err := mc.Add(rec); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if mc.FivePrime != 2 || mc.ThreePrime != 1 || mc.Dimers != 1 || mc.NonMiRNA != 1 {
		t.Fatalf("counts = %+v", mc)
	}
	if mc.Total != 5 {
		t.Fatalf("total = %d", mc.Total)
	}
}

func TestTargetCounts(t *testing.T) {
	s := DefaultSettings()
	tgt := NewTargetCounts(s)
	for _, rec := range []*hyb.Record{
		artRecord(t, "microRNA", "mRNA", ""),
		artRecord(t, "microRNA", "mRNA", "3"),
		artRecord(t, "mRNA", "mRNA", ""),         // no miRNA: ignored
		artRecord(t, "microRNA", "microRNA", ""), // dimer: ignored
	} {
		if err := tgt.Add(rec); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	mirna := "ARTSEG1_SOURCE_NAME_microRNA"
	if tgt.Totals[mirna] != 4 {
		t.Fatalf("totals = %v", tgt.Totals)
	}
	key := "ARTSEG2_SOURCE_NAME_mRNA-mRNA"
	if tgt.Targets[mirna][key] != 4 {
		t.Fatalf("targets = %v", tgt.Targets[mirna])
	}
}

func TestTargetCountsDimers(t *testing.T) {
	s := DefaultSettings()
	s.AllowMiRNADimers = true
	tgt := NewTargetCounts(s)
	if err := tgt.Add(artRecord(t, "microRNA", "microRNA", "")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if tgt.Totals["ARTSEG1_SOURCE_NAME_microRNA"] != 1 {
		t.Fatalf("dimer with allowance not counted: %v", tgt.Totals)
	}
}

func TestCombine(t *testing.T) {
	a := NewTypeCounts(DefaultSettings())
	b := NewTypeCounts(DefaultSettings())
	if err := a.Add(artRecord(t, "microRNA", "mRNA", "")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Add(artRecord(t, "microRNA", "mRNA", "")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	a.Combine(b)
	if a.Pairs["microRNA-mRNA"] != 2 || a.Total != 2 {
		t.Fatalf("combined = %v / %d", a.Pairs, a.Total)
	}
}

func TestWriteDelimited(t *testing.T) {
	tc := NewTypeCounts(DefaultSettings())
	if err := tc.Add(artRecord(t, "microRNA", "mRNA", "")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	var sb strings.Builder
	if err := tc.Write(&sb); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got := sb.String()
	if !strings.HasPrefix(got, "hybrid_type,count\n") {
		t.Fatalf("header missing: %q", got)
	}
	if !strings.Contains(got, "microRNA-mRNA,1\n") || !strings.Contains(got, "total,1\n") {
		t.Fatalf("rows missing: %q", got)
	}

	s := DefaultSettings()
	s.OutDelim = '\t'
	tabbed := NewMiRNACounts(s)
	if err := tabbed.Add(artRecord(t, "microRNA", "mRNA", "")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	sb.Reset()
	if err := tabbed.Write(&sb); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(sb.String(), "5p_mirna_hybrids\t1\n") {
		t.Fatalf("tab-delimited rows missing: %q", sb.String())
	}
}

func TestFoldStats(t *testing.T) {
	rec := artRecord(t, "microRNA", "mRNA", "")
	fold := ">1_1000_ART\n" +
		"AAAAAAAAAAAAAAAAAAAAGGGGGGGGGGGGGGGGGGGG\n" +
		"..(((((((((((((((((())))))))))))))))))..\t(-10.0)"
	fr, err := hyb.FoldFromViennaString(fold, hyb.SeqTypeStatic)
	if err != nil {
		t.Fatalf("FoldFromViennaString: %v", err)
	}
	if err := rec.SetFoldRecord(fr, false, 0); err != nil {
		t.Fatalf("SetFoldRecord: %v", err)
	}

	fs := NewFoldStats(DefaultSettings())
	if err := fs.Add(rec); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Positions 1 and 2 of the miRNA fold are unpaired, 3-20 paired.
	if fs.PairedByPos[1] != 0 || fs.PairedByPos[2] != 0 {
		t.Fatalf("leading unpaired positions counted: %v", fs.PairedByPos)
	}
	if fs.PairedByPos[3] != 1 || fs.PairedByPos[20] != 1 {
		t.Fatalf("paired positions not counted: %v", fs.PairedByPos)
	}
	if fs.EnergyBins["-10"] != 1 {
		t.Fatalf("energy bins = %v", fs.EnergyBins)
	}
	if fs.Total != 1 || fs.Records != 1 {
		t.Fatalf("totals = %d / %d", fs.Total, fs.Records)
	}

	rows := fs.Rows()
	if rows[0][0] != "mirna_position" {
		t.Fatalf("header = %v", rows[0])
	}
}

func TestFoldStatsRequiresFold(t *testing.T) {
	fs := NewFoldStats(DefaultSettings())
	if err := fs.Add(artRecord(t, "microRNA", "mRNA", "")); !errors.Is(err, hyberr.ErrMisc) {
		t.Fatalf("expected misc error without fold record, got %v", err)
	}
}
