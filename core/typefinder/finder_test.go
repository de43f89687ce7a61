// core/typefinder/finder_test.go
package typefinder

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hybgo-core/hyb"
	"hybgo-core/hyberr"
)

func seg(refName string) hyb.SegmentProperties {
	return hyb.SegmentProperties{RefName: refName}
}

func TestHybformatFind(t *testing.T) {
	tests := []struct {
		refName string
		want    string
	}{
		{"MIMAT0000078_MirBase_miR-23a_microRNA", "microRNA"},
		{"ENSG00000188229_ENST00000340384_TUBB2C_mRNA", "mRNA"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tc := range tests {
		got, err := Hybformat{}.Find(seg(tc.refName))
		if err != nil || got != tc.want {
			t.Fatalf("Find(%q) = %q, %v, want %q", tc.refName, got, err, tc.want)
		}
	}
}

func TestStringMatchFind(t *testing.T) {
	params := StringMatchParams{
		StartsWith: []MatchPair{{Pattern: "MIMAT", Type: "microRNA"}},
		Contains:   []MatchPair{{Pattern: "_trans_", Type: "mRNA"}},
		EndsWith:   []MatchPair{{Pattern: "_rRNA", Type: "rRNA"}},
		Matches:    []MatchPair{{Pattern: "exact_id", Type: "lncRNA"}},
	}
	m := StringMatch{Params: params}
	tests := []struct {
		refName string
		want    string
	}{
		{"MIMAT0000078_MirBase", "microRNA"},
		{"ENSG_trans_TUBB2C", "mRNA"},
		{"NR003286_RN18S1_rRNA", "rRNA"},
		{"exact_id", "lncRNA"},
		{"nothing_known", ""},
	}
	for _, tc := range tests {
		got, err := m.Find(seg(tc.refName))
		if err != nil || got != tc.want {
			t.Fatalf("Find(%q) = %q, %v, want %q", tc.refName, got, err, tc.want)
		}
	}
}

func TestStringMatchFirstHitWins(t *testing.T) {
	m := StringMatch{Params: StringMatchParams{
		StartsWith: []MatchPair{{Pattern: "MIMAT", Type: "microRNA"}},
		EndsWith:   []MatchPair{{Pattern: "_mRNA", Type: "mRNA"}},
	}}
	got, err := m.Find(seg("MIMAT0000078_mRNA"))
	if err != nil || got != "microRNA" {
		t.Fatalf("Find = %q, %v, want first hit", got, err)
	}
}

func TestStringMatchCheckComplete(t *testing.T) {
	m := StringMatch{
		Params: StringMatchParams{
			StartsWith: []MatchPair{{Pattern: "MIMAT", Type: "microRNA"}},
			EndsWith:   []MatchPair{{Pattern: "_mRNA", Type: "mRNA"}},
		},
		CheckComplete: true,
	}
	_, err := m.Find(seg("MIMAT0000078_mRNA"))
	if !errors.Is(err, hyberr.ErrMisc) {
		t.Fatalf("conflicting assignments: expected misc error, got %v", err)
	}
	if !strings.Contains(err.Error(), "mRNA, microRNA") {
		t.Fatalf("conflict list should be sorted, got %v", err)
	}

	// Duplicate assignments of the same type are not a conflict.
	agree := StringMatch{
		Params: StringMatchParams{
			StartsWith: []MatchPair{{Pattern: "MIMAT", Type: "microRNA"}},
			Contains:   []MatchPair{{Pattern: "MIMAT", Type: "microRNA"}},
		},
		CheckComplete: true,
	}
	got, err := agree.Find(seg("MIMAT0000078"))
	if err != nil || got != "microRNA" {
		t.Fatalf("agreeing assignments = %q, %v", got, err)
	}
}

func TestParseStringMatchParams(t *testing.T) {
	legend := `# comment line
startswith,MIMAT,microRNA

contains,_trans_,mRNA
endswith,_rRNA,rRNA
matches,exact_id,lncRNA
`
	params, err := ParseStringMatchParams(strings.NewReader(legend))
	if err != nil {
		t.Fatalf("ParseStringMatchParams: %v", err)
	}
	if len(params.StartsWith) != 1 || params.StartsWith[0].Type != "microRNA" {
		t.Fatalf("startswith = %+v", params.StartsWith)
	}
	if len(params.Contains) != 1 || len(params.EndsWith) != 1 || len(params.Matches) != 1 {
		t.Fatalf("params = %+v", params)
	}

	if _, err := ParseStringMatchParams(strings.NewReader("glob,x,y\n")); !errors.Is(err, hyberr.ErrConstructor) {
		t.Fatalf("unknown search type: expected constructor error, got %v", err)
	}
	if _, err := ParseStringMatchParams(strings.NewReader("startswith,x\n")); !errors.Is(err, hyberr.ErrConstructor) {
		t.Fatalf("short line: expected constructor error, got %v", err)
	}
}

func TestParseIDMap(t *testing.T) {
	m := IDMap{}
	input := "# header\nref_a,microRNA\nref_b,mRNA\nref_a,microRNA\n"
	if err := ParseIDMap(strings.NewReader(input), m); err != nil {
		t.Fatalf("ParseIDMap: %v", err)
	}
	if len(m) != 2 || m["ref_a"] != "microRNA" || m["ref_b"] != "mRNA" {
		t.Fatalf("map = %v", m)
	}
	if got, err := m.Find(seg("ref_b")); err != nil || got != "mRNA" {
		t.Fatalf("Find = %q, %v", got, err)
	}
	if got, _ := m.Find(seg("ref_missing")); got != "" {
		t.Fatalf("missing id = %q, want empty", got)
	}

	err := ParseIDMap(strings.NewReader("ref_a,rRNA\n"), m)
	if !errors.Is(err, hyberr.ErrConstructor) {
		t.Fatalf("conflicting reassignment: expected constructor error, got %v", err)
	}
}

func TestLoadIDMap(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.csv")
	p2 := filepath.Join(dir, "b.csv")
	if err := os.WriteFile(p1, []byte("ref_a,microRNA\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(p2, []byte("ref_b,mRNA\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := LoadIDMap(p1, p2)
	if err != nil {
		t.Fatalf("LoadIDMap: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("map = %v", m)
	}
	if _, err := LoadIDMap(); !errors.Is(err, hyberr.ErrArg) {
		t.Fatalf("no paths: expected arg error, got %v", err)
	}
}
