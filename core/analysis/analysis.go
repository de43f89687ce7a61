// core/analysis/analysis.go

// Package analysis aggregates statistics over validated hyb records:
// segment-type pairings, miRNA classes, miRNA→target pairings, and
// fold base-pairing by miRNA position. Aggregations consume records by
// reference, may be combined across inputs, and render delimited text.
package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"hybgo-core/hyb"
	"hybgo-core/hyberr"
)

// Settings configures counting and output formatting.
type Settings struct {
	// CountMode weighs each record: "record" (count_total flag) or
	// "read" (read_count flag).
	CountMode string
	// MiRNASort lists the miRNA type first in type-pair keys instead
	// of sorting alphabetically.
	MiRNASort bool
	// AllowMiRNADimers includes miRNA/miRNA hybrids in target counts.
	AllowMiRNADimers bool
	// TypeSep joins the two segment types in pair keys.
	TypeSep string
	// OutDelim separates output fields.
	OutDelim rune
	// MiRNATypes identifies miRNA segment types for sorting.
	MiRNATypes []string
}

// DefaultSettings returns record-weighted counting with miRNA-first
// sorting and comma-delimited output.
func DefaultSettings() Settings {
	return Settings{
		CountMode:  "record",
		MiRNASort:  true,
		TypeSep:    "-",
		OutDelim:   ',',
		MiRNATypes: append([]string(nil), hyb.DefaultMiRNATypes...),
	}
}

func writeRows(w io.Writer, delim rune, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// sortedKeysByCount orders map keys by descending count, then key.
func sortedKeysByCount(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// TypeCounts tallies hybrids by their segment-type pairing.
type TypeCounts struct {
	settings Settings
	Pairs    map[string]int
	Types    map[string]int
	Total    int
}

func NewTypeCounts(s Settings) *TypeCounts {
	return &TypeCounts{settings: s, Pairs: map[string]int{}, Types: map[string]int{}}
}

// Add tallies one record; it must have evaluated types.
func (t *TypeCounts) Add(rec *hyb.Record) error {
	if ok, _ := rec.IsSet("eval_types"); !ok {
		return hyberr.Miscf("type analysis requires eval_types to have been performed (id: %s)", rec.ID)
	}
	count, err := rec.Count(t.settings.CountMode)
	if err != nil {
		return err
	}
	t1, t2 := rec.Flags.Seg1Type, rec.Flags.Seg2Type
	first, second := t1, t2
	mirna1 := containsString(t.settings.MiRNATypes, t1)
	mirna2 := containsString(t.settings.MiRNATypes, t2)
	switch {
	case t.settings.MiRNASort && mirna2 && !mirna1:
		first, second = t2, t1
	case (!t.settings.MiRNASort || mirna1 == mirna2) && t2 < t1:
		first, second = t2, t1
	}
	t.Pairs[first+t.settings.TypeSep+second] += count
	t.Types[t1] += count
	t.Types[t2] += count
	t.Total += count
	return nil
}

// Combine merges another tally into this one.
func (t *TypeCounts) Combine(o *TypeCounts) {
	for k, v := range o.Pairs {
		t.Pairs[k] += v
	}
	for k, v := range o.Types {
		t.Types[k] += v
	}
	t.Total += o.Total
}

// Rows renders "hybrid_type,count" lines in descending count order.
func (t *TypeCounts) Rows() [][]string {
	rows := [][]string{{"hybrid_type", "count"}}
	for _, k := range sortedKeysByCount(t.Pairs) {
		rows = append(rows, []string{k, strconv.Itoa(t.Pairs[k])})
	}
	rows = append(rows, []string{"total", strconv.Itoa(t.Total)})
	return rows
}

func (t *TypeCounts) Write(w io.Writer) error {
	return writeRows(w, t.settings.OutDelim, t.Rows())
}

// MiRNACounts tallies hybrids by miRNA class (5p / 3p / B / N).
type MiRNACounts struct {
	settings Settings
	FivePrime, ThreePrime,
	Dimers, NonMiRNA, Total int
}

func NewMiRNACounts(s Settings) *MiRNACounts { return &MiRNACounts{settings: s} }

// Add tallies one record; it must have evaluated miRNA state.
func (m *MiRNACounts) Add(rec *hyb.Record) error {
	if ok, _ := rec.IsSet("eval_mirna"); !ok {
		return hyberr.Miscf("miRNA analysis requires eval_mirna to have been performed (id: %s)", rec.ID)
	}
	count, err := rec.Count(m.settings.CountMode)
	if err != nil {
		return err
	}
	switch rec.Flags.MiRNASeg {
	case hyb.MiRNASeg5p:
		m.FivePrime += count
	case hyb.MiRNASeg3p:
		m.ThreePrime += count
	case hyb.MiRNASegBoth:
		m.Dimers += count
	default:
		m.NonMiRNA += count
	}
	m.Total += count
	return nil
}

func (m *MiRNACounts) Combine(o *MiRNACounts) {
	m.FivePrime += o.FivePrime
	m.ThreePrime += o.ThreePrime
	m.Dimers += o.Dimers
	m.NonMiRNA += o.NonMiRNA
	m.Total += o.Total
}

func (m *MiRNACounts) Rows() [][]string {
	return [][]string{
		{"mirna_class", "count"},
		{"5p_mirna_hybrids", strconv.Itoa(m.FivePrime)},
		{"3p_mirna_hybrids", strconv.Itoa(m.ThreePrime)},
		{"mirna_dimer_hybrids", strconv.Itoa(m.Dimers)},
		{"non_mirna_hybrids", strconv.Itoa(m.NonMiRNA)},
		{"total", strconv.Itoa(m.Total)},
	}
}

func (m *MiRNACounts) Write(w io.Writer) error {
	return writeRows(w, m.settings.OutDelim, m.Rows())
}

// TargetCounts tallies targets per miRNA.
type TargetCounts struct {
	settings Settings
	// Targets maps miRNA reference → target key ("ref<sep>type") → count.
	Targets map[string]map[string]int
	Totals  map[string]int
}

func NewTargetCounts(s Settings) *TargetCounts {
	return &TargetCounts{settings: s, Targets: map[string]map[string]int{}, Totals: map[string]int{}}
}

// Add tallies one record with a single miRNA (dimers per settings);
// records without a miRNA are ignored.
func (t *TargetCounts) Add(rec *hyb.Record) error {
	if ok, _ := rec.IsSet("eval_mirna"); !ok {
		return hyberr.Miscf("target analysis requires eval_mirna to have been performed (id: %s)", rec.ID)
	}
	switch rec.Flags.MiRNASeg {
	case hyb.MiRNASegNone, hyb.MiRNASegUnk:
		return nil
	case hyb.MiRNASegBoth:
		if !t.settings.AllowMiRNADimers {
			return nil
		}
	}
	count, err := rec.Count(t.settings.CountMode)
	if err != nil {
		return err
	}
	d, err := rec.MiRNADetails(t.settings.AllowMiRNADimers)
	if err != nil {
		return err
	}
	key := d.TargetRef + t.settings.TypeSep + d.TargetSegType
	if t.Targets[d.MiRNARef] == nil {
		t.Targets[d.MiRNARef] = map[string]int{}
	}
	t.Targets[d.MiRNARef][key] += count
	t.Totals[d.MiRNARef] += count
	return nil
}

func (t *TargetCounts) Combine(o *TargetCounts) {
	for mirna, targets := range o.Targets {
		if t.Targets[mirna] == nil {
			t.Targets[mirna] = map[string]int{}
		}
		for k, v := range targets {
			t.Targets[mirna][k] += v
		}
	}
	for k, v := range o.Totals {
		t.Totals[k] += v
	}
}

// Rows renders "mirna,target,count" lines grouped by miRNA in
// descending total order.
func (t *TargetCounts) Rows() [][]string {
	rows := [][]string{{"mirna", "target", "count"}}
	for _, mirna := range sortedKeysByCount(t.Totals) {
		for _, target := range sortedKeysByCount(t.Targets[mirna]) {
			rows = append(rows, []string{mirna, target, strconv.Itoa(t.Targets[mirna][target])})
		}
		rows = append(rows, []string{mirna, "total", strconv.Itoa(t.Totals[mirna])})
	}
	return rows
}

func (t *TargetCounts) Write(w io.Writer) error {
	return writeRows(w, t.settings.OutDelim, t.Rows())
}

// maxFoldPositions bounds the per-position pairing tally to typical
// miRNA length.
const maxFoldPositions = 25

// FoldStats tallies base-pairing of the miRNA side of combined
// records: counts of paired bases per miRNA position plus an energy
// histogram (1 kcal/mol bins).
type FoldStats struct {
	settings    Settings
	PairedByPos map[int]int
	EnergyBins  map[string]int
	Records     int
	Total       int
}

func NewFoldStats(s Settings) *FoldStats {
	return &FoldStats{settings: s, PairedByPos: map[int]int{}, EnergyBins: map[string]int{}}
}

// Add tallies one record; it must carry a fold record and evaluated
// miRNA state. Records without a miRNA are ignored.
func (f *FoldStats) Add(rec *hyb.Record) error {
	if rec.Fold == nil {
		return hyberr.Miscf("fold analysis requires an attached fold record (id: %s)", rec.ID)
	}
	if ok, _ := rec.IsSet("eval_mirna"); !ok {
		return hyberr.Miscf("fold analysis requires eval_mirna to have been performed (id: %s)", rec.ID)
	}
	switch rec.Flags.MiRNASeg {
	case hyb.MiRNASegNone, hyb.MiRNASegUnk:
		return nil
	case hyb.MiRNASegBoth:
		if !f.settings.AllowMiRNADimers {
			return nil
		}
	}
	count, err := rec.Count(f.settings.CountMode)
	if err != nil {
		return err
	}
	d, err := rec.MiRNADetails(f.settings.AllowMiRNADimers)
	if err != nil {
		return err
	}
	for i := 0; i < len(d.MiRNAFold) && i < maxFoldPositions; i++ {
		if c := d.MiRNAFold[i]; c == '(' || c == ')' {
			f.PairedByPos[i+1] += count
		}
	}
	if rec.Fold.Energy != "" {
		var e float64
		if _, err := fmt.Sscan(rec.Fold.Energy, &e); err == nil {
			f.EnergyBins[strconv.Itoa(int(e))] += count
		}
	}
	f.Records++
	f.Total += count
	return nil
}

func (f *FoldStats) Combine(o *FoldStats) {
	for k, v := range o.PairedByPos {
		f.PairedByPos[k] += v
	}
	for k, v := range o.EnergyBins {
		f.EnergyBins[k] += v
	}
	f.Records += o.Records
	f.Total += o.Total
}

// Rows renders per-position pairing counts and fractions, then the
// energy histogram.
func (f *FoldStats) Rows() [][]string {
	rows := [][]string{{"mirna_position", "paired_count", "paired_fraction"}}
	maxPos := 0
	for pos := range f.PairedByPos {
		if pos > maxPos {
			maxPos = pos
		}
	}
	for pos := 1; pos <= maxPos; pos++ {
		count := f.PairedByPos[pos]
		frac := 0.0
		if f.Total > 0 {
			frac = float64(count) / float64(f.Total)
		}
		rows = append(rows, []string{
			strconv.Itoa(pos), strconv.Itoa(count), strconv.FormatFloat(frac, 'f', 4, 64),
		})
	}
	rows = append(rows, []string{"energy_bin", "count", ""})
	for _, k := range sortedKeysByCount(f.EnergyBins) {
		rows = append(rows, []string{k, strconv.Itoa(f.EnergyBins[k]), ""})
	}
	return rows
}

func (f *FoldStats) Write(w io.Writer) error {
	return writeRows(w, f.settings.OutDelim, f.Rows())
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
