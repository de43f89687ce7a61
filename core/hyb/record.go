// core/hyb/record.go
package hyb

import (
	"strconv"
	"strings"
	"unicode"

	"hybgo-core/hyberr"
)

// Placeholder marks missing values in hyb-format text.
const Placeholder = "."

// Default type vocabularies, overridable through Settings.
var (
	DefaultMiRNATypes  = []string{"miRNA", "microRNA"}
	DefaultCodingTypes = []string{"mRNA"}
)

// Settings is the explicit configuration surface for hyb records and
// readers/writers. It is passed where needed instead of living in
// process-global state.
type Settings struct {
	MiRNATypes           []string
	CodingTypes          []string
	CustomFlags          []string
	ReorderFlags         bool
	AllowUndefinedFlags  bool
	AllowUnknownSegTypes bool
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		MiRNATypes:   append([]string(nil), DefaultMiRNATypes...),
		CodingTypes:  append([]string(nil), DefaultCodingTypes...),
		ReorderFlags: true,
	}
}

// Record is one chimeric-read entry of a hyb file: an identifier, the
// full read sequence, an optional folding energy, two aligned segments,
// and annotation flags. A FoldRecord may be attached once via
// SetFoldRecord; records are shared by reference and never copied by
// the toolkit.
type Record struct {
	ID     string
	Seq    string
	Energy string
	Seg1   SegmentProperties
	Seg2   SegmentProperties
	Flags  Flags
	Fold   *FoldRecord

	allowUndefinedFlags bool
	customFlags         []string
}

// RecordOptions carries the optional constructor arguments of NewRecord.
type RecordOptions struct {
	Energy              string
	Seg1, Seg2          SegmentProperties
	Flags               Flags
	ReadCount           *int
	AllowUndefinedFlags bool
	CustomFlags         []string
}

// NewRecord validates and builds a Record. The identifier and sequence
// are required; the sequence must be alphabetic. The energy, when set,
// must parse as a number. A ReadCount option that disagrees with an
// already-present read_count flag is rejected.
func NewRecord(id, seq string, opts RecordOptions) (*Record, error) {
	id = strings.TrimSpace(id)
	seq = strings.TrimSpace(seq)
	if id == "" || id == Placeholder {
		return nil, hyberr.Constructorf("record id is required and cannot be empty")
	}
	if seq == "" || seq == Placeholder {
		return nil, hyberr.Constructorf("record seq is required and cannot be empty (id: %s)", id)
	}
	for _, r := range seq {
		if !unicode.IsLetter(r) {
			return nil, hyberr.Constructorf("record seq must be alphabetic, got %q (id: %s)", seq, id)
		}
	}
	energy := fromPlaceholder(opts.Energy)
	if energy != "" {
		if _, err := strconv.ParseFloat(energy, 64); err != nil {
			return nil, hyberr.Constructorf("record energy %q is not numeric (id: %s)", energy, id)
		}
	}
	rec := &Record{
		ID:                  id,
		Seq:                 seq,
		Energy:              energy,
		Seg1:                opts.Seg1,
		Seg2:                opts.Seg2,
		Flags:               opts.Flags,
		allowUndefinedFlags: opts.AllowUndefinedFlags,
		customFlags:         append([]string(nil), opts.CustomFlags...),
	}
	for _, c := range rec.Flags.Custom {
		if err := checkCustomAllowed(c.Key, opts.AllowUndefinedFlags, opts.CustomFlags); err != nil {
			return nil, err
		}
	}
	if opts.ReadCount != nil {
		want := strconv.Itoa(*opts.ReadCount)
		if rec.Flags.ReadCount != "" && rec.Flags.ReadCount != want {
			return nil, hyberr.Constructorf(
				"read_count argument (%s) disagrees with read_count flag (%s) (id: %s)",
				want, rec.Flags.ReadCount, id)
		}
		if err := rec.SetFlag(FlagReadCount, want); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func checkCustomAllowed(key string, allowUndefined bool, custom []string) error {
	if allowUndefined {
		return nil
	}
	for _, c := range custom {
		if c == key {
			return nil
		}
	}
	return hyberr.Constructorf("flag %q is not defined; enable undefined flags or declare it as custom", key)
}

// SetFlag assigns one flag, enforcing the record's flag vocabulary.
func (r *Record) SetFlag(key, value string) error {
	return r.Flags.set(key, value, r.allowUndefinedFlags, r.customFlags)
}

// ReadCount returns the read_count flag as an integer.
func (r *Record) ReadCount() (int, bool) {
	if r.Flags.ReadCount == "" {
		return 0, false
	}
	n, err := strconv.Atoi(r.Flags.ReadCount)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Count returns the record's weight under a counting mode: "record"
// uses the count_total flag (1 when absent), "read" uses read_count
// (1 when absent).
func (r *Record) Count(mode string) (int, error) {
	var raw string
	switch mode {
	case "record":
		raw = r.Flags.CountTotal
	case "read":
		raw = r.Flags.ReadCount
	default:
		return 0, hyberr.Argf("unrecognized count mode %q (allowed: record, read)", mode)
	}
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, hyberr.Miscf("non-integer count flag value %q (id: %s)", raw, r.ID)
	}
	return n, nil
}

// Equal reports record identity: matching id and sequence.
func (r *Record) Equal(other *Record) bool {
	return other != nil && r.ID == other.ID && r.Seq == other.Seq
}

// ToFields renders the record to its 15 (or 16, with flags) columns.
func (r *Record) ToFields() []string {
	return r.toFields(true)
}

func (r *Record) toFields(reorder bool) []string {
	fields := make([]string, 0, 16)
	fields = append(fields, r.ID, r.Seq, orDefault(r.Energy, Placeholder))
	fields = append(fields, r.Seg1.toFields(Placeholder)...)
	fields = append(fields, r.Seg2.toFields(Placeholder)...)
	if !r.Flags.IsEmpty() {
		fields = append(fields, r.Flags.flagString(reorder))
	}
	return fields
}

// fieldNames names the hyb columns, in file order.
var fieldNames = []string{
	"id", "seq", "energy",
	"seg1_ref_name", "seg1_read_start", "seg1_read_end",
	"seg1_ref_start", "seg1_ref_end", "seg1_score",
	"seg2_ref_name", "seg2_read_start", "seg2_read_end",
	"seg2_ref_start", "seg2_ref_end", "seg2_score",
	"flags",
}

// ToFieldMap renders the record as a field-name to value mapping.
// The flags entry is present only when the record carries flags.
func (r *Record) ToFieldMap() map[string]string {
	fields := r.toFields(true)
	m := make(map[string]string, len(fields))
	for i, v := range fields {
		m[fieldNames[i]] = v
	}
	return m
}

// ToLine renders the tab-separated hyb line (no trailing newline),
// with flags in canonical order.
func (r *Record) ToLine() string {
	return strings.Join(r.toFields(true), "\t")
}

// ToLineKeepOrder renders the hyb line preserving original flag order.
func (r *Record) ToLineKeepOrder() string {
	return strings.Join(r.toFields(false), "\t")
}

// ToCSV renders the record as one comma-separated line.
func (r *Record) ToCSV() string {
	return strings.Join(r.toFields(true), ",")
}

// SetFoldRecord attaches a FoldRecord after checking sequence
// consistency (within allowedMismatches) and reconciling energies.
// A genuine energy disagreement fails unless allowEnergyMismatch;
// a record energy left unset adopts the fold energy.
func (r *Record) SetFoldRecord(fr *FoldRecord, allowEnergyMismatch bool, allowedMismatches int) error {
	if fr == nil {
		return hyberr.Constructorf("set_fold_record requires a FoldRecord, got nil (id: %s)", r.ID)
	}
	if err := fr.EnsureMatchesHybRecord(r, allowedMismatches); err != nil {
		return err
	}
	switch {
	case r.Energy == "":
		r.Energy = fr.Energy
	case fr.Energy != "" && fr.Energy != r.Energy:
		if !allowEnergyMismatch {
			return hyberr.Constructorf(
				"energy mismatch between record (%s) and fold record (%s) (id: %s)",
				r.Energy, fr.Energy, r.ID)
		}
	}
	r.Fold = fr
	return nil
}
