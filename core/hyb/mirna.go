// core/hyb/mirna.go
package hyb

import (
	"fmt"
	"strings"

	"hybgo-core/hyberr"
)

// miRNA_seg flag states.
const (
	MiRNASegNone   = "N"
	MiRNASeg5p     = "5p"
	MiRNASeg3p     = "3p"
	MiRNASegBoth   = "B"
	MiRNASegUnk    = "U"
	UnknownSegType = "unknown"
)

// TypeFinder assigns a type string to an aligned segment. Find returns
// "" when the segment cannot be identified; errors are reserved for
// ambiguous or conflicting classifications.
type TypeFinder interface {
	Find(seg SegmentProperties) (string, error)
}

// EvalTypes classifies both segments with the provided finder and sets
// the seg1_type / seg2_type flags. Idempotent: records with both type
// flags already set are left untouched. Unidentifiable segments fail
// unless allowUnknown, in which case they are typed "unknown".
func (r *Record) EvalTypes(tf TypeFinder, allowUnknown bool) error {
	if r.Flags.Seg1Type != "" && r.Flags.Seg2Type != "" {
		return nil
	}
	if tf == nil {
		return hyberr.Argf("eval_types requires a type finder")
	}
	for _, item := range []struct {
		seg  SegmentProperties
		flag string
	}{
		{r.Seg1, FlagSeg1Type},
		{r.Seg2, FlagSeg2Type},
	} {
		segType, err := tf.Find(item.seg)
		if err != nil {
			return err
		}
		if segType == "" {
			if !allowUnknown {
				return hyberr.Miscf(
					"cannot identify type of segment %q (id: %s)", item.seg.RefName, r.ID)
			}
			segType = UnknownSegType
		}
		if err := r.SetFlag(item.flag, segType); err != nil {
			return err
		}
	}
	return nil
}

// EvalMiRNA classifies the hybrid by which segments carry a miRNA type
// and sets the miRNA_seg flag: both "B", first-only "5p", second-only
// "3p", neither "N". Requires EvalTypes to have run. Idempotent unless
// override. A nil mirnaTypes uses the default set.
func (r *Record) EvalMiRNA(override bool, mirnaTypes []string) error {
	if r.Flags.MiRNASeg != "" && !override {
		return nil
	}
	if r.Flags.Seg1Type == "" || r.Flags.Seg2Type == "" {
		return hyberr.Miscf("eval_mirna requires eval_types to have been performed (id: %s)", r.ID)
	}
	if mirnaTypes == nil {
		mirnaTypes = DefaultMiRNATypes
	}
	seg1MiRNA := containsString(mirnaTypes, r.Flags.Seg1Type)
	seg2MiRNA := containsString(mirnaTypes, r.Flags.Seg2Type)
	state := MiRNASegNone
	switch {
	case seg1MiRNA && seg2MiRNA:
		state = MiRNASegBoth
	case seg1MiRNA:
		state = MiRNASeg5p
	case seg2MiRNA:
		state = MiRNASeg3p
	}
	return r.SetFlag(FlagMiRNASeg, state)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// MiRNADetails holds the per-side properties of a miRNA-containing
// hybrid. Fold strings are filled only when a FoldRecord is attached.
type MiRNADetails struct {
	MiRNARef      string
	TargetRef     string
	MiRNASegType  string
	TargetSegType string
	MiRNASeq      string
	TargetSeq     string
	MiRNAFold     string
	TargetFold    string
}

// mirnaSides resolves which segment is the miRNA side. Dimers ("B")
// are rejected unless allowDimers, in which case segment 1 is treated
// as the miRNA arbitrarily.
func (r *Record) mirnaSides(allowDimers bool) (mirna, target SegmentProperties, mirnaType, targetType string, err error) {
	switch r.Flags.MiRNASeg {
	case "":
		err = hyberr.Miscf("mirna_detail requires eval_mirna to have been performed (id: %s)", r.ID)
	case MiRNASegNone:
		err = hyberr.Miscf("record does not contain a miRNA segment (id: %s)", r.ID)
	case MiRNASegBoth:
		if !allowDimers {
			err = hyberr.Miscf("record is a miRNA dimer; enable allow_mirna_dimers to use it (id: %s)", r.ID)
			return
		}
		mirna, target = r.Seg1, r.Seg2
		mirnaType, targetType = r.Flags.Seg1Type, r.Flags.Seg2Type
	case MiRNASeg5p:
		mirna, target = r.Seg1, r.Seg2
		mirnaType, targetType = r.Flags.Seg1Type, r.Flags.Seg2Type
	case MiRNASeg3p:
		mirna, target = r.Seg2, r.Seg1
		mirnaType, targetType = r.Flags.Seg2Type, r.Flags.Seg1Type
	default:
		err = hyberr.Miscf("unrecognized miRNA_seg flag value %q (id: %s)", r.Flags.MiRNASeg, r.ID)
	}
	return
}

// MiRNADetails returns all per-side details of the record.
func (r *Record) MiRNADetails(allowDimers bool) (*MiRNADetails, error) {
	mirna, target, mirnaType, targetType, err := r.mirnaSides(allowDimers)
	if err != nil {
		return nil, err
	}
	mirnaSeq, err := mirna.SeqSlice(r.Seq)
	if err != nil {
		return nil, err
	}
	targetSeq, err := target.SeqSlice(r.Seq)
	if err != nil {
		return nil, err
	}
	d := &MiRNADetails{
		MiRNARef:      mirna.RefName,
		TargetRef:     target.RefName,
		MiRNASegType:  mirnaType,
		TargetSegType: targetType,
		MiRNASeq:      mirnaSeq,
		TargetSeq:     targetSeq,
	}
	if r.Fold != nil {
		if d.MiRNAFold, err = r.Fold.SegFold(mirna, r); err != nil {
			return nil, err
		}
		if d.TargetFold, err = r.Fold.SegFold(target, r); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// MiRNADetail returns one named detail of the record's miRNA pairing.
func (r *Record) MiRNADetail(name string, allowDimers bool) (string, error) {
	d, err := r.MiRNADetails(allowDimers)
	if err != nil {
		return "", err
	}
	switch name {
	case "mirna_ref":
		return d.MiRNARef, nil
	case "target_ref":
		return d.TargetRef, nil
	case "mirna_seg_type":
		return d.MiRNASegType, nil
	case "target_seg_type":
		return d.TargetSegType, nil
	case "mirna_seq":
		return d.MiRNASeq, nil
	case "target_seq":
		return d.TargetSeq, nil
	case "mirna_fold", "target_fold":
		if r.Fold == nil {
			return "", hyberr.Miscf("detail %q requires an attached fold record (id: %s)", name, r.ID)
		}
		if name == "mirna_fold" {
			return d.MiRNAFold, nil
		}
		return d.TargetFold, nil
	}
	return "", hyberr.Argf("unrecognized mirna detail %q", name)
}

// FastaRecord is a sequence with identifier, renderable as FASTA text.
type FastaRecord struct {
	ID  string
	Seq string
}

func (f FastaRecord) String() string {
	return ">" + f.ID + "\n" + f.Seq + "\n"
}

// ToFastaRecord extracts a sequence from the record. Modes: "hybrid"
// (full read), "seg1"/"seg2" (one segment), "mirna"/"target" (resolved
// miRNA side, requiring eval_mirna). With annotate, identifiers gain
// the dataset flag prefix and, for segments, span and reference name.
func (r *Record) ToFastaRecord(mode string, annotate, allowDimers bool) (FastaRecord, error) {
	var seg SegmentProperties
	switch strings.ToLower(mode) {
	case "hybrid":
		id := r.ID
		if annotate && r.Flags.Dataset != "" {
			id = r.Flags.Dataset + ":" + id
		}
		return FastaRecord{ID: id, Seq: r.Seq}, nil
	case "seg1":
		seg = r.Seg1
	case "seg2":
		seg = r.Seg2
	case "mirna", "target":
		mirna, target, _, _, err := r.mirnaSides(allowDimers)
		if err != nil {
			return FastaRecord{}, err
		}
		seg = mirna
		if strings.ToLower(mode) == "target" {
			seg = target
		}
	default:
		return FastaRecord{}, hyberr.Argf(
			"unrecognized fasta mode %q (allowed: hybrid, seg1, seg2, mirna, target)", mode)
	}
	seq, err := seg.SeqSlice(r.Seq)
	if err != nil {
		return FastaRecord{}, err
	}
	id := fmt.Sprintf("%s:%d-%d", r.ID, *seg.ReadStart, *seg.ReadEnd)
	if annotate {
		if r.Flags.Dataset != "" {
			id = r.Flags.Dataset + ":" + id
		}
		if seg.RefName != "" {
			id += ":" + seg.RefName
		}
	}
	return FastaRecord{ID: id, Seq: seq}, nil
}
