// core/hyb/props.go
package hyb

import (
	"strings"

	"hybgo-core/hyberr"
)

// Prop evaluates a named predicate over the record. Four families are
// supported:
//
//   - miRNA state: has_mirna, no_mirna, mirna_dimer, mirna_not_dimer,
//     5p_mirna, 3p_mirna (require eval_mirna);
//   - structural: has_indels (requires full segment coordinates);
//   - string match: <target>_is / _prefix / _suffix / _contains where
//     <target> is one of id, seq, seg1, seg2, any_seg, seg1_type,
//     seg2_type, any_seg_type (type targets require eval_types);
//   - miRNA string match: the same suffixes over mirna, target,
//     mirna_seg_type, target_seg_type (require eval_mirna).
//
// String-family predicates need a non-empty compare argument.
func (r *Record) Prop(name, compare string) (bool, error) {
	switch name {
	case "has_mirna", "no_mirna", "mirna_dimer", "mirna_not_dimer", "5p_mirna", "3p_mirna":
		return r.mirnaStateProp(name)
	case "has_indels":
		if !r.Seg1.HasReadSpan() || !r.Seg2.HasReadSpan() ||
			r.Seg1.RefStart == nil || r.Seg1.RefEnd == nil ||
			r.Seg2.RefStart == nil || r.Seg2.RefEnd == nil {
			return false, hyberr.Miscf(
				"has_indels requires full segment coordinates (id: %s)", r.ID)
		}
		return r.Seg1.HasIndels() || r.Seg2.HasIndels(), nil
	}

	target, match, ok := splitPropName(name)
	if !ok {
		return false, hyberr.Miscf("unrecognized record property %q", name)
	}
	if compare == "" {
		return false, hyberr.Argf("property %q requires a comparison argument", name)
	}
	values, err := r.propValues(target)
	if err != nil {
		return false, err
	}
	for _, v := range values {
		if matchString(v, compare, match) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Record) mirnaStateProp(name string) (bool, error) {
	state := r.Flags.MiRNASeg
	if state == "" {
		return false, hyberr.Miscf(
			"property %q requires eval_mirna to have been performed (id: %s)", name, r.ID)
	}
	switch name {
	case "has_mirna":
		return state == MiRNASeg5p || state == MiRNASeg3p || state == MiRNASegBoth, nil
	case "no_mirna":
		return state == MiRNASegNone, nil
	case "mirna_dimer":
		return state == MiRNASegBoth, nil
	case "mirna_not_dimer":
		return state == MiRNASeg5p || state == MiRNASeg3p, nil
	case "5p_mirna":
		return state == MiRNASeg5p || state == MiRNASegBoth, nil
	case "3p_mirna":
		return state == MiRNASeg3p || state == MiRNASegBoth, nil
	}
	return false, hyberr.Miscf("unrecognized record property %q", name)
}

var propMatchSuffixes = []string{"_is", "_prefix", "_suffix", "_contains"}

func splitPropName(name string) (target, match string, ok bool) {
	for _, suffix := range propMatchSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix), strings.TrimPrefix(suffix, "_"), true
		}
	}
	return "", "", false
}

// propValues returns the string(s) a match target compares against.
func (r *Record) propValues(target string) ([]string, error) {
	requireTypes := func() error {
		if r.Flags.Seg1Type == "" || r.Flags.Seg2Type == "" {
			return hyberr.Miscf(
				"type properties require eval_types to have been performed (id: %s)", r.ID)
		}
		return nil
	}
	switch target {
	case "id":
		return []string{r.ID}, nil
	case "seq":
		return []string{r.Seq}, nil
	case "seg1":
		return []string{r.Seg1.RefName}, nil
	case "seg2":
		return []string{r.Seg2.RefName}, nil
	case "any_seg":
		return []string{r.Seg1.RefName, r.Seg2.RefName}, nil
	case "seg1_type", "seg2_type", "any_seg_type":
		if err := requireTypes(); err != nil {
			return nil, err
		}
		switch target {
		case "seg1_type":
			return []string{r.Flags.Seg1Type}, nil
		case "seg2_type":
			return []string{r.Flags.Seg2Type}, nil
		}
		return []string{r.Flags.Seg1Type, r.Flags.Seg2Type}, nil
	case "mirna", "target", "mirna_seg_type", "target_seg_type":
		if r.Flags.MiRNASeg == "" {
			return nil, hyberr.Miscf(
				"miRNA properties require eval_mirna to have been performed (id: %s)", r.ID)
		}
		if r.Flags.MiRNASeg == MiRNASegNone {
			return nil, nil
		}
		mirna, tgt, mirnaType, targetType, err := r.mirnaSides(true)
		if err != nil {
			return nil, err
		}
		switch target {
		case "mirna":
			return []string{mirna.RefName}, nil
		case "target":
			return []string{tgt.RefName}, nil
		case "mirna_seg_type":
			return []string{mirnaType}, nil
		}
		return []string{targetType}, nil
	}
	return nil, hyberr.Miscf("unrecognized record property target %q", target)
}

func matchString(value, compare, match string) bool {
	switch match {
	case "is":
		return value == compare
	case "prefix":
		return strings.HasPrefix(value, compare)
	case "suffix":
		return strings.HasSuffix(value, compare)
	case "contains":
		return strings.Contains(value, compare)
	}
	return false
}

// IsSet reports whether a named attribute of the record has been
// filled: energy, full_seg_props, fold_record, eval_types, eval_mirna,
// or eval_target.
func (r *Record) IsSet(name string) (bool, error) {
	switch name {
	case "energy":
		return r.Energy != "", nil
	case "full_seg_props":
		return r.Seg1.HasFullProps() && r.Seg2.HasFullProps(), nil
	case "fold_record":
		return r.Fold != nil, nil
	case "eval_types":
		return r.Flags.Seg1Type != "" && r.Flags.Seg2Type != "", nil
	case "eval_mirna":
		return r.Flags.MiRNASeg != "", nil
	case "eval_target":
		return r.Flags.TargetReg != "", nil
	}
	return false, hyberr.Miscf("unrecognized record attribute %q", name)
}
