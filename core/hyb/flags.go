// core/hyb/flags.go
package hyb

import (
	"strings"

	"hybgo-core/hyberr"
)

// Flag keys defined by the hyb format and the toolkit, in canonical
// write order. The first four come from the Hyb software package; the
// remainder are toolkit annotations.
const (
	FlagCountTotal          = "count_total"
	FlagCountLastClustering = "count_last_clustering"
	FlagTwoWayMerged        = "two_way_merged"
	FlagSeqIDsInCluster     = "seq_IDs_in_cluster"
	FlagReadCount           = "read_count"
	FlagOrient              = "orient"
	FlagDet                 = "det"
	FlagSeg1Type            = "seg1_type"
	FlagSeg2Type            = "seg2_type"
	FlagSeg1Det             = "seg1_det"
	FlagSeg2Det             = "seg2_det"
	FlagMiRNASeg            = "miRNA_seg"
	FlagTargetReg           = "target_reg"
	FlagExt                 = "ext"
	FlagDataset             = "dataset"
)

// FlagOrder is the canonical flag ordering used when writing records
// with flag reordering enabled.
var FlagOrder = []string{
	FlagCountTotal, FlagCountLastClustering, FlagTwoWayMerged,
	FlagSeqIDsInCluster, FlagReadCount, FlagOrient, FlagDet,
	FlagSeg1Type, FlagSeg2Type, FlagSeg1Det, FlagSeg2Det,
	FlagMiRNASeg, FlagTargetReg, FlagExt, FlagDataset,
}

// CustomFlag is one user-declared flag carried outside the defined set.
type CustomFlag struct {
	Key   string
	Value string
}

// Flags holds the defined flags of a record as named fields, custom
// flags in a side table, and the original set order for verbatim
// round-trips when reordering is disabled. Empty string means unset.
type Flags struct {
	CountTotal          string
	CountLastClustering string
	TwoWayMerged        string
	SeqIDsInCluster     string
	ReadCount           string
	Orient              string
	Det                 string
	Seg1Type            string
	Seg2Type            string
	Seg1Det             string
	Seg2Det             string
	MiRNASeg            string
	TargetReg           string
	Ext                 string
	Dataset             string

	Custom []CustomFlag

	order []string
}

func (f *Flags) field(key string) *string {
	switch key {
	case FlagCountTotal:
		return &f.CountTotal
	case FlagCountLastClustering:
		return &f.CountLastClustering
	case FlagTwoWayMerged:
		return &f.TwoWayMerged
	case FlagSeqIDsInCluster:
		return &f.SeqIDsInCluster
	case FlagReadCount:
		return &f.ReadCount
	case FlagOrient:
		return &f.Orient
	case FlagDet:
		return &f.Det
	case FlagSeg1Type:
		return &f.Seg1Type
	case FlagSeg2Type:
		return &f.Seg2Type
	case FlagSeg1Det:
		return &f.Seg1Det
	case FlagSeg2Det:
		return &f.Seg2Det
	case FlagMiRNASeg:
		return &f.MiRNASeg
	case FlagTargetReg:
		return &f.TargetReg
	case FlagExt:
		return &f.Ext
	case FlagDataset:
		return &f.Dataset
	}
	return nil
}

// Get returns the value of a flag and whether it is set.
func (f *Flags) Get(key string) (string, bool) {
	if p := f.field(key); p != nil {
		return *p, *p != ""
	}
	for _, c := range f.Custom {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}

// IsSet reports whether the flag has a value.
func (f *Flags) IsSet(key string) bool {
	_, ok := f.Get(key)
	return ok
}

// set assigns a flag value, enforcing the defined-flag vocabulary.
// Custom keys are accepted when listed in customAllowed or when
// allowUndefined is true.
func (f *Flags) set(key, value string, allowUndefined bool, customAllowed []string) error {
	if p := f.field(key); p != nil {
		if *p == "" {
			f.order = append(f.order, key)
		}
		*p = value
		return nil
	}
	allowed := allowUndefined
	for _, c := range customAllowed {
		if c == key {
			allowed = true
			break
		}
	}
	if !allowed {
		return hyberr.Constructorf("flag %q is not defined; enable undefined flags or declare it as custom", key)
	}
	for i := range f.Custom {
		if f.Custom[i].Key == key {
			f.Custom[i].Value = value
			return nil
		}
	}
	f.Custom = append(f.Custom, CustomFlag{Key: key, Value: value})
	f.order = append(f.order, key)
	return nil
}

// Keys returns the set flag keys, in canonical order when reorder is
// true (custom flags trailing in set order), otherwise in set order.
func (f *Flags) Keys(reorder bool) []string {
	if !reorder {
		out := make([]string, 0, len(f.order))
		for _, k := range f.order {
			if _, ok := f.Get(k); ok {
				out = append(out, k)
			}
		}
		return out
	}
	out := make([]string, 0, len(f.order))
	for _, k := range FlagOrder {
		if _, ok := f.Get(k); ok {
			out = append(out, k)
		}
	}
	for _, c := range f.Custom {
		out = append(out, c.Key)
	}
	return out
}

// IsEmpty reports whether no flags are set.
func (f *Flags) IsEmpty() bool { return len(f.Keys(false)) == 0 }

// flagString renders the ";"-joined key=value flag column.
func (f *Flags) flagString(reorder bool) string {
	keys := f.Keys(reorder)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := f.Get(k)
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ";")
}

// parseFlagString parses the optional 16th hyb column of
// ";"-separated key=value pairs.
func parseFlagString(raw string, allowUndefined bool, customAllowed []string) (Flags, error) {
	var flags Flags
	raw = strings.TrimSuffix(strings.TrimSpace(raw), ";")
	if raw == "" {
		return flags, nil
	}
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) != 2 {
			return flags, hyberr.Constructorf("malformed flag entry %q (expected key=value)", entry)
		}
		if err := flags.set(kv[0], kv[1], allowUndefined, customAllowed); err != nil {
			return flags, err
		}
	}
	return flags, nil
}
