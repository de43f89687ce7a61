// core/hyb/parse.go
package hyb

import (
	"strconv"
	"strings"

	"hybgo-core/hyberr"
)

// LineOptions controls parsing of one hyb-format line.
type LineOptions struct {
	// HybformatID infers the read_count flag from identifiers shaped
	// "<read_id>_<read_count>", as written by the Hyb software package.
	HybformatID bool
	// HybformatRef infers per-segment types from reference names shaped
	// "<gene_id>_<transcript_id>_<gene_name>_<seg_type>".
	HybformatRef bool

	AllowUndefinedFlags bool
	CustomFlags         []string
}

// FromLine parses one tab-separated hyb line into a Record.
func FromLine(line string, opts LineOptions) (*Record, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, "\t")
	if len(fields) < 15 || len(fields) > 16 {
		return nil, hyberr.Constructorf(
			"hyb line has %d fields, expected 15 or 16:\n%s", len(fields), line)
	}
	seg1, err := parseSegmentFields(fields[3:9])
	if err != nil {
		return nil, err
	}
	seg2, err := parseSegmentFields(fields[9:15])
	if err != nil {
		return nil, err
	}
	var flags Flags
	if len(fields) == 16 {
		flags, err = parseFlagString(fields[15], opts.AllowUndefinedFlags, opts.CustomFlags)
		if err != nil {
			return nil, err
		}
	}
	rec, err := NewRecord(fields[0], fields[1], RecordOptions{
		Energy:              fields[2],
		Seg1:                seg1,
		Seg2:                seg2,
		Flags:               flags,
		AllowUndefinedFlags: opts.AllowUndefinedFlags,
		CustomFlags:         opts.CustomFlags,
	})
	if err != nil {
		return nil, err
	}
	if opts.HybformatID {
		if err := rec.inferHybformatID(); err != nil {
			return nil, err
		}
	}
	if rec.Flags.SeqIDsInCluster != "" && rec.Flags.CountTotal == "" {
		n := len(strings.Split(rec.Flags.SeqIDsInCluster, ","))
		_ = rec.SetFlag(FlagCountTotal, strconv.Itoa(n))
	}
	if opts.HybformatRef {
		if err := rec.inferHybformatRef(); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// inferHybformatID reads the trailing "_<count>" of a Hyb-style record
// identifier into the read_count flag.
func (r *Record) inferHybformatID() error {
	parts := strings.Split(r.ID, "_")
	if len(parts) != 2 {
		return hyberr.Constructorf(
			"id %q is not in hybformat \"<read_id>_<read_count>\" shape", r.ID)
	}
	count, err := strconv.Atoi(parts[1])
	if err != nil {
		return hyberr.Constructorf(
			"id %q has non-integer read count component %q", r.ID, parts[1])
	}
	want := strconv.Itoa(count)
	if r.Flags.ReadCount != "" {
		if r.Flags.ReadCount != want {
			return hyberr.Constructorf(
				"read count from id (%s) disagrees with read_count flag (%s) (id: %s)",
				want, r.Flags.ReadCount, r.ID)
		}
		return nil
	}
	return r.SetFlag(FlagReadCount, want)
}

// inferHybformatRef reads the trailing "_<type>" of Hyb-style reference
// names into the seg type flags, checking against any present value.
func (r *Record) inferHybformatRef() error {
	for _, seg := range []struct {
		props SegmentProperties
		flag  string
		have  string
	}{
		{r.Seg1, FlagSeg1Type, r.Flags.Seg1Type},
		{r.Seg2, FlagSeg2Type, r.Flags.Seg2Type},
	} {
		if seg.props.RefName == "" {
			continue
		}
		parts := strings.Split(seg.props.RefName, "_")
		if len(parts) < 4 {
			return hyberr.Constructorf(
				"reference name %q is not in hybformat \"<gene>_<transcript>_<name>_<type>\" shape",
				seg.props.RefName)
		}
		segType := parts[len(parts)-1]
		if seg.have != "" && seg.have != segType {
			return hyberr.Constructorf(
				"segment type from reference name (%s) disagrees with %s flag (%s) (id: %s)",
				segType, seg.flag, seg.have, r.ID)
		}
		if err := r.SetFlag(seg.flag, segType); err != nil {
			return err
		}
	}
	return nil
}
