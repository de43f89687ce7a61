// core/hyb/vienna.go
package hyb

import (
	"strings"

	"hybgo-core/hyberr"
)

// ParseStatus classifies the outcome of a lenient fold-record parse.
type ParseStatus int

const (
	// ParseOK: a valid FoldRecord was produced.
	ParseOK ParseStatus = iota
	// ParseNoFold: the energy literal "99*" marks a failed folding run.
	ParseNoFold
	// ParseNoEnergy: the fold line lacks a tab-separated energy field.
	ParseNoEnergy
	// ParseMalformed: the block is otherwise unreadable.
	ParseMalformed
)

func (s ParseStatus) String() string {
	switch s {
	case ParseOK:
		return "ok"
	case ParseNoFold:
		return "nofold"
	case ParseNoEnergy:
		return "noenergy"
	}
	return "malformed"
}

// ParseResult is the tagged outcome of a lenient fold parse: either an
// Ok record, or a failure kind carrying the raw text and a reason.
// Replaces sentinel-tuple returns so callers match on Status.
type ParseResult struct {
	Status ParseStatus
	Record *FoldRecord
	Raw    string
	Reason string
}

// Err converts a failed result into a constructor error; nil for Ok.
func (p ParseResult) Err() error {
	if p.Status == ParseOK {
		return nil
	}
	return hyberr.Constructorf("%s fold record: %s\n%s", p.Status, p.Reason, p.Raw)
}

// ParseViennaLines reads a 3-line Vienna block (">id", sequence,
// "fold<TAB>(energy)") into a ParseResult.
func ParseViennaLines(lines []string, seqType SeqType) ParseResult {
	raw := strings.Join(lines, "\n")
	if len(lines) != 3 {
		return ParseResult{
			Status: ParseMalformed, Raw: raw,
			Reason: "record is not in the required 3-line Vienna format",
		}
	}
	idLine := strings.TrimSpace(lines[0])
	if !strings.HasPrefix(idLine, ">") {
		return ParseResult{
			Status: ParseMalformed, Raw: raw,
			Reason: "first line does not begin with \">\"",
		}
	}
	id := strings.TrimPrefix(idLine, ">")
	seq := strings.TrimSpace(lines[1])
	foldLine := strings.TrimRight(lines[2], "\r\n")
	foldSplit := strings.Split(foldLine, "\t")
	if len(foldSplit) != 2 {
		return ParseResult{
			Status: ParseNoEnergy, Raw: raw,
			Reason: "fold line lacks a tab-separated energy field",
		}
	}
	foldStr := foldSplit[0]
	energy := strings.Trim(strings.TrimSpace(foldSplit[1]), "()")
	if strings.HasPrefix(energy, "99") {
		return ParseResult{
			Status: ParseNoFold, Raw: raw,
			Reason: "energy value " + energy + " marks a failed fold",
		}
	}
	rec, err := NewFoldRecord(id, seq, foldStr, energy, seqType)
	if err != nil {
		return ParseResult{Status: ParseMalformed, Raw: raw, Reason: err.Error()}
	}
	return ParseResult{Status: ParseOK, Record: rec}
}

// FoldFromViennaLines is the strict form of ParseViennaLines: any
// non-Ok result becomes an error.
func FoldFromViennaLines(lines []string, seqType SeqType) (*FoldRecord, error) {
	res := ParseViennaLines(lines, seqType)
	if res.Status != ParseOK {
		return nil, res.Err()
	}
	return res.Record, nil
}

// FoldFromViennaString parses a newline-joined Vienna block.
func FoldFromViennaString(s string, seqType SeqType) (*FoldRecord, error) {
	return FoldFromViennaLines(strings.Split(strings.TrimRight(s, "\n"), "\n"), seqType)
}
