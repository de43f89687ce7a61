// core/hyb/ct.go
package hyb

import (
	"strconv"
	"strings"
)

// ParseCtLines reads a connectivity-table block: a header line
// "N<TAB>dG = X<TAB>dH = Y<TAB>name" followed by N base lines whose
// fifth column is the 1-based index of the paired base (0 when
// unpaired). Pairing indices are converted to dot-bracket characters
// by comparing the partner index to the current position.
//
// CT support is beta: the format varies between prediction tools and
// only the UNAFold-style layout above is handled.
func ParseCtLines(lines []string, seqType SeqType) ParseResult {
	raw := strings.Join(lines, "\n")
	if len(lines) < 2 {
		return ParseResult{
			Status: ParseMalformed, Raw: raw,
			Reason: "ct record requires a header line and at least one base line",
		}
	}
	header := strings.TrimSpace(lines[0])
	if !strings.Contains(header, "dG") && !strings.Contains(header, "Energy") {
		return ParseResult{
			Status: ParseMalformed, Raw: raw,
			Reason: "ct header lacks a dG/Energy field",
		}
	}
	headerFields := strings.Split(header, "\t")
	if len(headerFields) < 2 {
		return ParseResult{
			Status: ParseMalformed, Raw: raw,
			Reason: "ct header is not tab-separated",
		}
	}
	expectedLen, err := strconv.Atoi(strings.TrimSpace(headerFields[0]))
	if err != nil {
		return ParseResult{
			Status: ParseMalformed, Raw: raw,
			Reason: "ct header does not begin with the sequence length",
		}
	}
	if len(lines)-1 != expectedLen {
		return ParseResult{
			Status: ParseMalformed, Raw: raw,
			Reason: "ct base line count " + strconv.Itoa(len(lines)-1) +
				" does not match header length " + strconv.Itoa(expectedLen),
		}
	}
	var energy string
	for _, field := range headerFields[1:] {
		if strings.Contains(field, "dG") || strings.Contains(field, "Energy") {
			parts := strings.Fields(field)
			energy = parts[len(parts)-1]
			break
		}
	}
	id := strings.TrimSpace(headerFields[len(headerFields)-1])

	var seq, foldStr strings.Builder
	for i, line := range lines[1:] {
		pos := i + 1
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 5 {
			return ParseResult{
				Status: ParseMalformed, Raw: raw,
				Reason: "ct base line " + strconv.Itoa(pos) + " has fewer than 5 columns",
			}
		}
		seq.WriteString(fields[1])
		paired, err := strconv.Atoi(fields[4])
		if err != nil || paired == pos {
			return ParseResult{
				Status: ParseMalformed, Raw: raw,
				Reason: "ct base line " + strconv.Itoa(pos) + " has invalid pairing index",
			}
		}
		switch {
		case paired == 0:
			foldStr.WriteByte('.')
		case paired > pos:
			foldStr.WriteByte('(')
		default:
			foldStr.WriteByte(')')
		}
	}
	rec, err := NewFoldRecord(id, seq.String(), foldStr.String(), energy, seqType)
	if err != nil {
		return ParseResult{Status: ParseMalformed, Raw: raw, Reason: err.Error()}
	}
	return ParseResult{Status: ParseOK, Record: rec}
}

// FoldFromCtLines is the strict form of ParseCtLines.
func FoldFromCtLines(lines []string, seqType SeqType) (*FoldRecord, error) {
	res := ParseCtLines(lines, seqType)
	if res.Status != ParseOK {
		return nil, res.Err()
	}
	return res.Record, nil
}
