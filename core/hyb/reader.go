// core/hyb/reader.go
package hyb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// scanner limits: hyb lines carry full read sequences but stay well
// under a megabyte.
const maxLineBytes = 1 << 20

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	return sc
}

// Reader yields one hyb Record per call from line-oriented text.
// End of input is reported as io.EOF.
type Reader struct {
	sc   *bufio.Scanner
	opts LineOptions
	line int
}

// NewReader wraps r with the given per-line parse options.
func NewReader(r io.Reader, opts LineOptions) *Reader {
	return &Reader{sc: newScanner(r), opts: opts}
}

// ReadRecord parses the next non-blank line. Parse failures identify
// the offending line number.
func (r *Reader) ReadRecord() (*Record, error) {
	for r.sc.Scan() {
		r.line++
		line := r.sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := FromLine(line, r.opts)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		return rec, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("hyb scan: %w", err)
	}
	return nil, io.EOF
}

// ReadRecords drains the reader.
func (r *Reader) ReadRecords() ([]*Record, error) {
	var out []*Record
	for {
		rec, err := r.ReadRecord()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// Writer emits hyb Records as tab-separated lines.
type Writer struct {
	w       *bufio.Writer
	reorder bool
}

// NewWriter wraps w. With reorder, flags are written in canonical
// order; otherwise their original set order is preserved.
func NewWriter(w io.Writer, reorder bool) *Writer {
	return &Writer{w: bufio.NewWriter(w), reorder: reorder}
}

func (w *Writer) WriteRecord(rec *Record) error {
	line := rec.ToLineKeepOrder()
	if w.reorder {
		line = rec.ToLine()
	}
	_, err := w.w.WriteString(line + "\n")
	return err
}

func (w *Writer) Flush() error { return w.w.Flush() }

// ViennaReader yields fold records from 3-line Vienna blocks.
// ReadResult surfaces parse problems as ParseResult values so callers
// can layer their own error policy; ReadRecord is the strict form.
type ViennaReader struct {
	sc      *bufio.Scanner
	seqType SeqType
	line    int
}

func NewViennaReader(r io.Reader, seqType SeqType) *ViennaReader {
	return &ViennaReader{sc: newScanner(r), seqType: seqType}
}

// nextLines collects the next block of up to n non-blank lines.
func (v *ViennaReader) nextLines(n int) []string {
	var lines []string
	for len(lines) < n && v.sc.Scan() {
		v.line++
		line := strings.TrimRight(v.sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ReadResult returns the next record's lenient parse outcome, or
// io.EOF at a clean end of input. A truncated trailing block yields a
// Malformed result rather than an error.
func (v *ViennaReader) ReadResult() (ParseResult, error) {
	lines := v.nextLines(3)
	if err := v.sc.Err(); err != nil {
		return ParseResult{}, fmt.Errorf("vienna scan: %w", err)
	}
	if len(lines) == 0 {
		return ParseResult{}, io.EOF
	}
	return ParseViennaLines(lines, v.seqType), nil
}

// ReadRecord returns the next record, failing on any parse problem.
func (v *ViennaReader) ReadRecord() (*FoldRecord, error) {
	res, err := v.ReadResult()
	if err != nil {
		return nil, err
	}
	if res.Status != ParseOK {
		return nil, fmt.Errorf("line %d: %w", v.line, res.Err())
	}
	return res.Record, nil
}

// ViennaWriter emits fold records as 3-line Vienna blocks.
type ViennaWriter struct {
	w *bufio.Writer
}

func NewViennaWriter(w io.Writer) *ViennaWriter {
	return &ViennaWriter{w: bufio.NewWriter(w)}
}

func (w *ViennaWriter) WriteRecord(f *FoldRecord) error {
	_, err := w.w.WriteString(f.ToViennaString() + "\n")
	return err
}

func (w *ViennaWriter) Flush() error { return w.w.Flush() }

// CtReader yields fold records from connectivity-table blocks (beta).
type CtReader struct {
	sc      *bufio.Scanner
	seqType SeqType
	line    int
}

func NewCtReader(r io.Reader, seqType SeqType) *CtReader {
	return &CtReader{sc: newScanner(r), seqType: seqType}
}

// ReadResult reads one header line plus the base lines it announces.
func (c *CtReader) ReadResult() (ParseResult, error) {
	var header string
	for c.sc.Scan() {
		c.line++
		header = strings.TrimRight(c.sc.Text(), "\r\n")
		if strings.TrimSpace(header) != "" {
			break
		}
		header = ""
	}
	if err := c.sc.Err(); err != nil {
		return ParseResult{}, fmt.Errorf("ct scan: %w", err)
	}
	if header == "" {
		return ParseResult{}, io.EOF
	}
	lines := []string{header}
	fields := strings.Split(strings.TrimSpace(header), "\t")
	if n, err := strconv.Atoi(strings.TrimSpace(fields[0])); err == nil {
		for i := 0; i < n && c.sc.Scan(); i++ {
			c.line++
			lines = append(lines, strings.TrimRight(c.sc.Text(), "\r\n"))
		}
	}
	return ParseCtLines(lines, c.seqType), nil
}

// ReadRecord is the strict form of ReadResult.
func (c *CtReader) ReadRecord() (*FoldRecord, error) {
	res, err := c.ReadResult()
	if err != nil {
		return nil, err
	}
	if res.Status != ParseOK {
		return nil, fmt.Errorf("line %d: %w", c.line, res.Err())
	}
	return res.Record, nil
}
