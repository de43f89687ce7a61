// internal/writers/writers.go

// Package writers turns hyb records into serialized outputs. Writers
// own all presentation knowledge; core stays domain-only.
package writers

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"hybgo-core/hyb"
)

// RecordWriter consumes hyb records one at a time.
type RecordWriter interface {
	WriteRecord(rec *hyb.Record) error
	Flush() error
}

// Options configures construction of a record writer.
type Options struct {
	// ReorderFlags writes flags in canonical order.
	ReorderFlags bool
	// FastaMode selects the sequence written by the fasta format:
	// hybrid, seg1, seg2, mirna, or target.
	FastaMode string
	// FastaAnnotate adds dataset/span/reference annotation to fasta
	// identifiers.
	FastaAnnotate bool
	// AllowMiRNADimers lets the mirna/target fasta modes treat dimer
	// records as 5' miRNA.
	AllowMiRNADimers bool
}

// Record writer registry (format → constructor). Formats register in
// init blocks below.
var recordWriters = map[string]func(w io.Writer, opts Options) RecordWriter{}

// Register binds a format name to a writer constructor (last wins).
func Register(format string, fn func(io.Writer, Options) RecordWriter) {
	recordWriters[format] = fn
}

// Formats lists the registered format names.
func Formats() []string {
	names := make([]string, 0, len(recordWriters))
	for name := range recordWriters {
		names = append(names, name)
	}
	return names
}

// New builds a record writer for a registered format.
func New(format string, w io.Writer, opts Options) (RecordWriter, error) {
	fn, ok := recordWriters[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (no writer registered)", format)
	}
	return fn(w, opts), nil
}

func init() {
	Register("hyb", func(w io.Writer, opts Options) RecordWriter {
		return hyb.NewWriter(w, opts.ReorderFlags)
	})
	Register("csv", func(w io.Writer, opts Options) RecordWriter {
		return &csvWriter{w: bufio.NewWriter(w)}
	})
	Register("fasta", func(w io.Writer, opts Options) RecordWriter {
		return &fastaWriter{w: bufio.NewWriter(w), opts: opts}
	})
	Register("vienna", func(w io.Writer, opts Options) RecordWriter {
		return &viennaWriter{w: hyb.NewViennaWriter(w)}
	})
}

type csvWriter struct {
	w *bufio.Writer
}

func (c *csvWriter) WriteRecord(rec *hyb.Record) error {
	_, err := c.w.WriteString(rec.ToCSV() + "\n")
	return err
}

func (c *csvWriter) Flush() error { return c.w.Flush() }

type fastaWriter struct {
	w    *bufio.Writer
	opts Options
}

func (f *fastaWriter) WriteRecord(rec *hyb.Record) error {
	mode := f.opts.FastaMode
	if mode == "" {
		mode = "hybrid"
	}
	fr, err := rec.ToFastaRecord(mode, f.opts.FastaAnnotate, f.opts.AllowMiRNADimers)
	if err != nil {
		return err
	}
	_, err = f.w.WriteString(fr.String())
	return err
}

func (f *fastaWriter) Flush() error { return f.w.Flush() }

// viennaWriter emits each record's attached fold record; records
// without one are an error, since vienna output only makes sense for
// combined record streams.
type viennaWriter struct {
	w *hyb.ViennaWriter
}

func (v *viennaWriter) WriteRecord(rec *hyb.Record) error {
	if rec.Fold == nil {
		return fmt.Errorf("vienna output requires combined records; %q has no fold record", rec.ID)
	}
	return v.w.WriteRecord(rec.Fold)
}

func (v *viennaWriter) Flush() error { return v.w.Flush() }

// OpenOutput opens a destination path for writing: "-" (or empty) is
// stdout, a ".gz" suffix gets gzip compression. The caller closes the
// returned WriteCloser; stdout is wrapped with a no-op Close.
func OpenOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	fh, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		return &gzipFileWriter{gz: gzip.NewWriter(fh), fh: fh}, nil
	}
	return fh, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

type gzipFileWriter struct {
	gz *gzip.Writer
	fh *os.File
}

func (g *gzipFileWriter) Write(p []byte) (int, error) { return g.gz.Write(p) }

func (g *gzipFileWriter) Close() error {
	if err := g.gz.Close(); err != nil {
		_ = g.fh.Close()
		return err
	}
	return g.fh.Close()
}
