// internal/commands/filter.go
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"hybgo-core/hyb"
	"hybgo/internal/config"
	"hybgo/internal/writers"
)

var filterFlags = struct {
	include       []string
	exclude       []string
	matchAny      bool
	format        string
	fastaMode     string
	fastaAnnotate bool
	allowDimers   bool
	output        string
}{}

var filterCmd = &cobra.Command{
	Use:   "filter <records.hyb>",
	Short: "Keep or drop records by named predicates",
	Long: `Evaluate each record against predicate expressions and write the
survivors. A predicate is a property name, optionally followed by a
comma and a comparison string:

  mirna_dimer              miRNA-arrangement predicate
  seg1_type_is,rRNA        string-match predicate

Records must pass the --include predicates (all of them, or any with
--any) and none of the --exclude predicates. Output formats: hyb,
csv, fasta.`,
	Example: "  hybgo filter typed.hyb --include has_mirna --exclude target_suffix,rRNA",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFilter(args[0])
	},
}

func init() {
	fs := filterCmd.Flags()
	fs.StringArrayVarP(&filterFlags.include, "include", "i", nil, "predicate a record must satisfy")
	fs.StringArrayVarP(&filterFlags.exclude, "exclude", "x", nil, "predicate a record must not satisfy")
	fs.BoolVar(&filterFlags.matchAny, "any", false, "pass records satisfying any --include predicate")
	fs.StringVarP(&filterFlags.format, "format", "f", "hyb", "output format: hyb, csv, or fasta")
	fs.StringVar(&filterFlags.fastaMode, "fasta-mode", "hybrid",
		"fasta sequence: hybrid, seg1, seg2, mirna, or target")
	fs.BoolVar(&filterFlags.fastaAnnotate, "fasta-annotate", false,
		"annotate fasta identifiers with dataset, span, and reference")
	fs.BoolVar(&filterFlags.allowDimers, "allow-mirna-dimers", false,
		"treat miRNA dimers as 5' miRNA in fasta mirna/target modes")
	fs.StringVarP(&filterFlags.output, "out", "o", "-", "output path (\"-\" for stdout)")
	rootCmd.AddCommand(filterCmd)
}

// predicate is one parsed --include / --exclude expression.
type predicate struct {
	name    string
	compare string
}

func parsePredicates(exprs []string) ([]predicate, error) {
	var preds []predicate
	for _, expr := range exprs {
		name, compare, _ := strings.Cut(expr, ",")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("empty predicate expression %q", expr)
		}
		preds = append(preds, predicate{name: name, compare: compare})
	}
	return preds, nil
}

func evalPredicates(rec *hyb.Record, preds []predicate, any bool) (bool, error) {
	if len(preds) == 0 {
		return true, nil
	}
	for _, p := range preds {
		ok, err := rec.Prop(p.name, p.compare)
		if err != nil {
			return false, err
		}
		if any && ok {
			return true, nil
		}
		if !any && !ok {
			return false, nil
		}
	}
	return !any, nil
}

func runFilter(hybPath string) error {
	cfg := config.New()
	include, err := parsePredicates(filterFlags.include)
	if err != nil {
		return err
	}
	exclude, err := parsePredicates(filterFlags.exclude)
	if err != nil {
		return err
	}

	in, err := hyb.OpenPath(hybPath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	reader := hyb.NewReader(in, cfg.LineOptions())

	out, err := writers.OpenOutput(filterFlags.output)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	w, err := writers.New(filterFlags.format, out, writers.Options{
		ReorderFlags:     true,
		FastaMode:        filterFlags.fastaMode,
		FastaAnnotate:    filterFlags.fastaAnnotate,
		AllowMiRNADimers: filterFlags.allowDimers,
	})
	if err != nil {
		return err
	}

	for {
		rec, err := reader.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: %w", hybPath, err)
		}
		keep, err := evalPredicates(rec, include, filterFlags.matchAny)
		if err != nil {
			return fmt.Errorf("%s (id: %s): %w", hybPath, rec.ID, err)
		}
		if !keep {
			continue
		}
		// Exclusion predicates match with any semantics: one hit drops.
		drop, err := evalPredicates(rec, exclude, true)
		if err != nil {
			return fmt.Errorf("%s (id: %s): %w", hybPath, rec.ID, err)
		}
		if len(exclude) > 0 && drop {
			continue
		}
		if err := w.WriteRecord(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}
