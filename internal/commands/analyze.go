// internal/commands/analyze.go
package commands

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"hybgo-core/analysis"
	"hybgo-core/hyb"
	"hybgo-core/pair"
	"hybgo-core/typefinder"
	"hybgo/internal/config"
	"hybgo/internal/writers"
)

var analyzeFlags = struct {
	analyses  []string
	foldFile  string
	ctFormat  bool
	outPrefix string
	quiet     bool
}{}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <records.hyb>",
	Short: "Aggregate statistics over a hyb file",
	Long: `Run one or more aggregations over a hyb file and write each as a
delimited table:

  type     hybrids per segment-type pairing
  mirna    hybrids per miRNA class (5p / 3p / dimer / none)
  target   targets per miRNA
  fold     miRNA base-pairing by position (requires --fold)

Records missing segment types or miRNA state are evaluated on the fly
from reference identifiers. With --fold the hyb and fold files are
iterated in lockstep and fold records attached before aggregation.
Each table is written to <prefix>_<analysis>.csv, or to stdout when
the prefix is "-".`,
	Example: "  hybgo analyze sample.hyb -a type -a mirna -p sample",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, args[0])
	},
}

func init() {
	fs := analyzeCmd.Flags()
	fs.StringArrayVarP(&analyzeFlags.analyses, "analysis", "a", []string{"type"},
		"analysis to run: type, mirna, target, or fold (repeatable)")
	fs.StringVar(&analyzeFlags.foldFile, "fold", "", "vienna/ct fold file paired with the hyb file")
	fs.BoolVar(&analyzeFlags.ctFormat, "ct", false, "read the fold file as connectivity-table format")
	fs.StringVarP(&analyzeFlags.outPrefix, "out-prefix", "p", "-",
		"output path prefix (\"-\" for stdout)")
	fs.BoolVarP(&analyzeFlags.quiet, "quiet", "q", false, "suppress per-pair warnings")
	rootCmd.AddCommand(analyzeCmd)
}

// aggregation is the shared surface of the analysis tallies.
type aggregation interface {
	Add(rec *hyb.Record) error
	Write(w io.Writer) error
}

func buildAggregations(names []string, s analysis.Settings) (map[string]aggregation, error) {
	aggs := map[string]aggregation{}
	for _, name := range names {
		if _, dup := aggs[name]; dup {
			continue
		}
		switch name {
		case "type":
			aggs[name] = analysis.NewTypeCounts(s)
		case "mirna":
			aggs[name] = analysis.NewMiRNACounts(s)
		case "target":
			aggs[name] = analysis.NewTargetCounts(s)
		case "fold":
			if analyzeFlags.foldFile == "" {
				return nil, fmt.Errorf("the fold analysis requires --fold")
			}
			aggs[name] = analysis.NewFoldStats(s)
		default:
			return nil, fmt.Errorf("unknown analysis %q (allowed: type, mirna, target, fold)", name)
		}
	}
	return aggs, nil
}

func runAnalyze(cmd *cobra.Command, hybPath string) error {
	cfg := config.New()
	settings, err := cfg.AnalysisSettings()
	if err != nil {
		return err
	}
	aggs, err := buildAggregations(analyzeFlags.analyses, settings)
	if err != nil {
		return err
	}

	in, err := hyb.OpenPath(hybPath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	reader := hyb.NewReader(in, cfg.LineOptions())

	finder := typefinder.Hybformat{}
	addRecord := func(rec *hyb.Record) error {
		if ok, _ := rec.IsSet("eval_types"); !ok {
			if err := rec.EvalTypes(finder, true); err != nil {
				return err
			}
		}
		if ok, _ := rec.IsSet("eval_mirna"); !ok {
			if err := rec.EvalMiRNA(false, settings.MiRNATypes); err != nil {
				return err
			}
		}
		for _, agg := range aggs {
			if err := agg.Add(rec); err != nil {
				return err
			}
		}
		return nil
	}

	if analyzeFlags.foldFile == "" {
		for {
			rec, err := reader.ReadRecord()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("%s: %w", hybPath, err)
			}
			if err := addRecord(rec); err != nil {
				return err
			}
		}
	} else {
		seqType, err := cfg.SeqType()
		if err != nil {
			return err
		}
		foldIn, err := hyb.OpenPath(analyzeFlags.foldFile)
		if err != nil {
			return err
		}
		defer func() { _ = foldIn.Close() }()
		var foldSrc pair.FoldSource
		if analyzeFlags.ctFormat {
			foldSrc = hyb.NewCtReader(foldIn, seqType)
		} else {
			foldSrc = hyb.NewViennaReader(foldIn, seqType)
		}
		logger := log.New(cmd.ErrOrStderr(), "", 0)
		if analyzeFlags.quiet {
			logger = log.New(io.Discard, "", 0)
		}
		it, err := pair.New(reader, foldSrc, true, cfg.PairSettings(), logger)
		if err != nil {
			return err
		}
		for {
			item, err := it.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return err
			}
			if err := addRecord(item.Hyb); err != nil {
				return err
			}
		}
	}

	return writeAggregations(cmd, aggs)
}

func writeAggregations(cmd *cobra.Command, aggs map[string]aggregation) error {
	for _, name := range analyzeFlags.analyses {
		agg, ok := aggs[name]
		if !ok {
			continue
		}
		delete(aggs, name)
		if analyzeFlags.outPrefix == "" || analyzeFlags.outPrefix == "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", name)
			if err := agg.Write(cmd.OutOrStdout()); err != nil {
				return err
			}
			continue
		}
		path := fmt.Sprintf("%s_%s.csv", analyzeFlags.outPrefix, name)
		out, err := writers.OpenOutput(path)
		if err != nil {
			return err
		}
		if err := agg.Write(out); err != nil {
			_ = out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
	}
	return nil
}
