// internal/commands/evaltype.go
package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"hybgo-core/hyb"
	"hybgo-core/typefinder"
	"hybgo/internal/config"
	"hybgo/internal/writers"
)

var evaltypeFlags = struct {
	method       string
	legendFile   string
	idMapFiles   []string
	allowUnknown bool
	evalMiRNA    bool
	output       string
}{}

var evaltypeCmd = &cobra.Command{
	Use:   "evaltype <records.hyb>",
	Short: "Assign segment types and rewrite the hyb file",
	Long: `Classify each record's two segments with the selected method and
write the records back out with seg1_type / seg2_type flags set.

Methods:
  hybformat     last "_"-separated component of the reference name
  string-match  pattern legend CSV (--legend), lines
                "search_type,search_string,seg_type"
  id-map        reference-to-type CSV files (--id-map, repeatable)`,
	Example: "  hybgo evaltype sample.hyb --method string-match --legend legend.csv -o typed.hyb",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEvaltype(args[0])
	},
}

func init() {
	fs := evaltypeCmd.Flags()
	fs.StringVarP(&evaltypeFlags.method, "method", "m", "hybformat",
		"type-finding method: hybformat, string-match, or id-map")
	fs.StringVar(&evaltypeFlags.legendFile, "legend", "", "string-match pattern legend CSV")
	fs.StringSliceVar(&evaltypeFlags.idMapFiles, "id-map", nil, "reference-to-type CSV file")
	fs.BoolVar(&evaltypeFlags.allowUnknown, "allow-unknown", false,
		"type unidentifiable segments \"unknown\" instead of failing")
	fs.BoolVar(&evaltypeFlags.evalMiRNA, "mirna", false,
		"also classify the miRNA arrangement (miRNA_seg flag)")
	fs.StringVarP(&evaltypeFlags.output, "out", "o", "-", "output path (\"-\" for stdout)")
	rootCmd.AddCommand(evaltypeCmd)
}

// buildFinder constructs the configured type-finding strategy.
func buildFinder() (hyb.TypeFinder, error) {
	switch evaltypeFlags.method {
	case "hybformat":
		return typefinder.Hybformat{}, nil
	case "string-match":
		if evaltypeFlags.legendFile == "" {
			return nil, fmt.Errorf("the string-match method requires --legend")
		}
		params, err := typefinder.LoadStringMatchParams(evaltypeFlags.legendFile)
		if err != nil {
			return nil, err
		}
		return typefinder.StringMatch{Params: params}, nil
	case "id-map":
		if len(evaltypeFlags.idMapFiles) == 0 {
			return nil, fmt.Errorf("the id-map method requires --id-map")
		}
		return typefinder.LoadIDMap(evaltypeFlags.idMapFiles...)
	}
	return nil, fmt.Errorf("unrecognized method %q (allowed: hybformat, string-match, id-map)",
		evaltypeFlags.method)
}

func runEvaltype(hybPath string) error {
	cfg := config.New()
	finder, err := buildFinder()
	if err != nil {
		return err
	}

	in, err := hyb.OpenPath(hybPath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	reader := hyb.NewReader(in, cfg.LineOptions())

	out, err := writers.OpenOutput(evaltypeFlags.output)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	w := hyb.NewWriter(out, true)

	mirnaTypes := cfg.Analysis.MiRNATypes
	for {
		rec, err := reader.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: %w", hybPath, err)
		}
		if err := rec.EvalTypes(finder, evaltypeFlags.allowUnknown); err != nil {
			return fmt.Errorf("%s (id: %s): %w", hybPath, rec.ID, err)
		}
		if evaltypeFlags.evalMiRNA {
			if err := rec.EvalMiRNA(false, mirnaTypes); err != nil {
				return fmt.Errorf("%s (id: %s): %w", hybPath, rec.ID, err)
			}
		}
		if err := w.WriteRecord(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}
