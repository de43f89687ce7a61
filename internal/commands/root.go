// internal/commands/root.go

// Package commands holds the hybgo command tree. Commands read
// settings through internal/config and drive the core packages;
// all domain behavior lives in hybgo-core.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hybgo/internal/config"
	"hybgo/internal/version"
	"hybgo/internal/writers"
)

// rootCmd represents the base command when called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "hybgo",
	Short: "Work with hyb and fold chimeric-read files",
	Long: `hybgo parses, validates, filters, and summarizes hyb-format
chimeric read alignments and their Vienna/CT secondary-structure
predictions, keeping the two streams consistent record by record.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(config.Setup)

	pf := rootCmd.PersistentFlags()
	pf.String("seq-type", "static", "fold sequence reconciliation: static or dynamic")
	pf.Bool("hybformat-id", false, "infer read_count from <read_id>_<read_count> identifiers")
	pf.Bool("hybformat-ref", false, "infer segment types from <gene>_<transcript>_<name>_<type> names")
	pf.Bool("allow-undefined-flags", false, "accept flags outside the defined vocabulary")
	pf.StringSlice("custom-flags", nil, "additional permitted flag keys")

	for flag, key := range map[string]string{
		"seq-type":              "input.seq-type",
		"hybformat-id":          "input.hybformat-id",
		"hybformat-ref":         "input.hybformat-ref",
		"allow-undefined-flags": "input.allow-undefined-flags",
		"custom-flags":          "input.custom-flags",
	} {
		if err := viper.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// Execute runs the command tree and returns a process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if writers.IsBrokenPipe(err) {
			return 0
		}
		fmt.Fprintln(os.Stderr, "hybgo:", err)
		return 1
	}
	return 0
}
