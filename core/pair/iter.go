// core/pair/iter.go
package pair

import (
	"fmt"
	"io"
	"log"

	"hybgo-core/hyb"
	"hybgo-core/hyberr"
)

// Error modes for consistency-check failures during paired iteration.
const (
	ModeRaise      = "raise"
	ModeWarnReturn = "warn_return"
	ModeWarnSkip   = "warn_skip"
	ModeSkip       = "skip"
	ModeReturn     = "return"
)

// Consistency-check names for the enabled-checks set.
const (
	CheckHybRecordIndel = "hybrecord_indel"
	CheckFoldNoFold     = "foldrecord_nofold"
	CheckMaxMismatch    = "max_mismatch"
	CheckEnergyMismatch = "energy_mismatch"
)

// Settings configures paired iteration. Unset ErrorChecks and
// ErrorMode are filled by DefaultSettings.
type Settings struct {
	// ErrorChecks is the enabled subset of consistency checks.
	ErrorChecks []string
	// ErrorMode disposes of check failures: raise, warn_return,
	// warn_skip, skip, or return.
	ErrorMode string
	// MaxSequentialSkips bounds skip-and-retry runs; exceeding it is
	// treated as stream desynchronization and fails the iteration.
	// Zero tolerates no skips; a negative value selects the default.
	MaxSequentialSkips int
	// AllowedMismatches is the hyb/fold sequence reconciliation
	// tolerance used by the max_mismatch check.
	AllowedMismatches int
}

// DefaultSettings enables all checks, warns and skips failing pairs,
// and allows up to 100 sequential skips.
func DefaultSettings() Settings {
	return Settings{
		ErrorChecks: []string{
			CheckHybRecordIndel, CheckFoldNoFold,
			CheckMaxMismatch, CheckEnergyMismatch,
		},
		ErrorMode:          ModeWarnSkip,
		MaxSequentialSkips: 100,
	}
}

// HybSource produces one hyb record per call, io.EOF at end of input.
type HybSource interface {
	ReadRecord() (*hyb.Record, error)
}

// FoldSource produces one lenient fold-parse result per call, io.EOF
// at end of input. Lenient reading lets the iterator apply its own
// policy to fold-parse problems.
type FoldSource interface {
	ReadResult() (hyb.ParseResult, error)
}

// Item is one output of paired iteration. With combine, Fold is nil
// and the fold record is attached to Hyb instead. Note carries the
// consistency diagnostic under the return-flavored error modes.
type Item struct {
	Hyb  *hyb.Record
	Fold *hyb.FoldRecord
	Note string
}

// Iter drives synchronized reading of a hyb source and a fold source,
// reconciling each pair and applying the configured error policy.
// It borrows both sources and closes neither.
type Iter struct {
	hybSrc   HybSource
	foldSrc  FoldSource
	combine  bool
	settings Settings
	logger   *log.Logger

	// Cumulative counters, surfaced by Report.
	TotalReadAttempts      int
	HybRecordReadAttempts  int
	FoldRecordReadAttempts int
	PairSkips              int

	sequentialSkips int
	lastHyb         *hyb.Record
	lastFold        *hyb.FoldRecord
}

// New validates the sources and error mode and builds an Iter.
// A nil logger uses the standard logger for warn modes.
func New(hybSrc HybSource, foldSrc FoldSource, combine bool, settings Settings, logger *log.Logger) (*Iter, error) {
	if hybSrc == nil {
		return nil, hyberr.Iterf("paired iteration requires a hyb record source")
	}
	if foldSrc == nil {
		return nil, hyberr.Iterf("paired iteration requires a fold record source")
	}
	switch settings.ErrorMode {
	case "":
		settings.ErrorMode = ModeWarnSkip
	case ModeRaise, ModeWarnReturn, ModeWarnSkip, ModeSkip, ModeReturn:
	default:
		return nil, hyberr.Iterf("unrecognized iter error mode %q", settings.ErrorMode)
	}
	if settings.ErrorChecks == nil {
		settings.ErrorChecks = DefaultSettings().ErrorChecks
	}
	if settings.MaxSequentialSkips < 0 {
		settings.MaxSequentialSkips = DefaultSettings().MaxSequentialSkips
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Iter{
		hybSrc:   hybSrc,
		foldSrc:  foldSrc,
		combine:  combine,
		settings: settings,
		logger:   logger,
	}, nil
}

func (it *Iter) checkEnabled(name string) bool {
	for _, c := range it.settings.ErrorChecks {
		if c == name {
			return true
		}
	}
	return false
}

// Next reads and reconciles the next pair. End of either source is a
// normal stop (io.EOF). Under skip modes, failing pairs are retried
// with the next pair, bounded by MaxSequentialSkips.
func (it *Iter) Next() (Item, error) {
	for {
		it.TotalReadAttempts++
		it.HybRecordReadAttempts++
		hr, err := it.hybSrc.ReadRecord()
		if err == io.EOF {
			return Item{}, io.EOF
		}
		if err != nil {
			return Item{}, it.fatalf("hyb record read failed: %v", err)
		}

		it.FoldRecordReadAttempts++
		res, err := it.foldSrc.ReadResult()
		if err == io.EOF {
			return Item{}, io.EOF
		}
		if err != nil {
			return Item{}, it.fatalf("fold record read failed: %v", err)
		}
		fr := res.Record
		note := it.checkPair(hr, res)

		if note == "" {
			return it.emit(hr, fr, "")
		}

		switch it.settings.ErrorMode {
		case ModeRaise:
			return Item{}, it.fatalf("%s", note)
		case ModeWarnReturn:
			it.logger.Printf("WARN: %s", note)
			return it.emit(hr, fr, note)
		case ModeReturn:
			return it.emit(hr, fr, note)
		case ModeWarnSkip:
			it.logger.Printf("WARN: skipping record pair: %s", note)
			fallthrough
		case ModeSkip:
			it.sequentialSkips++
			it.PairSkips++
			if it.sequentialSkips > it.settings.MaxSequentialSkips {
				return Item{}, it.fatalf(
					"exceeded maximum of %d sequential skips; sources are likely desynchronized (last: %s)",
					it.settings.MaxSequentialSkips, note)
			}
		}
	}
}

// checkPair runs the enabled consistency checks in fixed order and
// returns the first triggered diagnostic.
func (it *Iter) checkPair(hr *hyb.Record, res hyb.ParseResult) string {
	switch res.Status {
	case hyb.ParseNoEnergy:
		return fmt.Sprintf("fold record has no energy value (hyb id: %s):\n%s", hr.ID, res.Raw)
	case hyb.ParseNoFold, hyb.ParseMalformed:
		if res.Status == hyb.ParseNoFold && !it.checkEnabled(CheckFoldNoFold) {
			return ""
		}
		return fmt.Sprintf("fold record read failed (%s, hyb id: %s): %s\n%s",
			res.Status, hr.ID, res.Reason, res.Raw)
	}
	fr := res.Record

	if it.checkEnabled(CheckHybRecordIndel) {
		if hr.Seg1.HasIndels() || hr.Seg2.HasIndels() {
			return fmt.Sprintf(
				"hyb record has segment insertions/deletions preventing sequence match (id: %s)", hr.ID)
		}
	}
	if it.checkEnabled(CheckMaxMismatch) {
		count, err := fr.CountHybRecordMismatches(hr)
		if err != nil {
			return fmt.Sprintf("hyb/fold mismatch counting failed (id: %s): %v", hr.ID, err)
		}
		if count > it.settings.AllowedMismatches {
			return fmt.Sprintf(
				"hyb/fold sequence mismatch: %d mismatches > %d allowed (id: %s)\n  fold seq: %s",
				count, it.settings.AllowedMismatches, hr.ID, fr.Seq)
		}
	}
	if it.checkEnabled(CheckEnergyMismatch) {
		if hr.Energy != "" && fr.Energy != "" && hr.Energy != fr.Energy {
			return fmt.Sprintf(
				"hyb record energy (%s) does not match fold record energy (%s) (id: %s)",
				hr.Energy, fr.Energy, hr.ID)
		}
	}
	return ""
}

// emit yields a pair, combining when configured, and resets the
// sequential-skip counter.
func (it *Iter) emit(hr *hyb.Record, fr *hyb.FoldRecord, note string) (Item, error) {
	if it.combine && fr != nil {
		if err := hr.SetFoldRecord(fr, true, it.settings.AllowedMismatches); err != nil {
			return Item{}, it.fatalf("combining records failed (id: %s): %v", hr.ID, err)
		}
		it.sequentialSkips = 0
		it.lastHyb, it.lastFold = hr, fr
		return Item{Hyb: hr, Note: note}, nil
	}
	it.sequentialSkips = 0
	it.lastHyb, it.lastFold = hr, fr
	return Item{Hyb: hr, Fold: fr, Note: note}, nil
}

// fatalf builds an iteration error, appending the last successful pair
// for context when one exists.
func (it *Iter) fatalf(format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	if it.lastHyb != nil {
		msg += fmt.Sprintf("\n  last successful hyb record: %s", it.lastHyb.ID)
	}
	return hyberr.Iterf("%s", msg)
}
