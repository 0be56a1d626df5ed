// Package search brute-forces the noun/verb grid of an intcode program,
// treating one run of the program as a function of the two patched cells.
package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/protolambda/intcode/icgo/intcode"
	"github.com/protolambda/intcode/icgo/vm"
)

var (
	ErrNotFound     = errors.New("no noun/verb pair produces the target")
	ErrGridTooLarge = errors.New("search grid too large")
)

// Range is the half-open interval [Min, Max).
type Range struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Len is computed in uint64, since Max-Min overflows int64 for ranges that span zero widely.
func (r Range) Len() uint64 {
	if r.Max <= r.Min {
		return 0
	}
	return uint64(r.Max) - uint64(r.Min)
}

type Config struct {
	Target int64

	Noun Range
	Verb Range

	NounAddr   int64
	VerbAddr   int64
	OutputAddr int64

	// Workers is the number of concurrent probes. Values below 2 run serially.
	Workers int
	// SkipFaults continues past probes that fault instead of aborting the search.
	SkipFaults bool
	// StepLimit bounds each probe's execution. 0 means no limit.
	StepLimit uint64
}

func DefaultConfig(target int64) Config {
	return Config{
		Target:     target,
		Noun:       Range{Min: 0, Max: 99},
		Verb:       Range{Min: 0, Max: 99},
		NounAddr:   intcode.NounAddr,
		VerbAddr:   intcode.VerbAddr,
		OutputAddr: intcode.OutputAddr,
		Workers:    1,
	}
}

type Result struct {
	Noun int64 `json:"noun"`
	Verb int64 `json:"verb"`
	// Answer is 100*Noun + Verb.
	Answer int64 `json:"answer"`

	Probes uint64 `json:"probes"`
	Faults uint64 `json:"faults"`
}

// ProbeError attributes a VM fault to the grid cell that caused it.
type ProbeError struct {
	Noun int64
	Verb int64
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe noun=%d verb=%d: %v", e.Noun, e.Verb, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Probe runs a patched clone of base and returns the value at the output address.
// base is never modified.
func Probe(ctx context.Context, base vm.Memory, cfg *Config, noun, verb int64) (int64, error) {
	return probe(ctx, base, cfg, noun, verb, nil)
}

func probe(ctx context.Context, base vm.Memory, cfg *Config, noun, verb int64, logger log.Logger) (int64, error) {
	if !base.InBounds(cfg.OutputAddr) {
		return 0, &vm.OutOfBoundsError{Addr: cfg.OutputAddr, Len: len(base)}
	}
	state := vm.NewVMState(base.Clone())
	if err := state.Patch(cfg.NounAddr, noun); err != nil {
		return 0, err
	}
	if err := state.Patch(cfg.VerbAddr, verb); err != nil {
		return 0, err
	}
	m := vm.NewInstrumentedState(state, vm.NoInput, vm.DiscardOutput, logger)
	m.StepLimit = cfg.StepLimit
	if err := m.Run(ctx); err != nil {
		return 0, err
	}
	return state.Memory[cfg.OutputAddr], nil
}

type Searcher struct {
	cfg Config
	log log.Logger
}

func NewSearcher(cfg Config, logger log.Logger) *Searcher {
	if logger == nil {
		logger = log.Root()
	}
	return &Searcher{cfg: cfg, log: logger}
}

// Search enumerates nouns in the outer loop and verbs in the inner loop, both ascending,
// and returns the first pair whose output equals the target.
func Search(ctx context.Context, base vm.Memory, cfg Config) (*Result, error) {
	return NewSearcher(cfg, nil).Search(ctx, base)
}

func (s *Searcher) Search(ctx context.Context, base vm.Memory) (*Result, error) {
	cfg := &s.cfg
	for _, addr := range []int64{cfg.NounAddr, cfg.VerbAddr, cfg.OutputAddr} {
		if !base.InBounds(addr) {
			return nil, &vm.OutOfBoundsError{Addr: addr, Len: len(base)}
		}
	}
	// cell indices, plus one overshoot per worker, must fit in an int64
	hi, total := bits.Mul64(cfg.Noun.Len(), cfg.Verb.Len())
	if hi != 0 || total > math.MaxInt64-uint64(max(cfg.Workers, 1)) {
		return nil, fmt.Errorf("%w: %d nouns by %d verbs", ErrGridTooLarge, cfg.Noun.Len(), cfg.Verb.Len())
	}
	s.log.Info("starting search",
		"target", cfg.Target,
		"cells", humanize.Comma(int64(total)),
		"workers", cfg.Workers,
		"skipFaults", cfg.SkipFaults,
	)

	var (
		res *Result
		err error
	)
	if cfg.Workers > 1 {
		res, err = s.searchParallel(ctx, base)
	} else {
		res, err = s.searchSerial(ctx, base)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("search complete",
		"noun", res.Noun, "verb", res.Verb, "answer", res.Answer,
		"probes", humanize.Comma(int64(res.Probes)), "faults", res.Faults)
	return res, nil
}

// tryCell runs one cell. A nil error with matched false means the cell was skipped or missed.
func (s *Searcher) tryCell(ctx context.Context, base vm.Memory, noun, verb int64) (matched bool, faulted bool, err error) {
	out, err := probe(ctx, base, &s.cfg, noun, verb, s.log)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, false, ctxErr
		}
		if s.cfg.SkipFaults {
			s.log.Warn("probe faulted", "noun", noun, "verb", verb, "err", err)
			return false, true, nil
		}
		return false, true, &ProbeError{Noun: noun, Verb: verb, Err: err}
	}
	return out == s.cfg.Target, false, nil
}

func (s *Searcher) searchSerial(ctx context.Context, base vm.Memory) (*Result, error) {
	cfg := &s.cfg
	var probes, faults uint64
	for noun := cfg.Noun.Min; noun < cfg.Noun.Max; noun++ {
		for verb := cfg.Verb.Min; verb < cfg.Verb.Max; verb++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			probes++
			matched, faulted, err := s.tryCell(ctx, base, noun, verb)
			if faulted {
				faults++
			}
			if err != nil {
				return nil, err
			}
			if matched {
				return newResult(noun, verb, probes, faults), nil
			}
		}
	}
	s.log.Warn("search exhausted", "probes", humanize.Comma(int64(probes)), "faults", faults)
	return nil, ErrNotFound
}

// searchParallel fans rows out to workers. Every cell gets its own clone, and the
// outcome is the earliest match or fault in enumeration order, same as the serial search.
func (s *Searcher) searchParallel(ctx context.Context, base vm.Memory) (*Result, error) {
	cfg := &s.cfg
	width := int64(cfg.Verb.Len())
	cells := int64(cfg.Noun.Len()) * width

	var (
		mu       sync.Mutex
		best     = cells // index of the earliest decisive cell, cells if none yet
		bestErr  error
		probes   atomic.Uint64
		faults   atomic.Uint64
		nextCell atomic.Int64
	)
	decided := func(i int64) bool {
		mu.Lock()
		defer mu.Unlock()
		return i > best
	}
	decide := func(i int64, err error) {
		mu.Lock()
		defer mu.Unlock()
		if i < best {
			best = i
			bestErr = err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			for {
				i := nextCell.Add(1) - 1
				if i >= cells || decided(i) {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				noun := cfg.Noun.Min + i/width
				verb := cfg.Verb.Min + i%width
				probes.Add(1)
				matched, faulted, err := s.tryCell(gctx, base, noun, verb)
				if faulted {
					faults.Add(1)
				}
				var pErr *ProbeError
				switch {
				case errors.As(err, &pErr):
					decide(i, err)
				case err != nil:
					return err
				case matched:
					decide(i, nil)
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if best == cells {
		s.log.Warn("search exhausted", "probes", humanize.Comma(int64(probes.Load())), "faults", faults.Load())
		return nil, ErrNotFound
	}
	if bestErr != nil {
		return nil, bestErr
	}
	return newResult(cfg.Noun.Min+best/width, cfg.Verb.Min+best%width, probes.Load(), faults.Load()), nil
}

func newResult(noun, verb int64, probes, faults uint64) *Result {
	return &Result{
		Noun:   noun,
		Verb:   verb,
		Answer: 100*noun + verb,
		Probes: probes,
		Faults: faults,
	}
}
