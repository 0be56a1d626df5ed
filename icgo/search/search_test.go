package search

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"github.com/protolambda/intcode/icgo/vm"
)

// pad extends prog with zero cells so every noun/verb in [0, 99) is a valid address.
func pad(prog ...int64) vm.Memory {
	mem := make(vm.Memory, 100)
	copy(mem, prog)
	return mem
}

// linearProgram leaves 100*noun + verb at address 0.
func linearProgram() vm.Memory {
	mem := pad(
		1, 0, 0, 3, // junk add through the patched cells
		2, 1, 20, 0, // mem[0] = noun * mem[20]
		1, 0, 2, 0, // mem[0] += verb
		99,
	)
	mem[20] = 100
	return mem
}

// sumProgram leaves noun + verb at address 0.
func sumProgram() vm.Memory {
	return pad(
		1, 0, 0, 3,
		1, 1, 2, 0,
		99,
	)
}

// faultyProgram adds mem[noun] and mem[verb]; any address past 4 is out of bounds.
func faultyProgram() vm.Memory {
	return vm.Memory{1, 0, 0, 0, 99}
}

func TestProbe(t *testing.T) {
	base := linearProgram()
	cfg := DefaultConfig(0)
	out, err := Probe(context.Background(), base, &cfg, 12, 2)
	require.NoError(t, err)
	require.Equal(t, int64(1202), out)
	require.Equal(t, linearProgram(), base, "probe must not modify the base program")
}

func TestProbeOutputOutOfBounds(t *testing.T) {
	cfg := DefaultConfig(0)
	cfg.OutputAddr = 500
	_, err := Probe(context.Background(), linearProgram(), &cfg, 12, 2)
	var oob *vm.OutOfBoundsError
	require.ErrorAs(t, err, &oob)
	require.Equal(t, int64(500), oob.Addr)
	require.Equal(t, 100, oob.Len)
}

func TestSearch(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			testSearch(t, workers)
		})
	}
}

func testSearch(t *testing.T, workers int) {
	cfg := DefaultConfig(0)
	cfg.Workers = workers
	t.Run("linear", func(t *testing.T) {
		cfg := cfg
		cfg.Target = 1202
		res, err := Search(context.Background(), linearProgram(), cfg)
		require.NoError(t, err)
		require.Equal(t, int64(12), res.Noun)
		require.Equal(t, int64(2), res.Verb)
		require.Equal(t, int64(1202), res.Answer)
	})
	t.Run("first match in row-major order", func(t *testing.T) {
		cfg := cfg
		cfg.Target = 5
		res, err := Search(context.Background(), sumProgram(), cfg)
		require.NoError(t, err)
		require.Equal(t, int64(0), res.Noun)
		require.Equal(t, int64(5), res.Verb)
		require.Equal(t, int64(5), res.Answer)
	})
	t.Run("not found", func(t *testing.T) {
		cfg := cfg
		cfg.Target = 1000
		_, err := Search(context.Background(), sumProgram(), cfg)
		require.ErrorIs(t, err, ErrNotFound)
	})
	t.Run("fault aborts", func(t *testing.T) {
		cfg := cfg
		cfg.Target = 1000
		_, err := Search(context.Background(), faultyProgram(), cfg)
		var pErr *ProbeError
		require.ErrorAs(t, err, &pErr)
		require.Equal(t, int64(0), pErr.Noun)
		require.Equal(t, int64(5), pErr.Verb)
		require.ErrorIs(t, err, vm.ErrOutOfBounds)
	})
	t.Run("match before fault", func(t *testing.T) {
		cfg := cfg
		cfg.Target = 2
		res, err := Search(context.Background(), faultyProgram(), cfg)
		require.NoError(t, err)
		require.Equal(t, int64(0), res.Noun)
		require.Equal(t, int64(0), res.Verb)
	})
	t.Run("skip faults", func(t *testing.T) {
		cfg := cfg
		cfg.Target = 198
		cfg.SkipFaults = true
		res, err := Search(context.Background(), faultyProgram(), cfg)
		require.NoError(t, err)
		require.Equal(t, int64(4), res.Noun)
		require.Equal(t, int64(4), res.Verb)
		require.Equal(t, int64(404), res.Answer)
		require.NotZero(t, res.Faults)
	})
}

func TestSearchSerialCounts(t *testing.T) {
	cfg := DefaultConfig(198)
	cfg.SkipFaults = true
	res, err := Search(context.Background(), faultyProgram(), cfg)
	require.NoError(t, err)
	require.Equal(t, uint64(4*99+5), res.Probes)
	require.Equal(t, uint64(4*94), res.Faults)
}

func TestSearchRanges(t *testing.T) {
	cfg := DefaultConfig(5)
	cfg.Noun = Range{Min: 1, Max: 3}
	res, err := Search(context.Background(), sumProgram(), cfg)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Noun)
	require.Equal(t, int64(4), res.Verb)

	cfg.Noun = Range{Min: 3, Max: 3}
	_, err = Search(context.Background(), sumProgram(), cfg)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSearchPatchOutOfBounds(t *testing.T) {
	_, err := Search(context.Background(), vm.Memory{1, 99}, DefaultConfig(0))
	require.ErrorIs(t, err, vm.ErrOutOfBounds)
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Search(ctx, sumProgram(), DefaultConfig(5))
	require.ErrorIs(t, err, context.Canceled)

	cfg := DefaultConfig(5)
	cfg.Workers = 3
	_, err = Search(ctx, sumProgram(), cfg)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSearchGridTooLarge(t *testing.T) {
	for _, workers := range []int{1, 4} {
		cfg := DefaultConfig(5)
		cfg.Workers = workers
		cfg.Noun = Range{Min: 0, Max: math.MaxInt64 / 2}
		cfg.Verb = Range{Min: 0, Max: 8}
		_, err := Search(context.Background(), sumProgram(), cfg)
		require.ErrorIs(t, err, ErrGridTooLarge, "workers=%d", workers)

		cfg.Noun = Range{Min: math.MinInt64, Max: math.MaxInt64}
		cfg.Verb = Range{Min: 0, Max: 1}
		_, err = Search(context.Background(), sumProgram(), cfg)
		require.ErrorIs(t, err, ErrGridTooLarge, "workers=%d", workers)
	}
}

func TestSearchLargeGrid(t *testing.T) {
	for _, workers := range []int{1, 4} {
		cfg := DefaultConfig(5)
		cfg.Workers = workers
		cfg.Noun = Range{Min: 0, Max: math.MaxInt64 / 16}
		cfg.Verb = Range{Min: 0, Max: 8}
		res, err := Search(context.Background(), sumProgram(), cfg)
		require.NoError(t, err, "workers=%d", workers)
		require.Equal(t, int64(0), res.Noun)
		require.Equal(t, int64(5), res.Verb)
	}
}

func TestSearcherLogsRuns(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.SetHandler(log.LvlFilterHandler(log.LvlDebug, log.StreamHandler(&buf, log.LogfmtFormat())))

	cfg := DefaultConfig(0)
	res, err := NewSearcher(cfg, logger).Search(context.Background(), sumProgram())
	require.NoError(t, err)
	require.Equal(t, int64(0), res.Answer)
	require.Contains(t, buf.String(), "vm halted")
	require.Contains(t, buf.String(), "search complete")
}
