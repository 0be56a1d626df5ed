package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/log"

	"github.com/protolambda/intcode/icgo/vm"
)

func Logger(w io.Writer, lvl log.Lvl) log.Logger {
	h := log.StreamHandler(w, log.LogfmtFormat())
	h = log.SyncHandler(h)
	h = log.LvlFilterHandler(lvl, h)
	l := log.New()
	l.SetHandler(h)
	return l
}

func ParseLevel(s string) (log.Lvl, error) {
	if s == "" {
		return log.LvlInfo, nil
	}
	lvl, err := log.LvlFromString(s)
	if err != nil {
		return 0, fmt.Errorf("unknown log level %q: %w", s, err)
	}
	return lvl, nil
}

// LoggingSink mirrors every value the program outputs into the log.
type LoggingSink struct {
	Name string
	Log  log.Logger
}

var _ vm.OutputSink = (*LoggingSink)(nil)

func (ls *LoggingSink) WriteValue(v int64) error {
	ls.Log.Info("output", "sink", ls.Name, "value", v)
	return nil
}

// Count to lazy-format large counters for logging
type Count uint64

func (c Count) String() string {
	return humanize.Comma(int64(c))
}

func (c Count) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
