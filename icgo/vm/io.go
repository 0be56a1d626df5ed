package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// InputProvider supplies values to the input opcode. ReadValue may block.
type InputProvider interface {
	ReadValue() (int64, error)
}

// OutputSink receives values from the output opcode.
type OutputSink interface {
	WriteValue(v int64) error
}

var ErrNoInput = errors.New("no input available")

// ParseValue parses one input line.
func ParseValue(line string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed input line %q: %w", line, err)
	}
	return v, nil
}

// LineInput reads one decimal integer per line.
type LineInput struct {
	scanner *bufio.Scanner
}

func NewLineInput(r io.Reader) *LineInput {
	return &LineInput{scanner: bufio.NewScanner(r)}
}

func (li *LineInput) ReadValue() (int64, error) {
	if !li.scanner.Scan() {
		if err := li.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	return ParseValue(li.scanner.Text())
}

// SliceInput replays a fixed list of values, then reports io.EOF.
type SliceInput struct {
	Values []int64
}

func (si *SliceInput) ReadValue() (int64, error) {
	if len(si.Values) == 0 {
		return 0, io.EOF
	}
	v := si.Values[0]
	si.Values = si.Values[1:]
	return v, nil
}

type noInput struct{}

func (noInput) ReadValue() (int64, error) { return 0, ErrNoInput }

// NoInput fails every read. Used for programs that are not meant to read.
var NoInput InputProvider = noInput{}

// LineOutput writes one decimal integer per line.
type LineOutput struct {
	W io.Writer
}

func (lo *LineOutput) WriteValue(v int64) error {
	_, err := fmt.Fprintln(lo.W, v)
	return err
}

type SliceOutput struct {
	Values []int64
}

func (so *SliceOutput) WriteValue(v int64) error {
	so.Values = append(so.Values, v)
	return nil
}

type discardOutput struct{}

func (discardOutput) WriteValue(int64) error { return nil }

var DiscardOutput OutputSink = discardOutput{}

// MultiOutput duplicates each value to all sinks, stopping at the first error.
func MultiOutput(sinks ...OutputSink) OutputSink {
	return multiOutput(sinks)
}

type multiOutput []OutputSink

func (mo multiOutput) WriteValue(v int64) error {
	for _, s := range mo {
		if err := s.WriteValue(v); err != nil {
			return err
		}
	}
	return nil
}
