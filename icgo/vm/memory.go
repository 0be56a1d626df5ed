package vm

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Memory is the flat cell array shared by instructions and data.
type Memory []int64

// ParseProgram reads a comma-separated list of signed decimal integers.
// No length or content validation is done: bad programs fault when run.
func ParseProgram(r io.Reader) (Memory, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return Memory{}, nil
	}
	fields := strings.Split(text, ",")
	mem := make(Memory, len(fields))
	for i, field := range fields {
		tok := strings.TrimSpace(field)
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, &ParseError{Index: i, Token: tok, Err: err}
		}
		mem[i] = v
	}
	return mem, nil
}

func LoadProgramFile(path string) (Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program %q: %w", path, err)
	}
	defer f.Close()
	mem, err := ParseProgram(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load program %q: %w", path, err)
	}
	return mem, nil
}

// Clone returns a copy that shares no storage with m.
func (m Memory) Clone() Memory {
	out := make(Memory, len(m))
	copy(out, m)
	return out
}

func (m Memory) InBounds(addr int64) bool {
	return addr >= 0 && addr < int64(len(m))
}

// Hash is the keccak256 digest of the big-endian encoding of every cell.
func (m Memory) Hash() common.Hash {
	buf := make([]byte, 0, 8*len(m))
	for _, v := range m {
		buf = binary.BigEndian.AppendUint64(buf, uint64(v))
	}
	return crypto.Keccak256Hash(buf)
}

func (m Memory) String() string {
	var sb strings.Builder
	for i, v := range m {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	return sb.String()
}
