package vm

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProgram(t *testing.T) {
	t.Run("trims", func(t *testing.T) {
		mem, err := ParseProgram(strings.NewReader(" 1, -2 ,3,99\n"))
		require.NoError(t, err)
		require.Equal(t, Memory{1, -2, 3, 99}, mem)
		require.Equal(t, "1,-2,3,99", mem.String())
	})
	t.Run("empty", func(t *testing.T) {
		mem, err := ParseProgram(strings.NewReader("\n"))
		require.NoError(t, err)
		require.Empty(t, mem)
	})
	t.Run("bad token", func(t *testing.T) {
		_, err := ParseProgram(strings.NewReader("1,2,x,99"))
		var pErr *ParseError
		require.ErrorAs(t, err, &pErr)
		require.Equal(t, 2, pErr.Index)
		require.Equal(t, "x", pErr.Token)
		require.ErrorIs(t, err, strconv.ErrSyntax)
	})
	t.Run("trailing comma", func(t *testing.T) {
		_, err := ParseProgram(strings.NewReader("1,2,"))
		require.Error(t, err)
	})
}

func TestLoadProgramFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("1,0,0,0,99\n"), 0o644))
	mem, err := LoadProgramFile(path)
	require.NoError(t, err)
	require.Equal(t, Memory{1, 0, 0, 0, 99}, mem)

	_, err = LoadProgramFile(filepath.Join(dir, "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMemoryClone(t *testing.T) {
	a := Memory{1, 2, 3}
	b := a.Clone()
	b[0] = 9
	require.Equal(t, int64(1), a[0])
	require.True(t, a.InBounds(2))
	require.False(t, a.InBounds(3))
	require.False(t, a.InBounds(-1))
}

func TestStateJSON(t *testing.T) {
	s := NewVMState(Memory{1, 0, 0, 0, 99})
	s.PC = 4
	s.Step = 1
	s.Status = StatusHalted
	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.Contains(t, string(data), `"status":"halted"`)

	var out VMState
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, s, &out)

	require.Error(t, json.Unmarshal([]byte(`{"status":"sleeping"}`), &out))
}

func TestPatch(t *testing.T) {
	s := NewVMState(Memory{1, 0, 0, 0, 99})
	require.NoError(t, s.Patch(1, 12))
	require.Equal(t, int64(12), s.Memory[1])
	require.ErrorIs(t, s.Patch(5, 1), ErrOutOfBounds)
}
