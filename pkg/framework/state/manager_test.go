package state

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audioversary/vstmommy/pkg/framework/param"
)

type blob struct {
	data []byte
}

func (b *blob) SaveState(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(b.data))); err != nil {
		return err
	}
	_, err := w.Write(b.data)
	return err
}

func (b *blob) LoadState(r io.Reader) error {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	b.data = make([]byte, n)
	_, err := io.ReadFull(r, b.data)
	return err
}

func newRegistry(t *testing.T) (*param.Registry, *param.Parameter, *param.Parameter) {
	t.Helper()
	r := param.NewRegistry()
	a := param.New(0, "A", "ms", 0, 1000, 150)
	b := param.New(1, "B", "LUFS", -60, 0, -7)
	require.NoError(t, r.Add(a, b))
	return r, a, b
}

func TestManagerRoundTrip(t *testing.T) {
	reg, a, b := newRegistry(t)
	a.SetPlainValue(300)
	b.SetPlainValue(-14)

	m := NewManager(reg)
	m.SetCustom(&blob{data: []byte("editor")})

	var buf bytes.Buffer
	require.NoError(t, m.Save(&buf))

	reg2, a2, b2 := newRegistry(t)
	custom := &blob{}
	m2 := NewManager(reg2)
	m2.SetCustom(custom)
	require.NoError(t, m2.Load(&buf))

	assert.InDelta(t, 300, a2.GetPlainValue(), 1e-9)
	assert.InDelta(t, -14, b2.GetPlainValue(), 1e-9)
	assert.Equal(t, []byte("editor"), custom.data)
}

func TestManagerIgnoresUnknownAndCustom(t *testing.T) {
	reg, a, _ := newRegistry(t)
	extra := param.New(42, "Extra", "", 0, 1, 1)
	require.NoError(t, reg.Add(extra))
	a.SetPlainValue(900)

	m := NewManager(reg)
	m.SetCustom(&blob{data: []byte("x")})
	var buf bytes.Buffer
	require.NoError(t, m.Save(&buf))

	reg2, a2, _ := newRegistry(t)
	require.NoError(t, NewManager(reg2).Load(&buf))
	assert.InDelta(t, 900, a2.GetPlainValue(), 1e-9)
	assert.Nil(t, reg2.Get(42))
}

func TestManagerRejectsBadInput(t *testing.T) {
	reg, _, _ := newRegistry(t)
	m := NewManager(reg)

	assert.ErrorIs(t, m.Load(bytes.NewReader([]byte("VST3GO"))), ErrInvalidFormat)
	assert.ErrorIs(t, m.Load(bytes.NewReader([]byte("NOTSTATE12345678"))), ErrInvalidFormat)

	var buf bytes.Buffer
	buf.WriteString(magic)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(99)))
	assert.ErrorIs(t, m.Load(&buf), ErrUnsupportedVersion)

	var good bytes.Buffer
	require.NoError(t, m.Save(&good))
	truncated := good.Bytes()[:good.Len()-3]
	assert.Error(t, m.Load(bytes.NewReader(truncated)))
}

func TestManagerFiles(t *testing.T) {
	reg, a, _ := newRegistry(t)
	a.SetPlainValue(250)
	path := filepath.Join(t.TempDir(), "nested", "vstmommy.state")

	require.NoError(t, NewManager(reg).SaveFile(path))

	reg2, a2, _ := newRegistry(t)
	require.NoError(t, NewManager(reg2).LoadFile(path))
	assert.InDelta(t, 250, a2.GetPlainValue(), 1e-9)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file is removed")

	err = NewManager(reg2).LoadFile(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
