// Package state saves and restores plugin state: parameter values followed
// by an optional plugin-defined section.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/audioversary/vstmommy/pkg/framework/param"
)

const (
	magic   = "VSTMOMMY"
	version = uint32(1)
)

var (
	ErrInvalidFormat      = errors.New("state: invalid state format")
	ErrUnsupportedVersion = errors.New("state: unsupported state version")
)

// Custom is plugin state saved after the parameters, such as editor
// settings.
type Custom interface {
	SaveState(w io.Writer) error
	LoadState(r io.Reader) error
}

// Manager handles plugin state saving and loading
type Manager struct {
	version  uint32
	registry *param.Registry
	custom   Custom
}

// NewManager creates a new state manager
func NewManager(registry *param.Registry) *Manager {
	return &Manager{
		version:  version,
		registry: registry,
	}
}

// SetCustom sets the section written after the parameters.
func (m *Manager) SetCustom(c Custom) {
	m.custom = c
}

// Save writes the plugin state to a writer
func (m *Manager) Save(w io.Writer) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, m.version); err != nil {
		return err
	}

	params := m.registry.All()
	if err := binary.Write(w, binary.LittleEndian, int32(len(params))); err != nil {
		return err
	}
	for _, p := range params {
		if err := binary.Write(w, binary.LittleEndian, p.ID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, p.GetValue()); err != nil {
			return err
		}
	}

	if m.custom == nil {
		return binary.Write(w, binary.LittleEndian, uint32(0))
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(1)); err != nil {
		return err
	}
	return m.custom.SaveState(w)
}

// Load reads the plugin state from a reader. Unknown parameters are
// skipped; a custom section is ignored when no Custom is set.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if string(header) != magic {
		return ErrInvalidFormat
	}

	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return err
	}
	if v == 0 || v > m.version {
		return fmt.Errorf("%w: %d (supported %d)", ErrUnsupportedVersion, v, m.version)
	}

	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return err
	}
	if count < 0 {
		return fmt.Errorf("%w: negative parameter count", ErrInvalidFormat)
	}

	for i := int32(0); i < count; i++ {
		var id uint32
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return err
		}
		var value float64
		if err := binary.Read(r, binary.LittleEndian, &value); err != nil {
			return err
		}
		if p := m.registry.Get(id); p != nil {
			p.SetValue(value)
		}
	}

	var hasCustom uint32
	if err := binary.Read(r, binary.LittleEndian, &hasCustom); err != nil {
		return err
	}
	if hasCustom != 0 && m.custom != nil {
		return m.custom.LoadState(r)
	}
	return nil
}

// SaveFile writes the state to path through a temporary file in the same
// directory.
func (m *Manager) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("state: create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("state: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("state: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("state: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("state: rename: %w", err)
	}
	return nil
}

// LoadFile reads the state from path.
func (m *Manager) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	defer f.Close()
	return m.Load(f)
}
