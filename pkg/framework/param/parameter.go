// Package param holds host-automatable plugin parameters. Values are stored
// normalized in an atomic cell so the audio thread reads them without locks.
package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Parameter represents a plugin parameter
type Parameter struct {
	ID           uint32
	Name         string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64

	// Normalized value as float64 bits for lock-free access in audio thread
	value atomic.Uint64

	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// New creates a parameter set to its default plain value.
func New(id uint32, name, unit string, min, max, def float64) *Parameter {
	p := &Parameter{
		ID:           id,
		Name:         name,
		Unit:         unit,
		Min:          min,
		Max:          max,
		DefaultValue: def,
	}
	p.SetPlainValue(def)
	return p
}

// GetValue returns the current normalized value (0-1)
func (p *Parameter) GetValue() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue sets the normalized value, clamped to 0-1. NaN is ignored.
func (p *Parameter) SetValue(value float64) {
	if math.IsNaN(value) {
		return
	}
	p.value.Store(math.Float64bits(clamp01(value)))
}

// GetPlainValue converts normalized to plain value
func (p *Parameter) GetPlainValue() float64 {
	return p.Denormalize(p.GetValue())
}

// SetPlainValue converts plain to normalized value
func (p *Parameter) SetPlainValue(plain float64) {
	p.SetValue(p.Normalize(plain))
}

// Reset restores the default value.
func (p *Parameter) Reset() {
	p.SetPlainValue(p.DefaultValue)
}

// SetFormatter sets custom value formatting
func (p *Parameter) SetFormatter(format func(float64) string, parse func(string) (float64, error)) {
	p.formatFunc = format
	p.parseFunc = parse
}

// FormatValue returns formatted parameter value
func (p *Parameter) FormatValue(normalized float64) string {
	plain := p.Denormalize(normalized)
	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}
	if p.Unit != "" {
		return fmt.Sprintf("%.2f %s", plain, p.Unit)
	}
	return fmt.Sprintf("%.2f", plain)
}

// ParseValue parses string to normalized value
func (p *Parameter) ParseValue(str string) (float64, error) {
	parse := p.parseFunc
	if parse == nil {
		parse = func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
	}
	plain, err := parse(str)
	if err != nil {
		return 0, fmt.Errorf("param %q: %w", p.Name, err)
	}
	return p.Normalize(plain), nil
}

// Normalize converts plain value to normalized (0-1)
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	return clamp01((plain - p.Min) / (p.Max - p.Min))
}

// Denormalize converts normalized (0-1) to plain value
func (p *Parameter) Denormalize(normalized float64) float64 {
	return p.Min + normalized*(p.Max-p.Min)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
