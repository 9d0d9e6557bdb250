// Package meter shares scalar measurements between the audio callback and
// any number of readers without locks.
//
// Each Value has exactly one writer. Stores and loads are single atomic
// operations on the float bits, so a reader sees either the previous or the
// latest value, never a torn one. There is no queue and no history: the last
// store wins.
package meter

import (
	"math"
	"sync/atomic"
)

// Value is a float32 cell with atomic load and store.
// The zero Value holds 0.
type Value struct {
	bits atomic.Uint32
}

// NewValue returns a Value holding v.
func NewValue(v float32) *Value {
	var m Value
	m.Store(v)
	return &m
}

// Store publishes v. Only the owning writer may call it.
func (m *Value) Store(v float32) {
	m.bits.Store(math.Float32bits(v))
}

// Load returns the most recently completed store.
func (m *Value) Load() float32 {
	return math.Float32frombits(m.bits.Load())
}
