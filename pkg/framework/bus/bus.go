// Package bus describes the audio I/O layout a processor is run with.
package bus

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLayout is returned when a processor cannot run with the
// requested channel layout.
var ErrUnsupportedLayout = errors.New("bus: unsupported channel layout")

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

// Info contains bus configuration
type Info struct {
	Direction    Direction
	ChannelCount int32
	Name         string
	IsActive     bool
}

// Configuration manages the main audio buses
type Configuration struct {
	audioBuses []Info
}

// NewStereoConfiguration creates a standard stereo I/O configuration
func NewStereoConfiguration() *Configuration {
	return NewSymmetricConfiguration(2)
}

// NewSymmetricConfiguration creates one input and one output bus with the
// same channel count.
func NewSymmetricConfiguration(channels int32) *Configuration {
	return &Configuration{
		audioBuses: []Info{
			{
				Direction:    DirectionInput,
				ChannelCount: channels,
				Name:         layoutName(channels) + " In",
				IsActive:     true,
			},
			{
				Direction:    DirectionOutput,
				ChannelCount: channels,
				Name:         layoutName(channels) + " Out",
				IsActive:     true,
			},
		},
	}
}

func layoutName(channels int32) string {
	switch channels {
	case 1:
		return "Mono"
	case 2:
		return "Stereo"
	default:
		return fmt.Sprintf("%dch", channels)
	}
}

// GetBusCount returns the number of buses for a given direction
func (c *Configuration) GetBusCount(direction Direction) int32 {
	count := int32(0)
	for _, bus := range c.audioBuses {
		if bus.Direction == direction {
			count++
		}
	}
	return count
}

// GetBusInfo returns information about a specific bus
func (c *Configuration) GetBusInfo(direction Direction, index int32) *Info {
	busIndex := int32(0)
	for i := range c.audioBuses {
		if c.audioBuses[i].Direction == direction {
			if busIndex == index {
				return &c.audioBuses[i]
			}
			busIndex++
		}
	}
	return nil
}

// MainChannels returns the channel count of the first bus in direction,
// or 0 when there is none.
func (c *Configuration) MainChannels(direction Direction) int32 {
	if info := c.GetBusInfo(direction, 0); info != nil {
		return info.ChannelCount
	}
	return 0
}

// Accepts reports whether an analyzer can run with the given channel counts:
// any symmetrical layout with at least one channel.
func Accepts(inputChannels, outputChannels int) bool {
	return inputChannels == outputChannels && inputChannels > 0
}

// RequireStereo returns nil for symmetrical layouts with at least two
// channels and an ErrUnsupportedLayout wrap otherwise.
func RequireStereo(inputChannels, outputChannels int) error {
	if !Accepts(inputChannels, outputChannels) || inputChannels < 2 {
		return fmt.Errorf("%w: %d in / %d out", ErrUnsupportedLayout, inputChannels, outputChannels)
	}
	return nil
}
