// Package process provides the per-callback audio context handed to processors.
package process

// Context provides a clean API for audio processing with zero allocations.
//
// Input and Output are planar: one slice per channel, all the same length
// for a given block. Hosts that deliver interleaved audio use LoadInterleaved
// and StoreInterleaved, which work on buffers preallocated by NewContext.
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	// Pre-allocated planar storage and the per-block views into it
	inStore  [][]float32
	outStore [][]float32
	inView   [][]float32
	outView  [][]float32
}

// NewContext creates a new process context with pre-allocated planar buffers
// for up to maxBlockSize frames of the given channel count.
func NewContext(maxBlockSize, channels int) *Context {
	if maxBlockSize < 0 {
		maxBlockSize = 0
	}
	if channels < 0 {
		channels = 0
	}

	c := &Context{
		inStore:  make([][]float32, channels),
		outStore: make([][]float32, channels),
		inView:   make([][]float32, channels),
		outView:  make([][]float32, channels),
	}
	for ch := 0; ch < channels; ch++ {
		c.inStore[ch] = make([]float32, maxBlockSize)
		c.outStore[ch] = make([]float32, maxBlockSize)
	}
	return c
}

// MaxBlockSize returns the number of frames the preallocated buffers hold.
func (c *Context) MaxBlockSize() int {
	if len(c.inStore) == 0 {
		return 0
	}
	return len(c.inStore[0])
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if len(c.Input) > 0 && len(c.Input[0]) > 0 {
		return len(c.Input[0])
	}
	if len(c.Output) > 0 && len(c.Output[0]) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return len(c.Input)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// LoadInterleaved deinterleaves data into the preallocated planar buffers
// and points Input and Output at them. Frames beyond MaxBlockSize and
// channels beyond the preallocated count are dropped. It returns the number
// of frames loaded.
func (c *Context) LoadInterleaved(data []float32, channels int) int {
	if channels <= 0 {
		c.Input = c.inView[:0]
		c.Output = c.outView[:0]
		return 0
	}

	frames := len(data) / channels
	if frames > c.MaxBlockSize() {
		frames = c.MaxBlockSize()
	}
	used := channels
	if used > len(c.inStore) {
		used = len(c.inStore)
	}

	c.Input = c.inView[:used]
	c.Output = c.outView[:used]
	for ch := 0; ch < used; ch++ {
		c.Input[ch] = c.inStore[ch][:frames]
		c.Output[ch] = c.outStore[ch][:frames]
		in := c.Input[ch]
		for i := 0; i < frames; i++ {
			in[i] = data[i*channels+ch]
		}
	}
	return frames
}

// StoreInterleaved writes Output into dst, interleaved with the given
// channel count. Channels without output are written as silence. It returns
// the number of frames written.
func (c *Context) StoreInterleaved(dst []float32, channels int) int {
	if channels <= 0 {
		return 0
	}

	frames := len(dst) / channels
	if n := c.NumSamples(); n < frames {
		frames = n
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			var s float32
			if ch < len(c.Output) && i < len(c.Output[ch]) {
				s = c.Output[ch][i]
			}
			dst[i*channels+ch] = s
		}
	}
	return frames
}

// PassThrough copies input to output (for bypass)
func (c *Context) PassThrough() {
	numChannels := c.NumInputChannels()
	if c.NumOutputChannels() < numChannels {
		numChannels = c.NumOutputChannels()
	}

	for ch := 0; ch < numChannels; ch++ {
		copy(c.Output[ch], c.Input[ch])
	}
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for ch := range c.Output {
		for i := range c.Output[ch] {
			c.Output[ch][i] = 0
		}
	}
}
