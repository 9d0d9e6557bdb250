package process

// ProcessChannels processes all available channels with the given function
func (ctx *Context) ProcessChannels(fn func(ch int, input, output []float32)) {
	numChannels := ctx.GetNumChannels()
	for ch := 0; ch < numChannels; ch++ {
		fn(ch, ctx.Input[ch], ctx.Output[ch])
	}
}

// GetNumChannels returns the minimum of input and output channels
func (ctx *Context) GetNumChannels() int {
	numChannels := ctx.NumInputChannels()
	if ctx.NumOutputChannels() < numChannels {
		numChannels = ctx.NumOutputChannels()
	}
	return numChannels
}

// StereoInput returns the first two input channels when the block is a
// well-formed stereo block: at least two channels of equal, non-zero length.
func (ctx *Context) StereoInput() (left, right []float32, ok bool) {
	if ctx.NumInputChannels() < 2 {
		return nil, nil, false
	}
	left, right = ctx.Input[0], ctx.Input[1]
	if len(left) == 0 || len(left) != len(right) {
		return nil, nil, false
	}
	return left, right, true
}
