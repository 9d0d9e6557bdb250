package host

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/audioversary/vstmommy/pkg/framework/debug"
	"github.com/audioversary/vstmommy/pkg/framework/plugin"
	"github.com/audioversary/vstmommy/pkg/framework/process"
)

// bytesPerSample is the size of one f32 sample in the device buffers.
const bytesPerSample = 4

// Callback adapts a plugin.Processor to an interleaved f32 duplex stream.
// Blocks longer than the preallocated size are processed in chunks, so the
// processor never sees more than maxFrames frames at once.
//
// Process runs on the device thread and does not allocate.
type Callback struct {
	proc       plugin.Processor
	ctx        *process.Context
	sampleRate float64
	channels   int
	in, out    []float32
	load       *debug.CallbackLoad
}

// NewCallback creates a callback for the given stream format. load may be
// nil.
func NewCallback(proc plugin.Processor, sampleRate float64, maxFrames, channels int, load *debug.CallbackLoad) *Callback {
	if maxFrames < 1 {
		maxFrames = 1
	}
	if channels < 1 {
		channels = 1
	}
	return &Callback{
		proc:       proc,
		ctx:        process.NewContext(maxFrames, channels),
		sampleRate: sampleRate,
		channels:   channels,
		in:         make([]float32, maxFrames*channels),
		out:        make([]float32, maxFrames*channels),
		load:       load,
	}
}

// Process handles one device period. Samples are little-endian f32.
// Missing input is read as silence.
func (c *Callback) Process(output, input []byte, frameCount uint32) {
	start := time.Now()

	frameBytes := bytesPerSample * c.channels
	frames := len(output) / frameBytes
	if int(frameCount) < frames {
		frames = int(frameCount)
	}

	chunk := c.ctx.MaxBlockSize()
	for off := 0; off < frames; off += chunk {
		n := min(chunk, frames-off)
		samples := n * c.channels
		base := off * c.channels

		for i := 0; i < samples; i++ {
			c.in[i] = 0
			if p := (base + i) * bytesPerSample; p+bytesPerSample <= len(input) {
				c.in[i] = math.Float32frombits(binary.LittleEndian.Uint32(input[p:]))
			}
		}

		c.ctx.LoadInterleaved(c.in[:samples], c.channels)
		c.ctx.SampleRate = c.sampleRate
		c.proc.ProcessAudio(c.ctx)
		c.ctx.StoreInterleaved(c.out[:samples], c.channels)

		for i := 0; i < samples; i++ {
			binary.LittleEndian.PutUint32(output[(base+i)*bytesPerSample:], math.Float32bits(c.out[i]))
		}
	}

	if c.load != nil {
		c.load.Record(time.Since(start))
	}
}
