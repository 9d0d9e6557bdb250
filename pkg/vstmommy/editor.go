package vstmommy

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/audioversary/vstmommy/pkg/dsp/buffer"
	"github.com/audioversary/vstmommy/pkg/framework/meter"
)

// Display range of the peak meters in dBFS.
const (
	FloorDB   = -100.0
	CeilingDB = 24.0
)

const (
	verdictLow  = "mommy knows her little girl can do better~"
	verdictGood = "good girl~"
)

// Frame is one editor refresh worth of display values.
type Frame struct {
	Time     time.Time
	PeakDB   [2]float64
	HoldDB   [2]float64
	Loudness float64 // momentary LUFS, -Inf until the first reading
	Verdict  string
}

// LoudnessKnown reports whether a momentary reading has been published.
func (f Frame) LoudnessKnown() bool {
	return !math.IsInf(f.Loudness, 0) && !math.IsNaN(f.Loudness)
}

type peakHold struct {
	db float64
	at time.Time
}

func (h *peakHold) update(db float64, now time.Time, hold time.Duration) float64 {
	if db >= h.db || now.Sub(h.at) > hold {
		h.db = db
		h.at = now
	}
	return h.db
}

// Editor is the presentation side of the meter. It loads the published
// metrics at its own cadence; opening and closing it toggles whether the
// processor spends time on peak metering.
//
// An Editor is driven by a single goroutine.
type Editor struct {
	pub     *meter.Publisher
	cfg     Config
	params  *Params
	hold    [2]peakHold
	history *buffer.Stereo[float32]
	frames  int
	width   int
}

// NewEditor creates a closed editor reading from pub.
func NewEditor(pub *meter.Publisher, cfg Config) *Editor {
	return &Editor{
		pub:     pub,
		cfg:     cfg,
		hold:    [2]peakHold{{db: FloorDB}, {db: FloorDB}},
		history: newHistory(cfg.HistoryLen),
	}
}

func newHistory(n int) *buffer.Stereo[float32] {
	history := buffer.NewStereo[float32](n)
	for i := 0; i < history.Len(); i++ {
		history.WriteAdvance(FloorDB, FloorDB)
	}
	return history
}

// BindParams makes the hold time and loudness target follow params instead
// of the static config.
func (e *Editor) BindParams(params *Params) {
	e.params = params
}

func (e *Editor) holdTime() time.Duration {
	if e.params != nil {
		return e.params.Hold()
	}
	return e.cfg.PeakHold
}

func (e *Editor) threshold() float64 {
	if e.params != nil {
		return e.params.Threshold()
	}
	return e.cfg.LoudnessThreshold
}

// Open starts presenting and enables peak metering on the audio side.
func (e *Editor) Open() {
	e.pub.SetActive(true)
}

// Close stops presenting. The processor stops updating peaks.
func (e *Editor) Close() {
	e.pub.SetActive(false)
}

// IsOpen reports whether the editor is presenting.
func (e *Editor) IsOpen() bool {
	return e.pub.Active()
}

// Frame loads the current metrics and advances hold and history state.
func (e *Editor) Frame(now time.Time) Frame {
	snap := e.pub.Snapshot()

	f := Frame{
		Time:     now,
		PeakDB:   [2]float64{gainToDB(snap.PeakLeft), gainToDB(snap.PeakRight)},
		Loudness: float64(snap.Loudness),
	}
	hold := e.holdTime()
	for ch := range f.PeakDB {
		f.HoldDB[ch] = e.hold[ch].update(f.PeakDB[ch], now, hold)
	}
	f.Verdict = e.verdict(f.Loudness)

	e.history.WriteAdvance(float32(f.PeakDB[0]), float32(f.PeakDB[1]))
	e.frames++
	return f
}

// SetWidth limits formatted lines to width terminal columns. Zero or less
// removes the limit.
func (e *Editor) SetWidth(width int) {
	e.width = max(width, 0)
}

// Frames returns how many frames have been produced.
func (e *Editor) Frames() int {
	return e.frames
}

func (e *Editor) verdict(lufs float64) string {
	if lufs < e.threshold() || math.IsNaN(lufs) {
		return verdictLow
	}
	return verdictGood
}

// gainToDB converts a published linear peak to display dB. Silence, the
// negative infinity sentinel and non-finite values map to the floor.
func gainToDB(gain float32) float64 {
	g := float64(gain)
	switch {
	case math.IsInf(g, 1):
		return CeilingDB
	case !(g > 0):
		return FloorDB
	}
	return core.Clamp(core.LinearToDB(g), FloorDB, CeilingDB)
}

// maxHistoryLen bounds the history length accepted from a state file.
const maxHistoryLen = 4096

var errEditorState = errors.New("vstmommy: invalid editor state")

// editorState is the persisted part of the editor.
type editorState struct {
	Open       uint8
	HistoryLen uint32
}

// SaveState writes whether the editor is open and its history length.
func (e *Editor) SaveState(w io.Writer) error {
	st := editorState{HistoryLen: uint32(e.history.Len())}
	if e.IsOpen() {
		st.Open = 1
	}
	return binary.Write(w, binary.LittleEndian, st)
}

// LoadState restores a state written by SaveState. A changed history length
// clears the history.
func (e *Editor) LoadState(r io.Reader) error {
	var st editorState
	if err := binary.Read(r, binary.LittleEndian, &st); err != nil {
		return fmt.Errorf("vstmommy: read editor state: %w", err)
	}
	if st.HistoryLen < 1 || st.HistoryLen > maxHistoryLen {
		return fmt.Errorf("%w: history length %d", errEditorState, st.HistoryLen)
	}

	if int(st.HistoryLen) != e.history.Len() {
		e.history = newHistory(int(st.HistoryLen))
	}
	if st.Open != 0 {
		e.Open()
	} else {
		e.Close()
	}
	return nil
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// Sparkline returns the peak history of one channel (0 left, 1 right),
// oldest first.
func (e *Editor) Sparkline(ch int) string {
	return e.sparkline(ch, e.history.Len())
}

// sparkline returns the newest n history entries of one channel.
func (e *Editor) sparkline(ch, n int) string {
	n = min(n, e.history.Len())
	start := e.history.Index() + e.history.Len() - n

	var sb strings.Builder
	for i := 0; i < n; i++ {
		l, r := e.history.ReadAt(start + i)
		db := float64(l)
		if ch == 1 {
			db = float64(r)
		}
		pos := (core.Clamp(db, FloorDB, 0) - FloorDB) / -FloorDB
		idx := int(math.Round(pos * float64(len(sparkLevels)-1)))
		sb.WriteRune(sparkLevels[idx])
	}
	return sb.String()
}

const (
	barWidth = 24
	// minSpark is the shortest sparkline worth drawing.
	minSpark = 8
	// minBar is the bar width kept before the verdict is dropped.
	minBar = 4
	// fixedColumns counts the labels and numbers of a line without bars,
	// sparkline or verdict.
	fixedColumns = len("L [] ") + 6 + len("  R [] ") + 6 + len("  LUFS ") + 6
)

// bar draws a meter of width cells from -60 dBFS to 0 dBFS with a hold
// marker.
func bar(db, hold float64, width int) string {
	cells := func(v float64) int {
		pos := (core.Clamp(v, -60, 0) + 60) / 60
		return int(math.Round(pos * float64(width)))
	}

	fill, mark := cells(db), cells(hold)
	b := []byte(strings.Repeat("-", width))
	for i := 0; i < fill; i++ {
		b[i] = '#'
	}
	if mark > 0 {
		b[mark-1] = '|'
	}
	return string(b)
}

func formatDB(db float64) string {
	if db <= FloorDB {
		return "  -inf"
	}
	return fmt.Sprintf("%6.1f", db)
}

// layout decides the bar width, sparkline length and whether the verdict
// fits in the configured width.
func (e *Editor) layout(verdict string) (bars, spark int, withVerdict bool) {
	if e.width == 0 {
		return barWidth, e.history.Len(), true
	}

	rem := e.width - fixedColumns
	if v := len("  ") + utf8.RuneCountInString(verdict); rem-v >= 2*minBar {
		withVerdict = true
		rem -= v
	}
	bars = min(barWidth, max(rem, 0)/2)
	rem -= 2 * bars
	if n := min(e.history.Len(), rem-len("  ")); n >= minSpark {
		spark = n
	}
	return bars, spark, withVerdict
}

// Format renders a frame as a single terminal line that fits the width set
// with SetWidth. Bars shrink first, then the sparkline and the verdict are
// dropped.
func (e *Editor) Format(f Frame) string {
	bars, spark, withVerdict := e.layout(f.Verdict)

	lufs := "  --.-"
	if f.LoudnessKnown() {
		lufs = fmt.Sprintf("%6.1f", f.Loudness)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "L [%s] %s  R [%s] %s",
		bar(f.PeakDB[0], f.HoldDB[0], bars), formatDB(f.PeakDB[0]),
		bar(f.PeakDB[1], f.HoldDB[1], bars), formatDB(f.PeakDB[1]))
	if spark > 0 {
		sb.WriteString("  ")
		sb.WriteString(e.sparkline(0, spark))
	}
	sb.WriteString("  LUFS ")
	sb.WriteString(lufs)
	if withVerdict {
		sb.WriteString("  ")
		sb.WriteString(f.Verdict)
	}

	line := sb.String()
	if e.width > 0 && utf8.RuneCountInString(line) > e.width {
		line = string([]rune(line)[:e.width])
	}
	return line
}

// Render writes the formatted frame to w without a trailing newline.
func (e *Editor) Render(w io.Writer, f Frame) error {
	_, err := io.WriteString(w, e.Format(f))
	return err
}
