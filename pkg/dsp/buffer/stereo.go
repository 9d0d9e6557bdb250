// Package buffer provides fixed-capacity sample containers for real-time audio code.
package buffer

// Sample is the set of floating point types a Stereo buffer can hold.
type Sample interface {
	~float32 | ~float64
}

// Stereo is a fixed-capacity circular buffer holding two parallel channels
// with a single shared cursor. Capacity is set at construction and never
// changes; no method allocates or fails.
//
// Reset rewinds the cursor but keeps the stored samples, so the previous
// cycle stays readable through ReadAt until it is overwritten.
//
// A Stereo buffer is owned by a single goroutine and is not safe for
// concurrent use.
type Stereo[F Sample] struct {
	l   []F
	r   []F
	idx int
}

// NewStereo creates a zeroed buffer holding n sample pairs. Capacities below
// one are raised to one.
func NewStereo[F Sample](n int) *Stereo[F] {
	if n < 1 {
		n = 1
	}
	return &Stereo[F]{
		l: make([]F, n),
		r: make([]F, n),
	}
}

// From wraps existing channel content with the cursor at zero. It returns nil
// when the slices are empty or differ in length. The slices are not copied.
func From[F Sample](l, r []F) *Stereo[F] {
	if len(l) == 0 || len(l) != len(r) {
		return nil
	}
	return &Stereo[F]{l: l, r: r}
}

// Len returns the capacity in sample pairs.
func (b *Stereo[F]) Len() int {
	return len(b.l)
}

// Index returns the current cursor position.
func (b *Stereo[F]) Index() int {
	return b.idx
}

// WriteAdvance stores a pair at the cursor and advances it. It reports true
// when the write wrapped the cursor back to zero, i.e. a full cycle has been
// written.
func (b *Stereo[F]) WriteAdvance(l, r F) bool {
	b.l[b.idx] = l
	b.r[b.idx] = r
	return b.advance()
}

// ReadAdvance returns the pair at the cursor and advances it, with the same
// wrap signal as WriteAdvance.
func (b *Stereo[F]) ReadAdvance() (l, r F, filled bool) {
	l, r = b.l[b.idx], b.r[b.idx]
	return l, r, b.advance()
}

// Read returns the pair at the cursor without moving it.
func (b *Stereo[F]) Read() (l, r F) {
	return b.l[b.idx], b.r[b.idx]
}

// ReadAt returns the pair at i modulo the capacity. The cursor is untouched.
func (b *Stereo[F]) ReadAt(i int) (l, r F) {
	n := len(b.l)
	i %= n
	if i < 0 {
		i += n
	}
	return b.l[i], b.r[i]
}

// Reset moves the cursor to zero. Stored samples are kept.
func (b *Stereo[F]) Reset() {
	b.idx = 0
}

func (b *Stereo[F]) advance() bool {
	b.idx++
	if b.idx >= len(b.l) {
		b.idx = 0
		return true
	}
	return false
}
