package rigid

import "github.com/go-gl/mathgl/mgl64"

// Contact is one penetration between bodies A and B. Normal is unit length
// and points from A to B; Depth is positive.
type Contact struct {
	A, B     int
	Normal   mgl64.Vec3
	Depth    float64
	Point    mgl64.Vec3
	HasPoint bool
}

// Swapped returns the same contact seen from the other body.
func (c Contact) Swapped() Contact {
	c.A, c.B = c.B, c.A
	c.Normal = c.Normal.Mul(-1)
	return c
}

// ContactBuffer is an append-only contact list with a fixed capacity.
// Appends beyond capacity are dropped and counted.
type ContactBuffer struct {
	items   []Contact
	cap     int
	dropped int
}

func NewContactBuffer(capacity int) *ContactBuffer {
	if capacity < 0 {
		capacity = 0
	}
	return &ContactBuffer{items: make([]Contact, 0, min(capacity, 64)), cap: capacity}
}

// Append adds c and reports whether it was kept.
func (b *ContactBuffer) Append(c Contact) bool {
	if len(b.items) >= b.cap {
		b.dropped++
		return false
	}
	b.items = append(b.items, c)
	return true
}

func (b *ContactBuffer) Len() int         { return len(b.items) }
func (b *ContactBuffer) Cap() int         { return b.cap }
func (b *ContactBuffer) Dropped() int     { return b.dropped }
func (b *ContactBuffer) Items() []Contact { return b.items }

func (b *ContactBuffer) Reset() {
	b.items = b.items[:0]
	b.dropped = 0
}
