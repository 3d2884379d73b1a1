package chat

import "github.com/zhouzirui/violet/backend/internal/model/chat"

// ring is a fixed-capacity circular buffer of turns. When full, a push
// overwrites the oldest turn. It is not safe for concurrent use; Service
// guards it.
type ring struct {
	buf  []chat.Turn
	head int // next write position
	size int
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = DefaultHistoryLimit
	}
	return &ring{buf: make([]chat.Turn, capacity)}
}

func (r *ring) push(t chat.Turn) {
	r.buf[r.head] = t
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// snapshot returns the turns oldest first.
func (r *ring) snapshot() []chat.Turn {
	out := make([]chat.Turn, r.size)
	start := (r.head - r.size + len(r.buf)) % len(r.buf)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}

func (r *ring) capacity() int { return len(r.buf) }
