package chat

import "connect-chat/internal/models"

// ring is a bounded FIFO message log with O(1) append-with-eviction.
// It is not safe for concurrent use; the coordinator serializes access.
type ring struct {
	buf  []models.Message
	head int
	size int
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{buf: make([]models.Message, capacity)}
}

func (r *ring) len() int { return r.size }

// append adds m at the tail. When the buffer is full the oldest entry
// is overwritten and returned with evicted=true.
func (r *ring) append(m models.Message) (old models.Message, evicted bool) {
	if r.size == len(r.buf) {
		old = r.buf[r.head]
		r.buf[r.head] = m
		r.head = (r.head + 1) % len(r.buf)
		return old, true
	}
	r.buf[(r.head+r.size)%len(r.buf)] = m
	r.size++
	return models.Message{}, false
}

func (r *ring) at(i int) models.Message {
	return r.buf[(r.head+i)%len(r.buf)]
}

// messages returns the log oldest-first as a fresh slice.
func (r *ring) messages() []models.Message {
	out := make([]models.Message, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.at(i)
	}
	return out
}

// last returns up to n of the newest entries, oldest-first.
func (r *ring) last(n int) []models.Message {
	if n > r.size {
		n = r.size
	}
	out := make([]models.Message, n)
	for i := 0; i < n; i++ {
		out[i] = r.at(r.size - n + i)
	}
	return out
}

func (r *ring) find(id string) (models.Message, bool) {
	for i := 0; i < r.size; i++ {
		if m := r.at(i); m.ID == id {
			return m, true
		}
	}
	return models.Message{}, false
}

// remove deletes the entry with the given id, shifting newer entries
// back one slot. Returns false if the id is not present.
func (r *ring) remove(id string) bool {
	for i := 0; i < r.size; i++ {
		if r.at(i).ID != id {
			continue
		}
		for j := i; j < r.size-1; j++ {
			r.buf[(r.head+j)%len(r.buf)] = r.at(j + 1)
		}
		r.size--
		return true
	}
	return false
}
