// Package audio implements the spectral analyzer that turns raw PCM samples
// into the AudioFeatures the kinetic layer consumes (spec §4.F). Grounded on
// the FFT/windowing/band-energy technique of the vscode-music-player feature
// extractor, restructured from an offline whole-track extractor into the
// streaming single-frame contract §4.F actually specifies, and on
// manager_edit.go's batched-upload discipline for the sample ring buffer
// (single writer, single reader, drained once per frame per spec §5).
package audio

import "sync"

// RingBuffer is a single-writer/single-reader float32 ring used to decouple
// an asynchronous audio capture callback from the host's once-per-frame
// drain (spec §5 "behind a single-writer/single-reader ring buffer"). The
// mutex exists only to make Push/Drain safe to call from different
// goroutines; it is never held across I/O.
type RingBuffer struct {
	mu   sync.Mutex
	buf  []float32
	head int
	size int
}

func NewRingBuffer(capacity int) *RingBuffer {
	return &RingBuffer{buf: make([]float32, capacity)}
}

// Push appends samples, overwriting the oldest ones if the ring is full. A
// disconnected audio source surfaces as a stream of zero samples upstream;
// this buffer never blocks (spec §5 "must not block waiting for samples").
func (r *RingBuffer) Push(samples []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range samples {
		r.buf[(r.head+r.size)%len(r.buf)] = s
		if r.size < len(r.buf) {
			r.size++
		} else {
			r.head = (r.head + 1) % len(r.buf)
		}
	}
}

// Drain copies out up to n of the oldest buffered samples and removes them
// from the ring, returning fewer than n if not enough are available yet.
func (r *RingBuffer) Drain(n int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n > r.size {
		n = r.size
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	r.head = (r.head + n) % len(r.buf)
	r.size -= n
	return out
}

func (r *RingBuffer) Available() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}
