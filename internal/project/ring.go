package project

import (
	"log"
	"sync"

	"github.com/schollz/collidertracker/internal/coretypes"
)

// AudioRing is a fixed-capacity FIFO of rendered stereo samples sitting
// between the render tick and whatever drains audio out to a device or
// file (spec §6's fill_audio_queue). A full ring drops the newest
// sample and logs rather than blocking the render tick.
type AudioRing struct {
	mu       sync.Mutex
	buf      []coretypes.StereoSample
	head     int
	len      int
	overruns uint64
}

// NewAudioRing returns a ring able to hold capacity samples.
func NewAudioRing(capacity int) *AudioRing {
	return &AudioRing{buf: make([]coretypes.StereoSample, capacity)}
}

// Push appends s, dropping it and logging if the ring is full.
func (r *AudioRing) Push(s coretypes.StereoSample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.len == len(r.buf) {
		r.overruns++
		log.Printf("[project] audio ring overrun, dropping sample (total overruns: %d)", r.overruns)
		return
	}
	tail := (r.head + r.len) % len(r.buf)
	r.buf[tail] = s
	r.len++
}

// Drain removes and returns up to n samples, fewer if the ring holds
// less than that.
func (r *AudioRing) Drain(n int) []coretypes.StereoSample {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n > r.len {
		n = r.len
	}
	out := make([]coretypes.StereoSample, n)
	for i := 0; i < n; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	r.head = (r.head + n) % len(r.buf)
	r.len -= n
	return out
}

// Len reports how many samples are currently buffered.
func (r *AudioRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.len
}

// Overruns reports the cumulative number of samples dropped so far.
func (r *AudioRing) Overruns() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overruns
}
