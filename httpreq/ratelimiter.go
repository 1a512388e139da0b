/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package httpreq

import (
	"sync"
	"time"
)

// limitEntry is a fixed-window counter: the window resets wholesale once
// period has elapsed since windowStart, rather than smoothly decaying
// like golang.org/x/time/rate's token bucket.
type limitEntry struct {
	n           int
	period      time.Duration
	count       int
	windowStart time.Time
}

func (e *limitEntry) admits(now time.Time) bool {
	if e.n == 0 {
		return true
	}
	if now.Sub(e.windowStart) >= e.period {
		return true
	}
	return e.count < e.n
}

func (e *limitEntry) update(now time.Time) {
	if now.Sub(e.windowStart) >= e.period {
		e.windowStart = now
		e.count = 0
	}
	e.count++
}

// RateLimiter admits HTTP requests under up to two independently
// configured limit ids, atomically with respect to each other: a
// request is only counted against either limit if both admit it.
type RateLimiter struct {
	mu     sync.Mutex
	nextID uint64
	limits map[uint64]*limitEntry
}

// NewRateLimiter returns an empty RateLimiter ready for use.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{limits: make(map[uint64]*limitEntry)}
}

// CreateLimit allocates a fresh limit id. n == 0 means unlimited.
func (r *RateLimiter) CreateLimit(n int, period time.Duration) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.limits[id] = &limitEntry{n: n, period: period, windowStart: time.Now()}
	return id
}

// CreateLimitRPM is a convenience wrapper for a per-minute limit.
func (r *RateLimiter) CreateLimitRPM(n int) uint64 {
	return r.CreateLimit(n, time.Minute)
}

// CreateLimitRPS is a convenience wrapper for a per-second limit.
func (r *RateLimiter) CreateLimitRPS(n int) uint64 {
	return r.CreateLimit(n, time.Second)
}

// RemoveLimit erases a limit id. Returns false if the id is unknown,
// true exactly once for a given id.
func (r *RateLimiter) RemoveLimit(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.limits[id]; !ok {
		return false
	}
	delete(r.limits, id)
	return true
}

// AllowRequest checks both the general and specific limit ids (id 0
// means "no limit" and is always absent) and, only if both admit,
// updates both windows atomically. Missing ids behave as absent.
func (r *RateLimiter) AllowRequest(generalID, specificID uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	general := r.limits[generalID]
	specific := r.limits[specificID]

	if generalID != 0 && general != nil && !general.admits(now) {
		return false
	}
	if specificID != 0 && specific != nil && !specific.admits(now) {
		return false
	}

	if generalID != 0 && general != nil {
		general.update(now)
	}
	if specificID != 0 && specific != nil {
		specific.update(now)
	}

	return true
}
