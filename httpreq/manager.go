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
	"sync/atomic"
	"time"
)

// Manager is the HTTP request pipeline's task manager: it owns the
// pending list, active batches, failed-for-retry list, and the
// cancellation map, and it is registered with worker.Instance() so the
// network worker drives it every loop iteration.
type Manager struct {
	mu sync.Mutex

	pending       []*HttpRequestContext
	activeBatches []*batchRequestHandler
	failed        []*HttpRequestContext
	toCancel      map[uint64][]func()

	shuttingDown bool
	limiter      *RateLimiter
	nextID       uint64
}

// NewManager returns a ready-to-register HttpRequestManager. The
// request id counter starts at 1, per spec.
func NewManager() *Manager {
	return &Manager{
		limiter:  NewRateLimiter(),
		toCancel: make(map[uint64][]func()),
	}
}

// Limiter exposes the manager's RateLimiter so CreateRateLimit* free
// functions can configure it.
func (m *Manager) Limiter() *RateLimiter {
	return m.limiter
}

// AddRequest appends a new context to pending. Returns the assigned
// request id and false if the manager is shutting down (in which case
// no context was created and cb is never invoked).
func (m *Manager) AddRequest(req *HttpRequest, cb func(*HttpResponse)) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shuttingDown {
		return 0, false
	}

	id := atomic.AddUint64(&m.nextID, 1)
	m.pending = append(m.pending, &HttpRequestContext{
		ID:       id,
		Request:  req,
		Callback: cb,
	})

	return id, true
}

// CancelRequestByID schedules id for cancellation; cb is invoked once
// the cancellation pass for this id has run, whether or not a matching
// context was found (cancellation is idempotent w.r.t. the callback).
func (m *Manager) CancelRequestByID(id uint64, cb func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.toCancel[id] = append(m.toCancel[id], cb)
}

// Process implements worker.TaskManager. It performs pending dispatch,
// drives active batches, promotes retry-eligible failures back to
// pending, and runs one cancellation pass, in that order.
func (m *Manager) Process() bool {
	busy := m.dispatchPending()
	busy = m.driveActive() || busy
	busy = m.promoteRetries() || busy
	busy = m.runCancellations() || busy
	return busy
}

func (m *Manager) dispatchPending() bool {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	if len(pending) == 0 {
		return false
	}

	var admitted []*HttpRequestContext
	var stillPending []*HttpRequestContext

	for _, rc := range pending {
		if rc.Request == nil {
			rc.deliver(synthResponse(ErrorInvalidConfiguration, http400))
			continue
		}

		if m.limiter.AllowRequest(rc.Request.GeneralRateLimitID, rc.Request.SpecificRateLimitID) {
			admitted = append(admitted, rc)
		} else {
			stillPending = append(stillPending, rc)
		}
	}

	if len(stillPending) > 0 {
		m.mu.Lock()
		m.pending = append(stillPending, m.pending...)
		m.mu.Unlock()
	}

	if len(admitted) > 0 {
		batch := newBatch(admitted)
		m.mu.Lock()
		m.activeBatches = append(m.activeBatches, batch)
		m.mu.Unlock()
	}

	return len(stillPending) > 0
}

const http400 = 400

func (m *Manager) driveActive() bool {
	m.mu.Lock()
	batches := m.activeBatches
	m.mu.Unlock()

	if len(batches) == 0 {
		return false
	}

	var remaining []*batchRequestHandler

	for _, b := range batches {
		if b.process() {
			failed := b.extractFailedRequests()
			if len(failed) > 0 {
				m.mu.Lock()
				m.failed = append(m.failed, failed...)
				m.mu.Unlock()
			}
		} else {
			remaining = append(remaining, b)
		}
	}

	m.mu.Lock()
	m.activeBatches = remaining
	m.mu.Unlock()

	return len(remaining) > 0
}

func (m *Manager) promoteRetries() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.failed) == 0 {
		return false
	}

	now := time.Now()
	var stillFailed []*HttpRequestContext

	for _, rc := range m.failed {
		delay := rc.Request.RetryDelay
		if now.Sub(rc.StartTime) >= delay {
			m.pending = append(m.pending, rc)
		} else {
			stillFailed = append(stillFailed, rc)
		}
	}

	m.failed = stillFailed
	return len(m.failed) > 0
}

func (m *Manager) runCancellations() bool {
	m.mu.Lock()
	toCancel := m.toCancel
	m.toCancel = make(map[uint64][]func())
	failed := m.failed
	batches := m.activeBatches
	m.mu.Unlock()

	if len(toCancel) == 0 {
		return false
	}

	ids := make(map[uint64]struct{}, len(toCancel))
	for id := range toCancel {
		ids[id] = struct{}{}
	}

	var stillFailed []*HttpRequestContext
	for _, rc := range failed {
		if _, want := ids[rc.ID]; want {
			rc.deliver(cancelledResponse())
		} else {
			stillFailed = append(stillFailed, rc)
		}
	}

	m.mu.Lock()
	m.failed = stillFailed
	m.mu.Unlock()

	for _, b := range batches {
		b.cancelRequestByID(ids)
	}

	for _, callbacks := range toCancel {
		for _, cb := range callbacks {
			if cb != nil {
				cb()
			}
		}
	}

	return false
}

// Shutdown implements worker.TaskManager. It emits a synthesized 499
// response for every pending and failed context, runs a final
// cancellation pass, and destroys every active batch.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.shuttingDown = true
	pending := m.pending
	failed := m.failed
	batches := m.activeBatches
	m.pending = nil
	m.failed = nil
	m.activeBatches = nil
	m.mu.Unlock()

	for _, rc := range pending {
		rc.deliver(cancelledResponse())
	}
	for _, rc := range failed {
		rc.deliver(cancelledResponse())
	}

	m.runCancellations()

	for _, b := range batches {
		b.destroy()
	}
}
