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

import "sync"

// batchRequestHandler drives a set of requestHandlers formed from one
// pending snapshot. Each handler runs its transfer on its own goroutine;
// process() performs one non-blocking drain of their shared completion
// channel, which stands in for the curl-multi-handle "transfer
// multiplexer" spec.md describes.
type batchRequestHandler struct {
	mu       sync.Mutex
	handlers map[uint64]*requestHandler
	results  chan transferResult
	running  int
	failed   []*HttpRequestContext
}

func newBatch(contexts []*HttpRequestContext) *batchRequestHandler {
	b := &batchRequestHandler{
		handlers: make(map[uint64]*requestHandler, len(contexts)),
		results:  make(chan transferResult, len(contexts)),
	}

	for _, rc := range contexts {
		h := newRequestHandler(rc)
		b.handlers[rc.ID] = h
		b.running++

		go func(h *requestHandler) {
			result := <-h.start()
			b.results <- result
		}(h)
	}

	return b
}

// process performs one non-blocking drain of completed transfers,
// dispatches their completion, and reports whether the batch is done
// (no transfers remain running).
func (b *batchRequestHandler) process() (done bool) {
	for {
		select {
		case result := <-b.results:
			b.complete(result)
		default:
			b.mu.Lock()
			done = b.running == 0
			b.mu.Unlock()
			return done
		}
	}
}

func (b *batchRequestHandler) complete(result transferResult) {
	b.mu.Lock()
	h, ok := b.handlers[result.id]
	if ok {
		delete(b.handlers, result.id)
		b.running--
	}
	b.mu.Unlock()

	if !ok {
		return
	}

	resp, terminal := h.handleCompletion(result)
	h.ctx.deliver(resp)

	if !terminal {
		b.mu.Lock()
		b.failed = append(b.failed, h.ctx)
		b.mu.Unlock()
	}
}

// extractFailedRequests surrenders the batch's retry-eligible contexts
// to the caller (the manager), clearing the batch's own copy.
func (b *batchRequestHandler) extractFailedRequests() []*HttpRequestContext {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.failed
	b.failed = nil
	return out
}

// cancelRequestByID cancels every owned handler whose request id is a
// key of ids; handlers not present are left running.
func (b *batchRequestHandler) cancelRequestByID(ids map[uint64]struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, h := range b.handlers {
		if _, want := ids[id]; !want {
			continue
		}
		resp := h.cancel()
		delete(b.handlers, id)
		b.running--
		h.ctx.deliver(resp)
	}
}

// destroy tears down every still-attached handler, emitting an
// "aborted during destruction" response for any that never completed.
func (b *batchRequestHandler) destroy() {
	b.mu.Lock()
	remaining := make([]*requestHandler, 0, len(b.handlers))
	for _, h := range b.handlers {
		remaining = append(remaining, h)
	}
	b.handlers = nil
	b.mu.Unlock()

	for _, h := range remaining {
		if resp := h.abortDuringDestruction(); resp != nil {
			h.ctx.deliver(resp)
		}
	}
}
