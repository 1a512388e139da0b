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

package wsclient

import "github.com/arkwire/netkit/httpreq"

// positionalLimiter maps a WebSocketConfig's ordered RateLimitSlots
// onto the same fixed-window admission primitive the HTTP pipeline
// uses, keyed by slot index rather than an opaque id (slot 0 is
// always "general"). Reusing httpreq.RateLimiter here avoids a second
// hand-rolled fixed-window implementation for what is the same
// algorithm applied to a positional rather than id-keyed limit set.
type positionalLimiter struct {
	limiter *httpreq.RateLimiter
	slots   []uint64
}

func newPositionalLimiter(cfg []RateLimitSlot) *positionalLimiter {
	p := &positionalLimiter{limiter: httpreq.NewRateLimiter()}
	for _, slot := range cfg {
		p.slots = append(p.slots, p.limiter.CreateLimit(slot.RequestsPerPeriod, slot.Period))
	}
	return p
}

// allow reports whether position is admitted right now. A position
// beyond the configured slot list (or the general slot 0 when no
// slots are configured at all) is always admitted.
func (p *positionalLimiter) allow(position int) bool {
	if position < 0 || position >= len(p.slots) {
		return true
	}
	return p.limiter.AllowRequest(p.slots[position], 0)
}
