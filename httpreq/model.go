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

// Package httpreq implements the HTTP request pipeline: a rate limiter,
// per-transfer request handlers, batch drivers sharing a worker tick, and
// the task manager that ties them together for the network worker.
package httpreq

import (
	"net/http"
	"time"

	liberr "github.com/arkwire/netkit/errors"
)

// ProxyType identifies the proxy dialing strategy for a request.
type ProxyType uint8

const (
	ProxyNone ProxyType = iota
	ProxyHTTP
	ProxyHTTPS
	ProxySOCKS4
	ProxySOCKS5
)

// HttpRequest is the immutable-once-submitted description of a single
// HTTP transfer. ValidStatuses defaults to {200} when left nil.
type HttpRequest struct {
	Method  string
	URL     string
	Headers http.Header
	Content []byte

	UserAgent       string
	AcceptEncoding  string
	Cookie          string
	CookieFile      string
	ClearCookieFile bool

	CertFile string
	KeyFile  string
	CAFile   string
	CAPath   string

	ProxyServer string
	ProxyAuth   string
	ProxyType   ProxyType
	ProxyTunnel bool

	InterfaceName string
	UseInterface  bool

	FollowLocation bool
	MaxRedirects   int
	AutoReferer    bool
	Timeout        time.Duration
	ConnectTimeout time.Duration
	HeadOnly       bool
	Verbose        bool
	DebugHeader    bool

	GeneralRateLimitID  uint64
	SpecificRateLimitID uint64
	ValidStatuses       map[int]struct{}
	RetryAttempts       int
	RetryDelay          time.Duration
}

func (r *HttpRequest) acceptsStatus(code int) bool {
	if len(r.ValidStatuses) == 0 {
		return code == http.StatusOK
	}
	_, ok := r.ValidStatuses[code]
	return ok
}

// HttpResponse is written exactly once, by the attempt that makes it
// terminal. Ready is the terminal flag referenced throughout the
// pipeline's invariants.
type HttpResponse struct {
	Headers      http.Header
	Content      []byte
	ErrorCode    liberr.CodeError
	ErrorMessage string
	StatusCode   int
	RetryAttempt int
	Ready        bool

	NameLookup    time.Duration
	Connect       time.Duration
	AppConnect    time.Duration
	PreTransfer   time.Duration
	StartTransfer time.Duration
	Total         time.Duration
}

// HttpRequestContext is the lifecycle record the manager owns for one
// submitted request across however many retry attempts it takes to
// become terminal.
type HttpRequestContext struct {
	ID           uint64
	Request      *HttpRequest
	Callback     func(*HttpResponse)
	RetryAttempt int
	StartTime    time.Time
}

func (c *HttpRequestContext) deliver(resp *HttpResponse) {
	if c.Callback != nil {
		c.Callback(resp)
	}
}

func abortedResponse() *HttpResponse {
	return &HttpResponse{
		ErrorCode:    ErrorAbortedDuringDestruction,
		ErrorMessage: ErrorAbortedDuringDestruction.Error(nil).Error(),
		StatusCode:   499,
		Ready:        true,
	}
}

func cancelledResponse() *HttpResponse {
	return &HttpResponse{
		ErrorCode:    ErrorCancelledByUser,
		ErrorMessage: ErrorCancelledByUser.Error(nil).Error(),
		StatusCode:   499,
		Ready:        true,
	}
}

func synthResponse(code liberr.CodeError, status int) *HttpResponse {
	return &HttpResponse{
		ErrorCode:    code,
		ErrorMessage: code.Error(nil).Error(),
		StatusCode:   status,
		Ready:        true,
	}
}
