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

// Package netkit is the external façade over the network worker, the
// HTTP request pipeline, and the WebSocket client: Init registers the
// built-in managers with the process-wide worker singleton, and the
// free functions below submit work against them.
package netkit

import (
	"net/http"
	"sync"
	"time"

	liberr "github.com/arkwire/netkit/errors"
	"github.com/arkwire/netkit/httpreq"
	"github.com/arkwire/netkit/worker"
	"github.com/arkwire/netkit/wsclient"
)

const (
	httpManagerName      = "http"
	websocketManagerName = "websocket"
)

var (
	mu          sync.Mutex
	initialized bool
	httpMgr     *httpreq.Manager
	wsMgr       *wsclient.Manager
)

// Init registers the built-in HTTP and WebSocket managers with the
// worker singleton and, when async is true, starts its background
// goroutine. Calling Init again while already initialized is a no-op.
func Init(async bool) liberr.Error {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return nil
	}

	httpMgr = httpreq.NewManager()
	wsMgr = wsclient.NewManager()

	w := worker.Instance()
	if err := w.RegisterManager(httpManagerName, httpMgr); err != nil {
		return err
	}
	if err := w.RegisterManager(websocketManagerName, wsMgr); err != nil {
		return err
	}

	if async {
		if err := w.Start(); err != nil {
			return err
		}
	}

	initialized = true
	return nil
}

// Deinit stops the worker's background goroutine, if running, without
// unregistering the managers. A subsequent Process call still drives
// them in sync mode.
func Deinit() liberr.Error {
	mu.Lock()
	defer mu.Unlock()

	if !initialized {
		return nil
	}

	w := worker.Instance()
	if !w.IsRunning() {
		return nil
	}
	return w.Stop()
}

// Process drives one non-blocking sweep of every registered manager;
// sync-mode callers that never called Init(true) use this as their own
// drive loop.
func Process() bool {
	return worker.Instance().Drive()
}

// Shutdown stops the worker and tears down every registered manager.
func Shutdown(timeout time.Duration) liberr.Error {
	mu.Lock()
	initialized = false
	mu.Unlock()

	return worker.Instance().Shutdown(timeout)
}

// CreateRateLimit registers a fixed-window HTTP rate limit of n
// requests per period and returns its id. n == 0 means unlimited.
func CreateRateLimit(n int, period time.Duration) uint64 {
	return httpMgr.Limiter().CreateLimit(n, period)
}

// CreateRateLimitRPM is CreateRateLimit expressed as requests per
// minute.
func CreateRateLimitRPM(n int) uint64 {
	return httpMgr.Limiter().CreateLimitRPM(n)
}

// CreateRateLimitRPS is CreateRateLimit expressed as requests per
// second.
func CreateRateLimitRPS(n int) uint64 {
	return httpMgr.Limiter().CreateLimitRPS(n)
}

// RemoveLimit removes a previously created HTTP rate limit.
func RemoveLimit(id uint64) bool {
	return httpMgr.Limiter().RemoveLimit(id)
}

// HttpRequest submits an arbitrary HTTP request and returns its id.
func HttpRequest(req *httpreq.HttpRequest, cb func(*httpreq.HttpResponse)) uint64 {
	id, _ := httpMgr.AddRequest(req, cb)
	return id
}

// HttpGet is a thin wrapper over HttpRequest for GET.
func HttpGet(url string, headers http.Header, cb func(*httpreq.HttpResponse)) uint64 {
	return HttpRequest(&httpreq.HttpRequest{Method: http.MethodGet, URL: url, Headers: headers}, cb)
}

// HttpPost is a thin wrapper over HttpRequest for POST.
func HttpPost(url string, headers http.Header, content []byte, cb func(*httpreq.HttpResponse)) uint64 {
	return HttpRequest(&httpreq.HttpRequest{Method: http.MethodPost, URL: url, Headers: headers, Content: content}, cb)
}

// CancelRequestByID cancels a pending or in-flight HTTP request; cb
// fires once the cancellation has been observed, even if id was
// already terminal or unknown.
func CancelRequestByID(id uint64, cb func()) {
	httpMgr.CancelRequestByID(id, cb)
}

// NewHttpClient returns a per-host HttpClient submitting through the
// shared HTTP manager.
func NewHttpClient(host string) *httpreq.Client {
	return httpreq.NewClient(httpMgr, host)
}

// NewWebSocketClient creates and registers a WebSocketClient with the
// shared WebSocket manager. The caller still drives Connect().
func NewWebSocketClient(cfg wsclient.WebSocketConfig) *wsclient.Client {
	c, _ := wsMgr.CreateClient(cfg)
	return c
}
