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

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	libtls "github.com/arkwire/netkit/certificates"
)

type fsmEventKind int

const (
	evConnectionOpened fsmEventKind = iota
	evConnectionClosed
	evConnectionError
	evMessageReceived
)

type fsmEvent struct {
	kind    fsmEventKind
	message []byte
	err     error
}

// Client is the per-session WebSocket FSM described in the component
// design: INIT/CONNECTING/WORKING/RECONNECTING/STOPPED, driven one
// non-blocking tick at a time by Process().
type Client struct {
	mu sync.Mutex

	state   State
	cfg     WebSocketConfig
	conn    *websocket.Conn
	connGen uint64
	connected bool

	callback   func(WebSocketEventData)
	eventQueue []WebSocketEventData
	pending    []WebSocketEventData

	sendQueue     []WebSocketSendInfo
	sendCallbacks []func()

	limiter *positionalLimiter

	reconnectAttempts int
	reconnectLimiter  *rate.Limiter
	lastErr           error

	incoming chan fsmEvent
}

// newReconnectLimiter paces dial attempts at most once per delay: a
// continuously-refilling token bucket is the right shape for backoff
// pacing (unlike the HTTP rate limiter's hard fixed window, which
// models admission quotas, not retry spacing).
func newReconnectLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		delay = time.Second
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// NewClient builds a Client in the INIT state. Connect must be called
// to initiate the first dial.
func NewClient(cfg WebSocketConfig) *Client {
	return &Client{
		cfg:              cfg,
		state:            StateInit,
		incoming:         make(chan fsmEvent, 64),
		limiter:          newPositionalLimiter(cfg.RateLimits),
		reconnectLimiter: newReconnectLimiter(cfg.ReconnectDelay),
	}
}

// OnEvent installs a synchronous callback; once installed, events are
// delivered from Process() instead of being buffered for polling.
func (c *Client) OnEvent(cb func(WebSocketEventData)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callback = cb
}

// State reports the FSM's current state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected is true iff an Open event has been observed and no
// matching Close/Error has been emitted since.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// LastError returns the transport error behind the most recent
// ErrorConnectionFailed event, if any.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// IsRunning reports whether the client still requires worker attention:
// it is not idle in INIT/STOPPED, or it has buffered work left to
// deliver.
func (c *Client) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInit && c.state != StateStopped {
		return true
	}
	return len(c.eventQueue) > 0 || len(c.sendQueue) > 0 || len(c.pending) > 0 || len(c.sendCallbacks) > 0
}

// Connect injects RequestConnect. Valid from INIT and STOPPED only;
// elsewhere it is a no-op per the transition table.
func (c *Client) Connect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateInit, StateStopped:
		if err := validateConfig(c.cfg); err != nil {
			c.enqueueEmitLocked(WebSocketEventData{Kind: EventError, ErrorCode: ErrorInvalidConfiguration})
			c.state = StateStopped
			return
		}
		c.dialLocked()
	}
}

// Disconnect injects RequestDisconnect and acknowledges via cb once
// the FSM has reached INIT.
func (c *Client) Disconnect(cb func()) {
	c.mu.Lock()
	switch c.state {
	case StateConnecting, StateWorking:
		c.teardownLocked()
		c.enqueueEmitLocked(WebSocketEventData{Kind: EventClose, StatusCode: 1000})
		c.state = StateInit
	case StateReconnecting:
		c.state = StateInit
	}
	c.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// UpdateConfig installs cfg and, wherever a transport is live or
// pending, tears it down and reinitializes with the new configuration
// rather than mutating transport-visible state in place.
func (c *Client) UpdateConfig(cfg WebSocketConfig, cb func(error)) {
	c.mu.Lock()
	switch c.state {
	case StateInit:
		c.cfg = cfg
		c.limiter = newPositionalLimiter(cfg.RateLimits)
		c.reconnectLimiter = newReconnectLimiter(cfg.ReconnectDelay)
	case StateConnecting, StateWorking:
		c.teardownLocked()
		c.cfg = cfg
		c.limiter = newPositionalLimiter(cfg.RateLimits)
		c.reconnectLimiter = newReconnectLimiter(cfg.ReconnectDelay)
		c.dialLocked()
	case StateReconnecting, StateStopped:
		c.cfg = cfg
		c.limiter = newPositionalLimiter(cfg.RateLimits)
		c.reconnectLimiter = newReconnectLimiter(cfg.ReconnectDelay)
		c.dialLocked()
	}
	c.mu.Unlock()

	if cb != nil {
		cb(nil)
	}
}

func validateConfig(cfg WebSocketConfig) error {
	if cfg.URL == "" {
		return fmt.Errorf("websocket config has no url")
	}
	return nil
}

// dialLocked starts an asynchronous dial attempt; the caller must hold
// c.mu. Success or failure arrives later as an fsmEvent on c.incoming.
func (c *Client) dialLocked() {
	c.state = StateConnecting
	cfg := c.cfg
	gen := c.connGen

	go func() {
		dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
		if dialer.HandshakeTimeout <= 0 {
			dialer.HandshakeTimeout = 10 * time.Second
		}

		if cfg.CertFile != "" || cfg.CAFile != "" {
			tlsCfg := libtls.New()
			if cfg.CertFile != "" && cfg.KeyFile != "" {
				_ = tlsCfg.AddCertificatePairFile(cfg.KeyFile, cfg.CertFile)
			}
			if cfg.CAFile != "" {
				_ = tlsCfg.AddRootCAFile(cfg.CAFile)
			}
			dialer.TLSClientConfig = tlsCfg.TlsConfig("")
		}

		if cfg.ProxyServer != "" {
			if u, err := url.Parse(cfg.ProxyServer); err == nil {
				dialer.Proxy = http.ProxyURL(u)
			}
		}

		conn, _, err := dialer.Dial(cfg.URL, cfg.Headers)
		if err != nil {
			c.pushEvent(gen, fsmEvent{kind: evConnectionError, err: err})
			return
		}

		c.mu.Lock()
		if gen != c.connGen {
			c.mu.Unlock()
			_ = conn.Close()
			return
		}
		c.conn = conn
		c.mu.Unlock()

		c.pushEvent(gen, fsmEvent{kind: evConnectionOpened})
		c.readPump(gen, conn)
	}()
}

func (c *Client) readPump(gen uint64, conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.pushEvent(gen, fsmEvent{kind: evConnectionClosed, err: err})
			return
		}
		c.pushEvent(gen, fsmEvent{kind: evMessageReceived, message: msg})
	}
}

func (c *Client) pushEvent(gen uint64, ev fsmEvent) {
	c.mu.Lock()
	current := c.connGen
	c.mu.Unlock()
	if gen != current {
		return
	}

	select {
	case c.incoming <- ev:
	default:
	}
}

// teardownLocked invalidates any in-flight dial/read-pump goroutine
// from a previous generation and closes the live connection, if any.
// The caller must hold c.mu.
func (c *Client) teardownLocked() {
	c.connGen++
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.connected = false
}

func (c *Client) enqueueEmitLocked(ev WebSocketEventData) {
	ev.Sender = c
	c.pending = append(c.pending, ev)
}

func (c *Client) allowReconnectLocked() bool {
	if !c.cfg.Reconnect {
		return false
	}
	if c.cfg.ReconnectAttempts > 0 && c.reconnectAttempts >= c.cfg.ReconnectAttempts {
		return false
	}
	return true
}

func (c *Client) applyEvent(ev fsmEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.kind {
	case evConnectionOpened:
		if c.state != StateConnecting {
			return
		}
		c.state = StateWorking
		c.connected = true
		c.reconnectAttempts = 0
		c.enqueueEmitLocked(WebSocketEventData{Kind: EventOpen})

	case evConnectionClosed, evConnectionError:
		if c.state != StateConnecting && c.state != StateWorking {
			return
		}

		status := 1000
		if ev.kind == evConnectionError {
			status = 1001
			c.lastErr = ev.err
			c.enqueueEmitLocked(WebSocketEventData{Kind: EventError, ErrorCode: ErrorConnectionFailed})
		}

		c.teardownLocked()
		c.enqueueEmitLocked(WebSocketEventData{Kind: EventClose, StatusCode: status})

		if c.allowReconnectLocked() {
			c.state = StateReconnecting
		} else {
			c.state = StateInit
		}

	case evMessageReceived:
		if c.state != StateWorking && c.state != StateReconnecting {
			return
		}
		c.enqueueEmitLocked(WebSocketEventData{Kind: EventMessage, Message: ev.message})
	}
}

func (c *Client) drainIncoming() bool {
	busy := false
	for {
		select {
		case ev := <-c.incoming:
			c.applyEvent(ev)
			busy = true
		default:
			return busy
		}
	}
}

func (c *Client) tickReconnect() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateReconnecting {
		return false
	}

	if !c.allowReconnectLocked() {
		c.state = StateInit
		return false
	}

	if !c.reconnectLimiter.Allow() {
		return true
	}

	c.reconnectAttempts++
	c.dialLocked()
	return true
}

func (c *Client) dispatchPendingEmits() bool {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	callback := c.callback
	c.mu.Unlock()

	if len(pending) == 0 {
		return false
	}

	for _, ev := range pending {
		if callback != nil {
			callback(ev)
			continue
		}
		c.mu.Lock()
		c.eventQueue = append(c.eventQueue, ev)
		c.mu.Unlock()
	}

	return true
}

// SendMessage implements Sender: the send is merely enqueued, even
// when called from within an event callback running on the worker
// goroutine.
func (c *Client) SendMessage(message []byte, rateLimitID int, cb func(error)) {
	c.mu.Lock()
	c.sendQueue = append(c.sendQueue, WebSocketSendInfo{Message: message, RateLimitID: rateLimitID, Callback: cb})
	c.mu.Unlock()
}

// SendClose implements Sender.
func (c *Client) SendClose(statusCode int, cb func(error)) {
	c.mu.Lock()
	c.sendQueue = append(c.sendQueue, WebSocketSendInfo{IsSendClose: true, Status: statusCode, Callback: cb})
	c.mu.Unlock()
}

func (c *Client) driveSendQueue() bool {
	c.mu.Lock()
	queue := c.sendQueue
	c.sendQueue = nil
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()

	if len(queue) == 0 {
		return false
	}

	var retry []WebSocketSendInfo

	for _, item := range queue {
		if !c.limiter.allow(item.RateLimitID) {
			retry = append(retry, item)
			continue
		}

		var err error
		switch {
		case !connected || conn == nil:
			err = ErrorNotConnected.Error(nil)
		case item.IsSendClose:
			err = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(item.Status, ""))
		default:
			err = conn.WriteMessage(websocket.TextMessage, item.Message)
		}

		if item.Callback != nil {
			cb := item.Callback
			sendErr := err
			c.mu.Lock()
			c.sendCallbacks = append(c.sendCallbacks, func() { cb(sendErr) })
			c.mu.Unlock()
		}
	}

	if len(retry) > 0 {
		c.mu.Lock()
		c.sendQueue = append(retry, c.sendQueue...)
		c.mu.Unlock()
	}

	return true
}

func (c *Client) drainSendCallbacks() bool {
	c.mu.Lock()
	callbacks := c.sendCallbacks
	c.sendCallbacks = nil
	c.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}

	return len(callbacks) > 0
}

// ReceiveEvent pops one buffered event for polling mode (no callback
// installed). Returns false when the queue is empty.
func (c *Client) ReceiveEvent() (WebSocketEventData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.eventQueue) == 0 {
		return WebSocketEventData{}, false
	}

	ev := c.eventQueue[0]
	c.eventQueue = c.eventQueue[1:]
	return ev, true
}

// ReceiveEvents drains the whole buffered event queue for polling mode.
func (c *Client) ReceiveEvents() []WebSocketEventData {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.eventQueue
	c.eventQueue = nil
	return out
}

// Process implements worker.TaskManager-shaped driving (one
// non-blocking tick): it applies any pending transport events, ticks
// the reconnect policy, dispatches buffered emits, and drives the send
// queue and its completion callbacks.
func (c *Client) Process() bool {
	busy := c.drainIncoming()
	busy = c.tickReconnect() || busy
	busy = c.dispatchPendingEmits() || busy
	busy = c.driveSendQueue() || busy
	busy = c.drainSendCallbacks() || busy
	return busy
}

// Shutdown drains the FSM to STOPPED, tearing down any live transport.
// A client that was connected emits its paired Close (1000) before
// Shutdown returns.
func (c *Client) Shutdown() {
	c.mu.Lock()
	wasConnected := c.connected
	c.teardownLocked()
	if wasConnected {
		c.enqueueEmitLocked(WebSocketEventData{Kind: EventClose, StatusCode: 1000})
	}
	c.state = StateStopped
	c.mu.Unlock()

	c.dispatchPendingEmits()
}
