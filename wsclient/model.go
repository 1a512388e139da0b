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

// Package wsclient implements the per-session WebSocket client finite
// state machine (INIT/CONNECTING/WORKING/RECONNECTING/STOPPED), its
// event and send queues, and the manager that registers live clients
// with the network worker.
package wsclient

import (
	"net/http"
	"time"

	liberr "github.com/arkwire/netkit/errors"
)

// State is one of the five FSM states a Client can occupy.
type State int

const (
	StateInit State = iota
	StateConnecting
	StateWorking
	StateReconnecting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateConnecting:
		return "CONNECTING"
	case StateWorking:
		return "WORKING"
	case StateReconnecting:
		return "RECONNECTING"
	case StateStopped:
		return "STOPPED"
	}
	return "UNKNOWN"
}

// RateLimitSlot is one entry of a WebSocketConfig's ordered rate-limit
// list. Slot 0 is always the general limit.
type RateLimitSlot struct {
	RequestsPerPeriod int
	Period            time.Duration
}

// WebSocketConfig is hot-swappable: UpdateConfig tears down and
// reinitializes the transport rather than mutating it in place.
type WebSocketConfig struct {
	URL     string
	Headers http.Header

	CertFile string
	KeyFile  string
	CAFile   string

	ProxyServer string

	Reconnect         bool
	ReconnectAttempts int
	ReconnectDelay    time.Duration

	HandshakeTimeout time.Duration

	RateLimits []RateLimitSlot
}

// EventKind tags a WebSocketEventData's variant.
type EventKind int

const (
	EventOpen EventKind = iota
	EventMessage
	EventClose
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "Open"
	case EventMessage:
		return "Message"
	case EventClose:
		return "Close"
	case EventError:
		return "Error"
	}
	return "Unknown"
}

// Sender is the capability handle WebSocketEventData.Sender exposes so
// a callback invoked from inside an event can reply; sends issued from
// within an event handler are merely enqueued, never dispatched inline.
type Sender interface {
	SendMessage(message []byte, rateLimitID int, cb func(error))
	SendClose(statusCode int, cb func(error))
}

// WebSocketEventData is delivered either synchronously to an installed
// callback or buffered in the client's event queue for polling.
type WebSocketEventData struct {
	Kind       EventKind
	Message    []byte
	StatusCode int
	ErrorCode  liberr.CodeError
	Sender     Sender
}

// WebSocketSendInfo is one queued send intent: either a data frame or a
// close frame, gated by an optional positional rate limit.
type WebSocketSendInfo struct {
	Message     []byte
	RateLimitID int
	IsSendClose bool
	Status      int
	Callback    func(error)
}
