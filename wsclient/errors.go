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

	liberr "github.com/arkwire/netkit/errors"
)

// Error codes for the WebSocket client FSM.
const (
	ErrorConnectionFailed liberr.CodeError = iota + liberr.MinPkgWebSocket
	ErrorUnexpectedClose
	ErrorProtocolViolation
	ErrorUnsupportedMessageType
	ErrorInvalidCloseCode
	ErrorCompression

	ErrorNotConnected
	ErrorInvalidConfiguration
)

func init() {
	if liberr.ExistInMapMessage(ErrorConnectionFailed) {
		panic(fmt.Errorf("error code collision with package netkit/wsclient"))
	}
	liberr.RegisterIdFctMessage(ErrorConnectionFailed, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorConnectionFailed:
		return "websocket connection attempt failed"
	case ErrorUnexpectedClose:
		return "websocket connection closed unexpectedly"
	case ErrorProtocolViolation:
		return "websocket peer violated the protocol"
	case ErrorUnsupportedMessageType:
		return "websocket message type is not supported"
	case ErrorInvalidCloseCode:
		return "websocket close code is invalid"
	case ErrorCompression:
		return "websocket compression negotiation failed"
	case ErrorNotConnected:
		return "websocket client is not connected"
	case ErrorInvalidConfiguration:
		return "websocket configuration is invalid"
	}

	return liberr.NullMessage
}
