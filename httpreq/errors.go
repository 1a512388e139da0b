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
	"fmt"

	liberr "github.com/arkwire/netkit/errors"
)

// Error codes for the HTTP request pipeline (RateLimiter, RequestHandler,
// BatchRequestHandler, HttpRequestManager).
const (
	// Transport-category errors: the transfer engine reported a failure
	// before an HTTP status was available.
	ErrorTransportResolve liberr.CodeError = iota + liberr.MinPkgHttpReq
	ErrorTransportConnect
	ErrorTransportTLS
	ErrorTransportReadWrite
	ErrorTransportTimeout

	// HTTP-status category: the transfer completed but the response
	// status was not in the request's accepted set.
	ErrorHTTPStatus

	// Client-internal category.
	ErrorCancelledByUser
	ErrorAbortedDuringDestruction
	ErrorClientNotInitialized
	ErrorInvalidConfiguration

	ErrorRequestNil
	ErrorManagerShuttingDown
	ErrorUnknownRequestID
)

func init() {
	if liberr.ExistInMapMessage(ErrorTransportResolve) {
		panic(fmt.Errorf("error code collision with package netkit/httpreq"))
	}
	liberr.RegisterIdFctMessage(ErrorTransportResolve, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorTransportResolve:
		return "DNS resolution failed"
	case ErrorTransportConnect:
		return "connection to remote host failed"
	case ErrorTransportTLS:
		return "TLS handshake failed"
	case ErrorTransportReadWrite:
		return "error while reading or writing the transfer"
	case ErrorTransportTimeout:
		return "the request timed out"
	case ErrorHTTPStatus:
		return "response status code is not in the request's accepted set"
	case ErrorCancelledByUser:
		return "request was cancelled by the caller"
	case ErrorAbortedDuringDestruction:
		return "request handler was destroyed before a response was delivered"
	case ErrorClientNotInitialized:
		return "the network worker has not been started"
	case ErrorInvalidConfiguration:
		return "the request configuration is invalid"
	case ErrorRequestNil:
		return "the submitted request is nil"
	case ErrorManagerShuttingDown:
		return "the request manager is shutting down"
	case ErrorUnknownRequestID:
		return "no pending or in-flight request matches this id"
	}

	return liberr.NullMessage
}
