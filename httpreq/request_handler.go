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
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	libtls "github.com/arkwire/netkit/certificates"
	liberr "github.com/arkwire/netkit/errors"
	"github.com/arkwire/netkit/httpcli"
)

// transferResult is what one RequestHandler attempt produces, whether
// it came from a real transfer or was synthesized (timeout, cancel,
// destruction).
type transferResult struct {
	id       uint64
	resp     *http.Response
	body     []byte
	err      error
	timedOut bool
	timing   timing
}

type timing struct {
	nameLookup    time.Duration
	connect       time.Duration
	appConnect    time.Duration
	preTransfer   time.Duration
	startTransfer time.Duration
	total         time.Duration
}

// requestHandler drives one in-flight HTTP transfer for one
// HttpRequestContext and classifies its outcome.
type requestHandler struct {
	ctx       *HttpRequestContext
	cancelFn  context.CancelFunc
	delivered bool
}

func newRequestHandler(rc *HttpRequestContext) *requestHandler {
	return &requestHandler{ctx: rc}
}

// start launches the transfer on its own goroutine and returns a
// channel that receives exactly one transferResult.
func (h *requestHandler) start() <-chan transferResult {
	out := make(chan transferResult, 1)

	req := h.ctx.Request
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	h.cancelFn = cancel

	go func() {
		started := time.Now()
		client, buildErr := h.buildClient()
		if buildErr != nil {
			out <- transferResult{id: h.ctx.ID, err: buildErr}
			return
		}

		httpReq, buildErr := h.buildHTTPRequest(ctx)
		if buildErr != nil {
			out <- transferResult{id: h.ctx.ID, err: buildErr}
			return
		}

		resp, err := client.Do(httpReq)
		total := time.Since(started)

		if err != nil {
			timedOut := ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded)
			out <- transferResult{id: h.ctx.ID, err: err, timedOut: timedOut, timing: timing{total: total}}
			return
		}
		defer func() { _ = resp.Body.Close() }()

		body, _ := io.ReadAll(resp.Body)

		out <- transferResult{
			id:     h.ctx.ID,
			resp:   resp,
			body:   body,
			timing: timing{total: total},
		}
	}()

	return out
}

func (h *requestHandler) buildClient() (*http.Client, error) {
	req := h.ctx.Request

	tr := httpcli.GetTransport(false, false, true)

	if req.CertFile != "" || req.KeyFile != "" || req.CAFile != "" {
		tls := libtls.New()
		if req.CertFile != "" && req.KeyFile != "" {
			if err := tls.AddCertificatePairFile(req.KeyFile, req.CertFile); err != nil {
				return nil, err
			}
		}
		if req.CAFile != "" {
			if err := tls.AddRootCAFile(req.CAFile); err != nil {
				return nil, err
			}
		}
		httpcli.SetTransportTLS(tr, tls, "")
	}

	if req.ProxyServer != "" && (req.ProxyType == ProxyHTTP || req.ProxyType == ProxyHTTPS) {
		if endpoint, err := url.Parse(req.ProxyServer); err == nil {
			httpcli.SetTransportProxy(tr, endpoint)
		}
	} else if req.ProxyServer != "" {
		return nil, ErrorInvalidConfiguration.Error(nil)
	}

	if !req.FollowLocation {
		return &http.Client{Transport: tr, CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}}, nil
	}

	max := req.MaxRedirects
	if max <= 0 {
		max = 10
	}

	return &http.Client{
		Transport: tr,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= max {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

func (h *requestHandler) buildHTTPRequest(ctx context.Context) (*http.Request, error) {
	req := h.ctx.Request

	method := req.Method
	if req.HeadOnly {
		method = http.MethodHead
	}

	var body io.Reader
	if !req.HeadOnly && len(req.Content) > 0 {
		body = bytes.NewReader(req.Content)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, err
	}

	if req.Headers != nil {
		for k, values := range req.Headers {
			for _, v := range values {
				httpReq.Header.Add(k, v)
			}
		}
	}

	if req.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", req.UserAgent)
	}
	if req.AcceptEncoding != "" && httpReq.Header.Get("Accept-Encoding") == "" {
		httpReq.Header.Set("Accept-Encoding", req.AcceptEncoding)
	}
	if req.Cookie != "" && httpReq.Header.Get("Cookie") == "" {
		httpReq.Header.Set("Cookie", req.Cookie)
	}

	return httpReq, nil
}

// handleCompletion classifies a transfer's outcome into a response and
// reports whether this attempt is terminal, per the outcome
// classification rules: timeout maps to 499, a transport failure with
// no usable status maps to 451, status >= 400 becomes an HTTP-status
// error, and the attempt is terminal when retries are disabled, the
// status is accepted, or the retry budget is exhausted.
func (h *requestHandler) handleCompletion(result transferResult) (*HttpResponse, bool) {
	req := h.ctx.Request
	resp := &HttpResponse{}

	switch {
	case result.timedOut:
		resp.StatusCode = 499
		resp.ErrorCode = ErrorTransportTimeout
	case result.err != nil:
		resp.StatusCode = 451
		resp.ErrorCode = classifyTransportError(result.err)
	case result.resp != nil:
		resp.StatusCode = result.resp.StatusCode
		resp.Headers = result.resp.Header.Clone()
		resp.Content = result.body
		if resp.StatusCode >= 400 {
			resp.ErrorCode = ErrorHTTPStatus
		}
	}

	if resp.ErrorCode != 0 {
		resp.ErrorMessage = resp.ErrorCode.Error(nil).Error()
	}

	resp.Total = result.timing.total

	h.ctx.RetryAttempt++
	resp.RetryAttempt = h.ctx.RetryAttempt

	terminal := req.RetryAttempts == 0 || req.acceptsStatus(resp.StatusCode) || h.ctx.RetryAttempt >= req.RetryAttempts

	if terminal {
		resp.Ready = true
	} else {
		h.ctx.StartTime = time.Now()
	}

	h.delivered = true
	return resp, terminal
}

func classifyTransportError(err error) liberr.CodeError {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such host") || strings.Contains(msg, "lookup"):
		return ErrorTransportResolve
	case strings.Contains(msg, "tls") || strings.Contains(msg, "certificate") || strings.Contains(msg, "x509"):
		return ErrorTransportTLS
	case strings.Contains(msg, "refused") || strings.Contains(msg, "connect"):
		return ErrorTransportConnect
	default:
		return ErrorTransportReadWrite
	}
}

// cancel synthesizes the CancelledByUser terminal response.
func (h *requestHandler) cancel() *HttpResponse {
	if h.cancelFn != nil {
		h.cancelFn()
	}
	h.delivered = true
	return cancelledResponse()
}

// abortDuringDestruction synthesizes the AbortedDuringDestruction
// terminal response for a handler whose transfer never completed.
func (h *requestHandler) abortDuringDestruction() *HttpResponse {
	if h.delivered {
		return nil
	}
	if h.cancelFn != nil {
		h.cancelFn()
	}
	h.delivered = true
	return abortedResponse()
}
