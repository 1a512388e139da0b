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
	"net/http"
	"net/url"
	"strings"
)

// Client is a per-host configuration holder: it owns an optional
// general and specific rate-limit id and submits requests that inherit
// its configuration, resolving relative paths against Host.
type Client struct {
	Manager  *Manager
	Host     string
	General  uint64
	Specific uint64
}

// NewClient returns a Client bound to host, submitting through mgr.
func NewClient(mgr *Manager, host string) *Client {
	return &Client{Manager: mgr, Host: strings.TrimRight(host, "/")}
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	u, err := url.Parse(c.Host)
	if err != nil || u.Host == "" {
		return path
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String()
}

// Get submits a GET request against path (resolved against Host) and
// returns the assigned request id.
func (c *Client) Get(path string, headers http.Header, cb func(*HttpResponse)) uint64 {
	id, _ := c.Manager.AddRequest(&HttpRequest{
		Method:              http.MethodGet,
		URL:                 c.resolve(path),
		Headers:             headers,
		GeneralRateLimitID:  c.General,
		SpecificRateLimitID: c.Specific,
	}, cb)
	return id
}

// Post submits a POST request with the given body against path.
func (c *Client) Post(path string, headers http.Header, content []byte, cb func(*HttpResponse)) uint64 {
	id, _ := c.Manager.AddRequest(&HttpRequest{
		Method:              http.MethodPost,
		URL:                 c.resolve(path),
		Headers:             headers,
		Content:             content,
		GeneralRateLimitID:  c.General,
		SpecificRateLimitID: c.Specific,
	}, cb)
	return id
}

// Request submits an arbitrary-method request against path.
func (c *Client) Request(req *HttpRequest, cb func(*HttpResponse)) uint64 {
	req.URL = c.resolve(req.URL)
	req.GeneralRateLimitID = c.General
	req.SpecificRateLimitID = c.Specific
	id, _ := c.Manager.AddRequest(req, cb)
	return id
}
