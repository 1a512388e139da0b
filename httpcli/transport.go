/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package httpcli

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	libtls "github.com/arkwire/netkit/certificates"
)

// GetTransport builds a bare *http.Transport with sane pooling defaults.
// disableKeepAlive/disableCompression mirror the matching http.Transport fields,
// http2Tr enables the opportunistic HTTP/2 upgrade.
func GetTransport(disableKeepAlive, disableCompression, http2Tr bool) *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DisableKeepAlives:     disableKeepAlive,
		DisableCompression:    disableCompression,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   5,
		MaxConnsPerHost:       25,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 3 * time.Second,
		ForceAttemptHTTP2:     http2Tr,
	}
}

// SetTransportTLS attaches a TLS client config to the transport, falling back
// to a TLS 1.2-1.3 default when cfg is nil.
func SetTransportTLS(tr *http.Transport, cfg libtls.TLSConfig, servername string) {
	if tr == nil {
		return
	}

	if cfg == nil {
		cfg = libtls.New()
		cfg.SetVersionMin(tls.VersionTLS12)
		cfg.SetVersionMax(tls.VersionTLS13)
	}

	tr.TLSClientConfig = cfg.TlsConfig(servername)
}

// SetTransportDial overrides the transport dialer to force connections onto a
// given network/IP, optionally binding to a local address.
func SetTransportDial(tr *http.Transport, enable bool, network Network, ip, local string) {
	if tr == nil || !enable || len(ip) < 1 {
		return
	}

	d := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 15 * time.Second,
	}

	if len(local) > 0 {
		if laddr, e := net.ResolveTCPAddr(network.Code(), local+":0"); e == nil {
			d.LocalAddr = laddr
		}
	}

	tr.DialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return d.DialContext(ctx, network.Code(), ip)
	}
}

// SetTransportProxy configures a fixed forward proxy endpoint on the transport.
func SetTransportProxy(tr *http.Transport, endpoint *url.URL) {
	if tr == nil || endpoint == nil {
		return
	}

	tr.Proxy = http.ProxyURL(endpoint)
}

// buildClient wraps a configured transport into an *http.Client, applying the
// given global timeout (0 disables the client-level timeout).
func buildClient(tr *http.Transport, timeout time.Duration) (*http.Client, error) {
	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

// GetClientTimeout returns a plain *http.Client configured with the given
// timeout and keep-alive behaviour, without any TLS/force-IP customization.
func GetClientTimeout(_ string, disableKeepAlive bool, timeout time.Duration) (*http.Client, error) {
	return buildClient(GetTransport(disableKeepAlive, false, true), timeout)
}

// GetClientTls returns an *http.Client with a TLS-configured transport for
// the given server name.
func GetClientTls(servername string, cfg libtls.TLSConfig, http2Tr bool, timeout time.Duration) (*http.Client, error) {
	tr := GetTransport(false, false, http2Tr)
	SetTransportTLS(tr, cfg, servername)
	return buildClient(tr, timeout)
}

// GetClientTlsForceIp is like GetClientTls but additionally forces the
// connection onto a specific network/IP pair.
func GetClientTlsForceIp(network Network, ip, servername string, cfg libtls.TLSConfig, http2Tr bool, timeout time.Duration) (*http.Client, error) {
	tr := GetTransport(false, false, http2Tr)
	SetTransportTLS(tr, cfg, servername)
	SetTransportDial(tr, true, network, ip, "")
	return buildClient(tr, timeout)
}

// GetClientError returns the default DNS-mapper-backed client for a given
// host, used by the legacy single-shot HTTP helper in http.go.
func GetClientError(_ string) (*http.Client, error) {
	return GetClient(), nil
}
