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

// Command netkit-probe is a small manual smoke-test CLI over the
// netkit façade: it drives one HTTP GET or one WebSocket echo round
// trip in sync mode and prints the outcome.
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arkwire/netkit"
	"github.com/arkwire/netkit/httpreq"
	"github.com/arkwire/netkit/wsclient"
)

var timeout time.Duration

func main() {
	root := &cobra.Command{
		Use:   "netkit-probe",
		Short: "Manual smoke test for the netkit HTTP and WebSocket pipelines",
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for a terminal result")

	root.AddCommand(httpCommand())
	root.AddCommand(wsCommand())

	if err := root.Execute(); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func httpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "http [url]",
		Short: "Issue one GET request and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := netkit.Init(false); err != nil {
				return err
			}
			defer func() { _ = netkit.Shutdown(time.Second) }()

			url := args[0]
			var resp *httpreq.HttpResponse
			netkit.HttpGet(url, nil, func(r *httpreq.HttpResponse) { resp = r })

			deadline := time.Now().Add(timeout)
			for resp == nil || !resp.Ready {
				if time.Now().After(deadline) {
					color.Red("timed out waiting for %s", url)
					return nil
				}
				netkit.Process()
				time.Sleep(time.Millisecond)
			}

			printResponse(url, resp)
			return nil
		},
	}
}

func printResponse(url string, resp *httpreq.HttpResponse) {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusBadRequest {
		color.Green("%s -> %d (%d bytes)", url, resp.StatusCode, len(resp.Content))
		return
	}
	color.Red("%s -> %d %s", url, resp.StatusCode, resp.ErrorMessage)
}

func wsCommand() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "ws [url]",
		Short: "Connect to a WebSocket endpoint, send one message, print events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := netkit.Init(false); err != nil {
				return err
			}
			defer func() { _ = netkit.Shutdown(time.Second) }()

			url := args[0]
			sent := false

			c := netkit.NewWebSocketClient(wsclient.WebSocketConfig{URL: url})
			c.OnEvent(func(ev wsclient.WebSocketEventData) {
				switch ev.Kind {
				case wsclient.EventOpen:
					color.Cyan("open")
				case wsclient.EventMessage:
					color.Green("message: %s", string(ev.Message))
				case wsclient.EventClose:
					color.Yellow("close: %d", ev.StatusCode)
				case wsclient.EventError:
					color.Red("error: %s", ev.ErrorCode.Error(nil).Error())
				}
			})
			c.Connect()

			deadline := time.Now().Add(timeout)
			for time.Now().Before(deadline) {
				netkit.Process()
				if c.IsConnected() && !sent {
					c.SendMessage([]byte(message), 0, nil)
					sent = true
				}
				if sent && c.State() != wsclient.StateWorking {
					break
				}
				time.Sleep(time.Millisecond)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&message, "message", "hello", "message to send once connected")
	return cmd
}
