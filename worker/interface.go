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

// Package worker implements the process-wide network scheduling singleton.
//
// A single background goroutine drives every registered TaskManager's
// non-blocking Process() call in a tight, notify-or-timeout loop, so that
// HTTP and WebSocket components never need their own polling goroutine.
package worker

import (
	"time"

	liberr "github.com/arkwire/netkit/errors"
)

// TaskManager is implemented by any component that wants the worker
// goroutine to drive it. Process must never block: it performs one
// non-blocking pass over whatever internal work is ready and returns.
type TaskManager interface {
	// Process performs one non-blocking unit of work. Returning true
	// tells the worker loop that outstanding work remains, and the
	// worker should come back without sleeping the full idle interval.
	Process() (busy bool)

	// Shutdown releases any resource owned by the manager. Called once,
	// after the manager has been unregistered from the worker.
	Shutdown()
}

// ErrorHandler observes errors surfaced by managers during Process().
// Handlers run in the order they were added; a handler must not block.
type ErrorHandler func(source string, err liberr.Error)

// Worker is the network worker singleton's public surface, matching
// the External Interfaces lifecycle: Init/Process/Shutdown plus manager
// registration and task submission used by httpreq and wsclient.
type Worker interface {
	// Start launches the background goroutine. Calling Start twice
	// returns ErrorAlreadyRunning.
	Start() liberr.Error

	// Stop signals the background goroutine to exit and waits for it to
	// do so. Calling Stop while not running returns ErrorAlreadyStopped.
	Stop() liberr.Error

	// IsRunning reports whether the background goroutine is active.
	IsRunning() bool

	// RegisterManager attaches a TaskManager under a unique name. The
	// worker calls mgr.Process() on every loop iteration from the time
	// it is registered until it is unregistered or the worker stops.
	RegisterManager(name string, mgr TaskManager) liberr.Error

	// UnregisterManager detaches and shuts down a previously registered
	// manager.
	UnregisterManager(name string) liberr.Error

	// AddErrorHandler appends a handler to the error-handler chain. A
	// default handler that logs at ErrorLevel is always installed first
	// and cannot be removed.
	AddErrorHandler(h ErrorHandler)

	// ReportError runs the error-handler chain for a manager-raised
	// error. Managers call this from within Process() instead of
	// propagating the error up the call stack, since Process() itself
	// returns no error.
	ReportError(source string, err liberr.Error)

	// AddTask enqueues a one-shot function to run on the worker
	// goroutine's next iteration, ahead of manager polling.
	AddTask(fn func()) liberr.Error

	// Notify wakes the worker goroutine immediately instead of waiting
	// for the idle interval to elapse. Managers call this after adding
	// work so it is picked up without the busy-poll delay.
	Notify()

	// Drive runs one non-blocking sweep over every registered manager
	// and returns whether any of them reported outstanding work. Used
	// by sync-mode callers that drive the worker from their own loop
	// instead of starting the background goroutine.
	Drive() bool

	// Shutdown stops the worker (if running), unregisters and shuts
	// down every manager, and waits up to timeout for the goroutine to
	// exit. A timeout of zero waits indefinitely.
	Shutdown(timeout time.Duration) liberr.Error
}

// Instance returns the process-wide Worker singleton, creating it on
// first call.
func Instance() Worker {
	once.Do(func() {
		singleton = newWorker()
	})
	return singleton
}
