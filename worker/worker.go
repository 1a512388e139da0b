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

package worker

import (
	"sync"
	"time"

	liberr "github.com/arkwire/netkit/errors"
	liblog "github.com/arkwire/netkit/logger"
)

// idleInterval bounds how long the worker goroutine sleeps between
// Process() sweeps when nothing has called Notify.
const idleInterval = time.Millisecond

var (
	once      sync.Once
	singleton Worker
)

type worker struct {
	mu      sync.Mutex
	running bool
	wake    chan struct{}
	done    chan struct{}
	tasks   chan func()

	managers map[string]TaskManager
	handlers []ErrorHandler
}

func newWorker() *worker {
	w := &worker{
		wake:     make(chan struct{}, 1),
		tasks:    make(chan func(), 256),
		managers: make(map[string]TaskManager),
	}

	w.handlers = append(w.handlers, defaultErrorHandler)

	return w
}

func defaultErrorHandler(source string, err liberr.Error) {
	liblog.GetDefault().Entry(liblog.ErrorLevel, "network worker manager reported an error").
		FieldAdd("component", "worker").
		FieldAdd("manager", source).
		ErrorAdd(true, err).
		Log()
}

func (w *worker) Start() liberr.Error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrorAlreadyRunning.Error(nil)
	}

	w.running = true
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.loop(w.done)

	return nil
}

func (w *worker) Stop() liberr.Error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return ErrorAlreadyStopped.Error(nil)
	}
	w.running = false
	done := w.done
	w.mu.Unlock()

	w.Notify()
	<-done

	return nil
}

func (w *worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *worker) loop(done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(idleInterval)
	defer timer.Stop()

	for {
		w.mu.Lock()
		running := w.running
		w.mu.Unlock()
		if !running {
			return
		}

		w.drainTasks()
		busy := w.processManagers()

		if busy {
			continue
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(idleInterval)

		select {
		case <-w.wake:
		case <-timer.C:
		}
	}
}

func (w *worker) drainTasks() {
	for {
		select {
		case fn := <-w.tasks:
			fn()
		default:
			return
		}
	}
}

// Drive runs exactly one sweep (drain tasks, then poll every manager
// once) without requiring the background goroutine to be running. This
// is what sync-mode callers use as their own external drive loop.
func (w *worker) Drive() bool {
	w.drainTasks()
	return w.processManagers()
}

func (w *worker) processManagers() bool {
	w.mu.Lock()
	snapshot := make(map[string]TaskManager, len(w.managers))
	for name, mgr := range w.managers {
		snapshot[name] = mgr
	}
	w.mu.Unlock()

	busy := false
	for _, mgr := range snapshot {
		if mgr.Process() {
			busy = true
		}
	}

	return busy
}

func (w *worker) RegisterManager(name string, mgr TaskManager) liberr.Error {
	if name == "" || mgr == nil {
		return ErrorManagerMissing.Error(nil)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.managers[name]; ok {
		return ErrorManagerExists.Error(nil)
	}

	w.managers[name] = mgr
	return nil
}

func (w *worker) UnregisterManager(name string) liberr.Error {
	w.mu.Lock()
	mgr, ok := w.managers[name]
	if ok {
		delete(w.managers, name)
	}
	w.mu.Unlock()

	if !ok {
		return ErrorManagerMissing.Error(nil)
	}

	mgr.Shutdown()
	return nil
}

func (w *worker) AddErrorHandler(h ErrorHandler) {
	if h == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

func (w *worker) ReportError(source string, err liberr.Error) {
	if err == nil {
		return
	}

	w.mu.Lock()
	handlers := make([]ErrorHandler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, h := range handlers {
		h(source, err)
	}
}

func (w *worker) AddTask(fn func()) liberr.Error {
	if fn == nil {
		return ErrorManagerMissing.Error(nil)
	}

	select {
	case w.tasks <- fn:
		w.Notify()
		return nil
	default:
		return ErrorShutdownTimeout.Error(nil)
	}
}

func (w *worker) Notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *worker) Shutdown(timeout time.Duration) liberr.Error {
	w.mu.Lock()
	running := w.running
	names := make([]string, 0, len(w.managers))
	for name := range w.managers {
		names = append(names, name)
	}
	w.mu.Unlock()

	for _, name := range names {
		_ = w.UnregisterManager(name)
	}

	if !running {
		return nil
	}

	if timeout <= 0 {
		return w.Stop()
	}

	result := make(chan liberr.Error, 1)
	go func() {
		result <- w.Stop()
	}()

	select {
	case err := <-result:
		return err
	case <-time.After(timeout):
		return ErrorShutdownTimeout.Error(nil)
	}
}
