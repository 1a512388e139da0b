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

import "sync"

// Manager owns every live Client and satisfies worker.TaskManager so a
// single network worker can drive the whole fleet with one Process()
// call per tick. Go has no weak-reference primitive, so membership
// here is a plain strong-reference map; a client is only dropped by an
// explicit Remove or by Shutdown.
type Manager struct {
	mu      sync.Mutex
	nextID  uint64
	clients map[uint64]*Client
}

// NewManager returns an empty WebSocketManager.
func NewManager() *Manager {
	return &Manager{clients: make(map[uint64]*Client)}
}

// CreateClient builds a new Client in the INIT state, registers it
// under a fresh id, and returns both. The caller still owns calling
// Connect on it.
func (m *Manager) CreateClient(cfg WebSocketConfig) (*Client, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID

	c := NewClient(cfg)
	m.clients[id] = c

	return c, id
}

// Lookup returns the client registered under id, if any.
func (m *Manager) Lookup(id uint64) (*Client, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[id]
	return c, ok
}

// Remove shuts down and unregisters the client under id. A second call
// on an already-removed id is a no-op.
func (m *Manager) Remove(id uint64) {
	m.mu.Lock()
	c, ok := m.clients[id]
	if ok {
		delete(m.clients, id)
	}
	m.mu.Unlock()

	if ok {
		c.Shutdown()
	}
}

// Process implements worker.TaskManager: it drives every registered
// client exactly once without holding the manager's lock across any
// client's own Process call.
func (m *Manager) Process() bool {
	m.mu.Lock()
	snapshot := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		snapshot = append(snapshot, c)
	}
	m.mu.Unlock()

	busy := false
	for _, c := range snapshot {
		if c.Process() {
			busy = true
		}
	}
	return busy
}

// IsLoaded reports whether any registered client still requires
// worker attention.
func (m *Manager) IsLoaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.clients {
		if c.IsRunning() {
			return true
		}
	}
	return false
}

// Shutdown tears down every registered client and empties the
// registry. Implements worker.TaskManager.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	snapshot := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		snapshot = append(snapshot, c)
	}
	m.clients = make(map[uint64]*Client)
	m.mu.Unlock()

	for _, c := range snapshot {
		c.Shutdown()
	}
}
