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
	"fmt"

	liberr "github.com/arkwire/netkit/errors"
)

// Error codes for the network worker singleton.
const (
	ErrorNotInitialized  liberr.CodeError = iota + liberr.MinPkgWorker // Worker singleton has not been initialized
	ErrorAlreadyRunning                                                // Worker is already started
	ErrorAlreadyStopped                                                // Worker is already stopped
	ErrorManagerExists                                                 // A manager is already registered under this name
	ErrorManagerMissing                                                // No manager registered under this name
	ErrorShutdownTimeout                                               // Shutdown did not complete within the given deadline
)

func init() {
	if liberr.ExistInMapMessage(ErrorNotInitialized) {
		panic(fmt.Errorf("error code collision with package netkit/worker"))
	}
	liberr.RegisterIdFctMessage(ErrorNotInitialized, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorNotInitialized:
		return "network worker has not been initialized"
	case ErrorAlreadyRunning:
		return "network worker is already running"
	case ErrorAlreadyStopped:
		return "network worker is already stopped"
	case ErrorManagerExists:
		return "a task manager is already registered under this name"
	case ErrorManagerMissing:
		return "no task manager registered under this name"
	case ErrorShutdownTimeout:
		return "shutdown did not complete before the deadline"
	}

	return liberr.NullMessage
}
