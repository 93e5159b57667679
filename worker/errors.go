/*
 * MIT License
 *
 * Copyright (c) 2026 Ruyi Li
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
 */

package worker

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadySpawned is returned when Spawn is invoked more than once.
	ErrAlreadySpawned = errors.New("worker has already been spawned")

	// ErrNotSpawned is returned when an operation requires a spawned process
	// but none exists.
	ErrNotSpawned = errors.New("worker has not been spawned")

	// ErrWorkerExited is the failure delivered to every pending call when the
	// underlying process exits before responding.
	ErrWorkerExited = errors.New("worker process exited")

	// ErrHandshakeFailed indicates the childInit or init handshake was
	// rejected by the process. The worker remains usable only for Stop.
	ErrHandshakeFailed = errors.New("worker handshake failed")

	// ErrExecutableNotFound is returned by Spawn when the worker command does
	// not point at an existing file.
	ErrExecutableNotFound = errors.New("worker executable not found")

	// ErrInvalidState is returned when an operation is attempted from a
	// lifecycle state that does not permit it.
	ErrInvalidState = errors.New("operation not allowed in current worker state")
)

// CallError is the decoded remote failure of one call. It carries whatever
// the process reported: the failing method, the remote error message and,
// when provided, the remote stack.
type CallError struct {
	Method  string
	Message string
	Stack   string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("call %q failed: %s", e.Method, e.Message)
}
