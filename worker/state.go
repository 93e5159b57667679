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

// State models the worker actor's lifecycle position. Transitions move
// strictly forward; process exit is tracked orthogonally because it can
// interleave with any state.
type State int32

const (
	// StateCreated means no process has been spawned yet.
	StateCreated State = iota
	// StateSpawning means the child process is being started.
	StateSpawning
	// StateChildInitializing covers the childInit handshake and the gap
	// until Initialize is invoked.
	StateChildInitializing
	// StateInitializing covers the init handshake.
	StateInitializing
	// StateReady is the steady state in which calls may be dispatched.
	StateReady
	// StateStopping means Stop has been invoked and the shutdown protocol
	// is in flight.
	StateStopping
	// StateStopped means the shutdown protocol has completed.
	StateStopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateSpawning:
		return "spawning"
	case StateChildInitializing:
		return "child-initializing"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// State returns the worker's current lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

func (w *Worker) setState(next State) {
	w.state.Store(int32(next))
}

// casState transitions from `prev` to `next` only when the worker currently
// sits at `prev`. Returns true when the transition happened.
func (w *Worker) casState(prev, next State) bool {
	return w.state.CompareAndSwap(int32(prev), int32(next))
}
