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

package timer

import (
	"sync"
	"time"
)

// State represents the current state of a Timer
type State int

const (
	// StateStopped indicates the timer is stopped.
	StateStopped State = iota
	// StateRunning indicates the timer is currently running.
	StateRunning
)

// Timer provides a thread-safe, resettable timer.
// It wraps time.Timer and adds explicit Start, Stop and Reset semantics.
type Timer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
	state    State
}

// New creates a new Timer with the given duration.
// The timer is created in a stopped state and must be explicitly started
// using Start().
func New(duration time.Duration) *Timer {
	timer := time.NewTimer(duration)
	if !timer.Stop() {
		<-timer.C
	}
	return &Timer{
		duration: duration,
		timer:    timer,
		state:    StateStopped,
	}
}

// Start starts the timer if it is currently stopped.
// Returns true if the timer was successfully started, false otherwise.
func (t *Timer) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateStopped {
		return false
	}
	t.resetLocked(t.duration)
	t.state = StateRunning
	return true
}

// Stop stops the timer if it is running.
// Returns true if the timer was successfully stopped, false if it was
// already stopped.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateStopped {
		return false
	}
	if !t.timer.Stop() {
		t.drainChannel()
	}
	t.state = StateStopped
	return true
}

// Reset stops the current timer if running and starts it again with a new
// duration.
func (t *Timer) Reset(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.duration = duration
	t.resetLocked(duration)
	t.state = StateRunning
}

// C returns a read-only channel that receives a value when the timer expires.
// It behaves the same as time.Timer.C.
func (t *Timer) C() <-chan time.Time {
	return t.timer.C
}

// State returns the current state of the timer.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// resetLocked resets the timer to the specified duration.
// It assumes the caller already holds the mutex lock.
func (t *Timer) resetLocked(d time.Duration) {
	if !t.timer.Stop() {
		t.drainChannel()
	}
	t.timer.Reset(d)
}

// drainChannel removes a pending expiry notification, if any.
// It assumes the caller already holds the mutex lock.
func (t *Timer) drainChannel() {
	select {
	case <-t.timer.C:
	default:
	}
}
