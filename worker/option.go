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
	"time"

	"github.com/RuyiLi/parcel/eventstream"
	"github.com/RuyiLi/parcel/log"
)

const (
	// DefaultForcedKillTime is how long a graceful stop waits for the
	// process to exit before escalating to a forceful kill.
	DefaultForcedKillTime = 500 * time.Millisecond

	// defaultHighWaterMark is the transport write-buffer depth beyond which
	// sends report saturation.
	defaultHighWaterMark = 64
)

// Option configures a Worker at construction time.
type Option func(*Worker)

// WithForcedKillTime sets the graceful-stop escalation deadline.
func WithForcedKillTime(timeout time.Duration) Option {
	return func(w *Worker) {
		w.forcedKillTime = timeout
	}
}

// WithLogger sets the worker's logger.
func WithLogger(logger log.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithIDGenerator sets the identity source used to assign the worker id.
func WithIDGenerator(ids IDGenerator) Option {
	return func(w *Worker) {
		w.ids = ids
	}
}

// WithHighWaterMark sets the transport write-buffer saturation threshold.
func WithHighWaterMark(mark int) Option {
	return func(w *Worker) {
		if mark > 0 {
			w.highWater = mark
		}
	}
}

// WithArgs overrides the launch arguments handed to the spawned process.
// The default inherits the host's arguments with debugger flags filtered.
func WithArgs(args []string) Option {
	return func(w *Worker) {
		w.args = args
	}
}

// WithEnv overrides the environment handed to the spawned process.
// The default inherits the host's environment.
func WithEnv(env []string) Option {
	return func(w *Worker) {
		w.env = env
	}
}

// WithDir sets the working directory of the spawned process.
// The default inherits the host's working directory.
func WithDir(dir string) Option {
	return func(w *Worker) {
		w.dir = dir
	}
}

// WithEventStream attaches the worker to an existing event stream. A pool
// typically shares one stream across all of its workers.
func WithEventStream(stream eventstream.Stream) Option {
	return func(w *Worker) {
		w.events = stream
	}
}

// WithTransport injects a Transport, bypassing the pipe transport the
// worker would otherwise build at Spawn time.
func WithTransport(transport Transport) Option {
	return func(w *Worker) {
		w.transport = transport
	}
}
