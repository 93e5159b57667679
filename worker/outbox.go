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
	"sync"

	"github.com/RuyiLi/parcel/internal/queue"
	"github.com/RuyiLi/parcel/message"
)

// outbox sits between the worker and its transport. While the transport
// reports saturation the outbox buffers outbound envelopes and drains them,
// in submission order, once a write completion clears the pressure.
//
// Invariant: every envelope reaches Transport.Send exactly once; buffering
// never drops or duplicates a message.
type outbox struct {
	mu       sync.Mutex
	blocked  bool
	draining bool
	buffer   *queue.Linked[*message.Envelope]

	transport Transport

	// forceQueue routes every send through the blocked path. Set on
	// platforms whose pipe implementation mis-reports write completion, so
	// writes are strictly serialized one completion at a time.
	forceQueue bool
}

func newOutbox(transport Transport, forceQueue bool) *outbox {
	return &outbox{
		buffer:     queue.NewLinked[*message.Envelope](),
		transport:  transport,
		forceQueue: forceQueue,
	}
}

// send dispatches the envelope directly when the transport is clear, and
// buffers it otherwise. A non-empty buffer also forces buffering so an
// envelope can never overtake one submitted before it.
func (o *outbox) send(env *message.Envelope) {
	o.mu.Lock()
	if o.blocked || !o.buffer.IsEmpty() {
		o.buffer.Push(env)
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()
	o.dispatch(env)
}

// dispatch performs the actual transport write. Blocked mode is entered
// before the write: the transport may invoke the completion callback at any
// point, including before Send returns, and a completion must never have its
// unblock overwritten by a stale saturation decision made after it fired.
// When the transport reports no pressure the pessimistic block is lifted the
// same way a completion lifts it.
func (o *outbox) dispatch(env *message.Envelope) {
	o.mu.Lock()
	o.blocked = true
	o.mu.Unlock()

	saturated := o.transport.Send(env, o.onDone)
	if !saturated && !o.forceQueue {
		o.unblock()
	}
}

// onDone is the write completion callback. Transport errors are ignored
// here: the orchestrator is the authority on transport failure, which it
// observes through the worker's error/exit events, not through an
// individual send.
func (o *outbox) onDone(err error) {
	if err != nil {
		return
	}
	o.unblock()
}

// unblock clears blocked mode and flushes whatever queued behind it. The
// draining flag keeps exactly one drain loop alive: a dispatch issued from
// the loop re-entering here returns immediately instead of recursing.
func (o *outbox) unblock() {
	o.mu.Lock()
	o.blocked = false
	if o.draining {
		o.mu.Unlock()
		return
	}
	o.draining = true
	o.mu.Unlock()

	o.drain()
}

// drain flushes buffered envelopes in FIFO order. The loop is iterative on
// purpose: re-invoking send for each element would grow the call stack
// without bound under pathological backpressure patterns. A dispatch may
// re-saturate the transport mid-drain, in which case the remainder stays
// buffered until the next completion.
func (o *outbox) drain() {
	for {
		o.mu.Lock()
		if o.blocked {
			o.draining = false
			o.mu.Unlock()
			return
		}
		env, ok := o.buffer.Pop()
		if !ok {
			o.draining = false
			o.mu.Unlock()
			return
		}
		o.mu.Unlock()
		o.dispatch(env)
	}
}

// pendingLen reports how many envelopes are currently buffered.
func (o *outbox) pendingLen() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buffer.Len()
}
