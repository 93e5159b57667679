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

import "github.com/RuyiLi/parcel/message"

// Handlers groups the callbacks a transport drives. They must all be
// registered before the first frame can possibly arrive, which is why Start
// receives them as one unit.
type Handlers struct {
	// OnMessage is invoked for every decoded inbound envelope.
	OnMessage func(env *message.Envelope)
	// OnExit is invoked exactly once, with the process exit code, when the
	// underlying process terminates.
	OnExit func(code int)
	// OnError is invoked for transport-level failures: undecodable frames,
	// broken pipes and the like.
	OnError func(err error)
}

// Transport is the bidirectional message channel to a spawned process.
// A transport is exclusively owned by one worker actor.
type Transport interface {
	// Start spawns the process and begins pumping frames. Handlers are
	// installed before the process can emit anything.
	Start(handlers Handlers) error

	// Send hands an envelope to the transport for eventual delivery. The
	// envelope is always accepted; `done` is invoked once the frame has been
	// written (or failed to write). The return value reports saturation: a
	// true result tells the caller to queue subsequent messages until a
	// completion callback fires.
	Send(env *message.Envelope, done func(error)) (saturated bool)

	// Terminate delivers the out-of-protocol instruction to exit
	// voluntarily. Safe to call more than once; only the first has effect.
	Terminate() error

	// Kill forcefully terminates the process.
	Kill() error

	// Close releases transport resources. It does not touch the process.
	Close() error
}
