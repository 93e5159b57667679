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
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/RuyiLi/parcel/internal/lib"
	"github.com/RuyiLi/parcel/log"
	"github.com/RuyiLi/parcel/message"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeTransport is an in-memory Transport. Tests drive saturation, write
// completions, inbound frames and process exit by hand; with auto enabled
// the handshake methods are answered synchronously from Send.
type fakeTransport struct {
	mu       sync.Mutex
	handlers Handlers
	sent     []*message.Envelope
	dones    []func(error)

	saturated       bool
	auto            bool
	failChildInit   bool
	initDelay       time.Duration
	exitOnTerminate bool
	exitOnSend      bool

	terminates int
	kills      int
	closed     bool

	repliers sync.WaitGroup
}

var _ Transport = (*fakeTransport)(nil)

func newFakeTransport() *fakeTransport {
	return &fakeTransport{auto: true, exitOnTerminate: true}
}

// newStubbornTransport answers the handshakes but ignores the terminate
// instruction, so only a forced kill (or an explicit exit) ends the process.
func newStubbornTransport() *fakeTransport {
	return &fakeTransport{auto: true}
}

func (t *fakeTransport) Start(handlers Handlers) error {
	t.mu.Lock()
	t.handlers = handlers
	t.mu.Unlock()
	return nil
}

func (t *fakeTransport) Send(env *message.Envelope, done func(error)) bool {
	t.mu.Lock()
	t.sent = append(t.sent, env)
	if done != nil {
		t.dones = append(t.dones, done)
	}
	saturated := t.saturated
	auto := t.auto
	exitOnSend := t.exitOnSend
	handlers := t.handlers
	t.mu.Unlock()

	if exitOnSend {
		handlers.OnExit(1)
		return saturated
	}

	if auto && env.Kind == message.KindRequest {
		req := env.Request
		switch req.Method {
		case message.MethodChildInit:
			if t.failChildInit {
				handlers.OnMessage(message.NewErrorResponse(req.Idx, &message.ErrorPayload{Message: "entry module not found"}))
			} else {
				handlers.OnMessage(message.NewValueResponse(req.Idx, nil))
			}
		case message.MethodInit:
			if t.initDelay > 0 {
				t.repliers.Add(1)
				go func() {
					defer t.repliers.Done()
					lib.Pause(t.initDelay)
					handlers.OnMessage(message.NewValueResponse(req.Idx, nil))
				}()
			} else {
				handlers.OnMessage(message.NewValueResponse(req.Idx, nil))
			}
		}
	}
	return saturated
}

func (t *fakeTransport) Terminate() error {
	t.mu.Lock()
	t.terminates++
	exitOnTerminate := t.exitOnTerminate
	handlers := t.handlers
	t.mu.Unlock()

	if exitOnTerminate {
		handlers.OnExit(0)
	}
	return nil
}

func (t *fakeTransport) Kill() error {
	t.mu.Lock()
	t.kills++
	handlers := t.handlers
	t.mu.Unlock()

	handlers.OnExit(-1)
	return nil
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

func (t *fakeTransport) setSaturated(saturated bool) {
	t.mu.Lock()
	t.saturated = saturated
	t.mu.Unlock()
}

func (t *fakeTransport) setAuto(auto bool) {
	t.mu.Lock()
	t.auto = auto
	t.mu.Unlock()
}

// setExitOnSend makes the process die mid-write: the next Send reports exit
// before returning.
func (t *fakeTransport) setExitOnSend(exit bool) {
	t.mu.Lock()
	t.exitOnSend = exit
	t.mu.Unlock()
}

// deliver injects an inbound envelope as if it had arrived from the process.
func (t *fakeTransport) deliver(env *message.Envelope) {
	t.mu.Lock()
	handlers := t.handlers
	t.mu.Unlock()
	handlers.OnMessage(env)
}

// exit reports process exit to the worker.
func (t *fakeTransport) exit(code int) {
	t.mu.Lock()
	handlers := t.handlers
	t.mu.Unlock()
	handlers.OnExit(code)
}

// completeNext invokes the oldest outstanding write completion.
func (t *fakeTransport) completeNext(err error) {
	t.mu.Lock()
	if len(t.dones) == 0 {
		t.mu.Unlock()
		return
	}
	done := t.dones[0]
	t.dones = t.dones[1:]
	t.mu.Unlock()
	done(err)
}

// requests returns every request envelope handed to Send so far.
func (t *fakeTransport) requests() []*message.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*message.Request, 0, len(t.sent))
	for _, env := range t.sent {
		if env.Kind == message.KindRequest {
			out = append(out, env.Request)
		}
	}
	return out
}

func (t *fakeTransport) sentCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

func (t *fakeTransport) terminateCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.terminates
}

func (t *fakeTransport) killCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.kills
}

// newTestWorker wires a Worker to a fake transport with quiet logging and a
// private id sequence.
func newTestWorker(t *testing.T, fake *fakeTransport, opts ...Option) *Worker {
	t.Helper()
	base := []Option{
		WithTransport(fake),
		WithLogger(log.DiscardLogger),
		WithIDGenerator(NewSequence()),
	}
	w := New("fake-child", append(base, opts...)...)
	t.Cleanup(func() {
		fake.repliers.Wait()
	})
	return w
}
