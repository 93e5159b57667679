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

// Package worker implements the per-process actor of a process-pool
// execution engine. One Worker owns one spawned child process, speaks the
// request/response protocol with it over a message channel, and walks the
// process through spawn, the two-step initialization handshake, steady-state
// call dispatch and the two-phase shutdown protocol.
package worker

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/RuyiLi/parcel/eventstream"
	"github.com/RuyiLi/parcel/future"
	"github.com/RuyiLi/parcel/internal/chain"
	"github.com/RuyiLi/parcel/internal/lib"
	"github.com/RuyiLi/parcel/internal/syncmap"
	"github.com/RuyiLi/parcel/internal/timer"
	"github.com/RuyiLi/parcel/log"
	"github.com/RuyiLi/parcel/message"
)

// Worker is the actor owning one spawned process. All lifecycle transitions
// are driven by external events: frame arrival, process exit, timer expiry
// and caller-invoked operations. A Worker is exclusively owned: its pending
// calls, outbound queue and transport are never shared with another actor.
type Worker struct {
	id             int64
	ids            IDGenerator
	command        string
	args           []string
	env            []string
	dir            string
	forcedKillTime time.Duration
	highWater      int
	logger         log.Logger
	events         eventstream.Stream
	transport      Transport

	state   atomic.Int32
	callSeq atomic.Int64
	pending *syncmap.SyncMap[int64, *Call]
	outbox  *outbox

	spawned  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once

	exited    atomic.Bool
	exitCode  atomic.Int64
	exitDone  *future.Future[int]
	killTimer *timer.Timer
}

// New constructs a Worker in the created state. `command` is the child
// executable the worker will spawn. The spawned process inherits the host's
// launch arguments (debugger flags filtered out), environment and working
// directory unless overridden with options.
func New(command string, opts ...Option) *Worker {
	w := &Worker{
		ids:            defaultIDs,
		command:        command,
		args:           filterLaunchArgs(os.Args[1:]),
		env:            os.Environ(),
		forcedKillTime: DefaultForcedKillTime,
		highWater:      defaultHighWaterMark,
		logger:         log.DefaultLogger,
		pending:        syncmap.New[int64, *Call](),
		exitDone:       future.New[int](),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.id = w.ids.NextID()
	if w.events == nil {
		w.events = eventstream.New()
	}
	w.killTimer = timer.New(w.forcedKillTime)
	return w
}

// ID returns the worker's identity.
func (w *Worker) ID() int64 {
	return w.id
}

// Ready reports whether the worker completed both handshakes and may be
// assigned work.
func (w *Worker) Ready() bool {
	return w.State() == StateReady
}

// Events returns the stream the worker publishes its lifecycle and protocol
// events on.
func (w *Worker) Events() eventstream.Stream {
	return w.events
}

// ExitCode returns the recorded process exit code. The second return value
// is false until the process has actually exited.
func (w *Worker) ExitCode() (int, bool) {
	if !w.exited.Load() {
		return 0, false
	}
	return int(w.exitCode.Load()), true
}

// Spawn starts the child process and performs the childInit handshake,
// asking the process to load the given entry module. Message, exit and
// error handlers are registered before any call is issued so no early frame
// can race the bookkeeping.
//
// On handshake failure the worker remains usable only for Stop.
func (w *Worker) Spawn(ctx context.Context, entryModule string) error {
	if !w.casState(StateCreated, StateSpawning) {
		if state := w.State(); state == StateStopping || state == StateStopped {
			return fmt.Errorf("%w: %s", ErrInvalidState, state)
		}
		return ErrAlreadySpawned
	}

	if w.transport == nil {
		if !lib.FileExists(w.command) {
			return fmt.Errorf("%w: %s", ErrExecutableNotFound, w.command)
		}
		w.transport = NewPipeTransport(w.command, w.args, w.env, w.dir, w.highWater, w.logger)
	}
	w.outbox = newOutbox(w.transport, runtime.GOOS == "windows")

	w.logger.Infof("Spawning worker (%d): command=%s", w.id, w.command)
	err := w.transport.Start(Handlers{
		OnMessage: w.receive,
		OnExit:    w.handleExit,
		OnError:   w.handleTransportError,
	})
	if err != nil {
		return fmt.Errorf("spawning worker (%d): %w", w.id, err)
	}
	w.spawned.Store(true)
	w.setState(StateChildInitializing)

	handshake := future.New[any]()
	w.Call(Call{
		Method:    message.MethodChildInit,
		Args:      []any{entryModule},
		Retries:   0,
		OnSuccess: handshake.Complete,
		OnFailure: handshake.Fail,
	})
	if _, err := handshake.Await(ctx); err != nil {
		w.logger.Errorf("Worker (%d) childInit handshake failed: %v", w.id, err)
		return fmt.Errorf("%w: childInit: %v", ErrHandshakeFailed, err)
	}

	w.logger.Infof("Worker (%d) loaded entry module %s", w.id, entryModule)
	return nil
}

// Start spawns the process and runs both handshakes back to back. It is the
// one-call path for callers that have no work to schedule between childInit
// and init.
func (w *Worker) Start(ctx context.Context, entryModule string, options any) error {
	return chain.New(chain.WithFailFast()).
		AddRunner(func() error { return w.Spawn(ctx, entryModule) }).
		AddRunner(func() error { return w.Initialize(ctx, options) }).
		Run()
}

// Initialize performs the second handshake, handing the process its
// initialization options. On success the worker transitions to ready and
// publishes a WorkerReady event.
func (w *Worker) Initialize(ctx context.Context, options any) error {
	if !w.casState(StateChildInitializing, StateInitializing) {
		return fmt.Errorf("%w: %s", ErrInvalidState, w.State())
	}

	handshake := future.New[any]()
	w.Call(Call{
		Method:    message.MethodInit,
		Args:      []any{options},
		OnSuccess: handshake.Complete,
		OnFailure: handshake.Fail,
	})
	if _, err := handshake.Await(ctx); err != nil {
		w.logger.Errorf("Worker (%d) init handshake failed: %v", w.id, err)
		return fmt.Errorf("%w: init: %v", ErrHandshakeFailed, err)
	}

	w.setState(StateReady)
	w.events.Publish(TopicReady, &WorkerReady{WorkerID: w.id})
	w.logger.Infof("Worker (%d) is ready", w.id)
	return nil
}

// Call submits one RPC to the process. A stopped or stopping worker must
// never enqueue new work, so the submission is silently dropped; after the
// process has exited the failure continuation fires immediately instead of
// leaving the call outstanding forever.
//
// Call ids are allocated from a monotonic counter and never reused, so a
// stale response cannot be mismatched to a newer call.
func (w *Worker) Call(call Call) {
	if w.isStopping() {
		return
	}
	if w.exited.Load() {
		if call.OnFailure != nil {
			call.OnFailure(ErrWorkerExited)
		}
		return
	}
	if w.outbox == nil {
		if call.OnFailure != nil {
			call.OnFailure(ErrNotSpawned)
		}
		return
	}

	idx := w.callSeq.Inc()
	pending := call
	w.pending.Set(idx, &pending)

	// the process may have exited between the check above and the insert,
	// after the exit sweep already ran. Re-checking after the insert closes
	// the window: either the sweep saw the entry or this claim does, and
	// Take guarantees the continuation fires exactly once.
	if w.exited.Load() {
		if claimed, ok := w.pending.Take(idx); ok && claimed.OnFailure != nil {
			claimed.OnFailure(ErrWorkerExited)
		}
		return
	}

	w.logger.Debugf("Worker (%d) dispatching call %d: method=%s", w.id, idx, call.Method)
	w.outbox.send(message.NewRequest(idx, w.id, call.Method, call.Args))
}

// Respond answers an inbound request previously surfaced through a
// TopicRequest event. The idx belongs to the process's correlation space.
func (w *Worker) Respond(idx int64, content any, callErr error) {
	if w.isStopping() || w.outbox == nil {
		return
	}
	if callErr != nil {
		w.outbox.send(message.NewErrorResponse(idx, message.FromError(callErr)))
		return
	}
	w.outbox.send(message.NewValueResponse(idx, content))
}

// Stop runs the two-phase shutdown protocol: mark the worker stopped so no
// new call or receive activity is admitted, deliver the terminate
// instruction, arm the forced-kill timer, and await process exit. Stop is
// idempotent; every caller's wait resolves once the process has exited (or
// immediately when no process was ever spawned).
func (w *Worker) Stop(ctx context.Context) error {
	w.stopOnce.Do(func() {
		w.stopped.Store(true)
		w.setState(StateStopping)

		if !w.spawned.Load() {
			w.exitDone.Complete(0)
			return
		}
		if w.exited.Load() {
			return
		}

		w.logger.Infof("Stopping worker (%d)...", w.id)
		_ = w.transport.Terminate()
		w.killTimer.Start()
		go w.escalate()
	})

	if _, err := w.exitDone.Await(ctx); err != nil {
		return err
	}

	w.killTimer.Stop()
	w.setState(StateStopped)
	if w.transport != nil {
		_ = w.transport.Close()
	}
	w.logger.Infof("Worker (%d) stopped", w.id)
	return nil
}

// escalate kills the process if it has not exited by the time the
// forced-kill timer fires.
func (w *Worker) escalate() {
	select {
	case <-w.killTimer.C():
		w.logger.Warnf("Worker (%d) did not exit within %v, killing", w.id, w.forcedKillTime)
		if err := w.transport.Kill(); err != nil {
			w.logger.Errorf("Worker (%d) kill failed: %v", w.id, err)
		}
	case <-w.exitDone.Done():
	}
}

// receive dispatches one decoded inbound envelope. Activity after Stop is
// absorbed silently so late frames from a draining process can never throw.
func (w *Worker) receive(env *message.Envelope) {
	if w.isStopping() {
		return
	}

	switch env.Kind {
	case message.KindRequest:
		// the process asking the host side to perform work; the idx is the
		// process's own and is not tracked in the pending table
		w.events.Publish(TopicRequest, &InboundRequest{WorkerID: w.id, Request: env.Request})

	case message.KindResponse:
		response := env.Response
		call, ok := w.pending.Take(response.Idx)
		if !ok {
			// late, duplicate or foreign response
			w.logger.Debugf("Worker (%d) dropping response for unknown call %d", w.id, response.Idx)
			return
		}

		if response.ContentType == message.ContentError {
			payload := message.DecodeErrorPayload(response.Content)
			if call.OnFailure != nil {
				call.OnFailure(&CallError{
					Method:  call.Method,
					Message: payload.Message,
					Stack:   payload.Stack,
				})
			}
		} else if call.OnSuccess != nil {
			call.OnSuccess(response.Content)
		}
		w.events.Publish(TopicResponse, &ResponseReceived{WorkerID: w.id, Response: response})

	case message.KindControl:
		w.logger.Debugf("Worker (%d) ignoring inbound control frame", w.id)
	}
}

// handleExit records the exit code, fails whatever is still in flight so an
// orchestrator-level retry observes a real error instead of waiting forever,
// and publishes the exit event.
func (w *Worker) handleExit(code int) {
	if !w.exited.CompareAndSwap(false, true) {
		return
	}
	w.exitCode.Store(int64(code))
	w.logger.Infof("Worker (%d) process exited: code=%d", w.id, code)

	w.failPending(ErrWorkerExited)
	w.events.Publish(TopicExit, &WorkerExited{WorkerID: w.id, Code: code})
	w.exitDone.Complete(code)
}

// handleTransportError surfaces a transport-level failure as an event. It
// does not by itself change the worker's lifecycle state.
func (w *Worker) handleTransportError(err error) {
	w.logger.Errorf("Worker (%d) transport error: %v", w.id, err)
	w.events.Publish(TopicError, &WorkerError{WorkerID: w.id, Err: err})
}

// failPending removes every pending call and invokes its failure
// continuation with the given error.
func (w *Worker) failPending(err error) {
	var idxs []int64
	w.pending.Range(func(idx int64, _ *Call) {
		idxs = append(idxs, idx)
	})
	for _, idx := range idxs {
		if call, ok := w.pending.Take(idx); ok && call.OnFailure != nil {
			call.OnFailure(err)
		}
	}
}

func (w *Worker) isStopping() bool {
	if w.stopped.Load() {
		return true
	}
	state := w.State()
	return state == StateStopping || state == StateStopped
}

// debuggerFlagPrefixes lists launch flags that bind a debug port. They are
// stripped from inherited arguments so a pool of children does not race to
// listen on the host's debugger address.
var debuggerFlagPrefixes = []string{"--inspect", "--debug"}

func filterLaunchArgs(args []string) []string {
	filtered := make([]string, 0, len(args))
next:
	for _, arg := range args {
		for _, prefix := range debuggerFlagPrefixes {
			if strings.HasPrefix(arg, prefix) {
				continue next
			}
		}
		filtered = append(filtered, arg)
	}
	return filtered
}
