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

// Package child implements the process side of the worker protocol: a serve
// loop that answers the parent's childInit/init handshakes, dispatches
// method calls to a registered entry module, and lets handlers issue
// reverse requests to the parent.
//
// A child binary registers its modules on a Runner and hands control to
// Run; the parent's worker actor drives the rest.
package child

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/RuyiLi/parcel/future"
	"github.com/RuyiLi/parcel/internal/codec"
	"github.com/RuyiLi/parcel/internal/syncmap"
	"github.com/RuyiLi/parcel/log"
	"github.com/RuyiLi/parcel/message"
)

// Handler executes one method call. Args arrive as decoded JSON values.
type Handler func(ctx context.Context, args []any) (any, error)

// Module is a named bundle of methods the parent can activate through the
// childInit handshake.
type Module struct {
	// Init is invoked when the parent issues the init handshake, with the
	// options it supplied. Optional.
	Init func(ctx context.Context, options any) error
	// Methods maps method names to their handlers.
	Methods map[string]Handler
}

// Option configures a Runner at construction time.
type Option func(*Runner)

// WithInput overrides the inbound frame source. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(runner *Runner) {
		runner.in = r
	}
}

// WithOutput overrides the outbound frame sink. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(runner *Runner) {
		runner.out = w
	}
}

// WithLogger sets the runner's logger. The default logs to stderr: stdout
// is the protocol channel and must carry nothing but frames.
func WithLogger(logger log.Logger) Option {
	return func(runner *Runner) {
		runner.logger = logger
	}
}

// Runner is the child-side serve loop.
type Runner struct {
	in     io.Reader
	out    io.Writer
	logger log.Logger

	enc *codec.Encoder
	dec *codec.Decoder

	modules    map[string]Module
	active     Module
	activeName string
	activeSet  bool
	options    any

	workerID atomic.Int64
	idxSeq   atomic.Int64
	pending  *syncmap.SyncMap[int64, *future.Future[any]]
}

// NewRunner creates a Runner serving frames over stdin/stdout unless
// overridden with options.
func NewRunner(opts ...Option) *Runner {
	runner := &Runner{
		in:      os.Stdin,
		out:     os.Stdout,
		logger:  log.DefaultLogger,
		modules: make(map[string]Module),
		pending: syncmap.New[int64, *future.Future[any]](),
	}
	for _, opt := range opts {
		opt(runner)
	}
	runner.enc = codec.NewEncoder(runner.out)
	runner.dec = codec.NewDecoder(runner.in)
	return runner
}

// Register makes a module available for activation via childInit.
// Registration must happen before Run.
func (r *Runner) Register(name string, module Module) {
	r.modules[name] = module
}

// Options returns the options supplied by the parent's init handshake.
func (r *Runner) Options() any {
	return r.options
}

// Run serves the protocol until the parent sends the terminate instruction
// or closes the channel (EOF). Requests are dispatched sequentially, in
// arrival order, on a single goroutine; handler state therefore needs no
// locking of its own. Responses to reverse asks are resolved on the reader
// goroutine so a handler blocked in Ask can still be answered.
func (r *Runner) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	frames := make(chan *message.Envelope)

	group.Go(func() error {
		defer close(frames)
		for {
			raw, err := r.dec.Decode()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			env, err := message.DecodeEnvelope(raw)
			if err != nil {
				r.logger.Warnf("child: dropping malformed frame: %v", err)
				continue
			}
			if env.Kind == message.KindResponse {
				r.resolve(env.Response)
				continue
			}
			select {
			case frames <- env:
			case <-ctx.Done():
				return nil
			}
		}
	})

	group.Go(func() error {
		for {
			select {
			case env, ok := <-frames:
				if !ok {
					return nil
				}
				if terminate := r.dispatch(ctx, env); terminate {
					return nil
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	return group.Wait()
}

// Ask issues a reverse request to the parent and awaits its response. The
// idx comes from the runner's own monotonic counter, correlating in the
// runner's id space independently of the parent's call ids.
func (r *Runner) Ask(ctx context.Context, method string, args []any) (any, error) {
	idx := r.idxSeq.Inc()
	reply := future.New[any]()
	r.pending.Set(idx, reply)

	if err := r.enc.Encode(message.NewRequest(idx, r.workerID.Load(), method, args)); err != nil {
		r.pending.Delete(idx)
		return nil, err
	}
	return reply.Await(ctx)
}

// dispatch handles one inbound envelope. The returned flag is true when the
// serve loop should stop.
func (r *Runner) dispatch(ctx context.Context, env *message.Envelope) bool {
	switch env.Kind {
	case message.KindControl:
		if env.Control.Action == message.ActionTerminate {
			r.logger.Info("child: terminate instruction received")
			return true
		}

	case message.KindRequest:
		r.handleRequest(ctx, env.Request)
	}
	return false
}

// resolve completes the pending reverse ask a response correlates to.
// Unknown or duplicate ids are dropped silently.
func (r *Runner) resolve(response *message.Response) {
	reply, ok := r.pending.Take(response.Idx)
	if !ok {
		return
	}
	if response.ContentType == message.ContentError {
		payload := message.DecodeErrorPayload(response.Content)
		reply.Fail(errors.New(payload.Message))
		return
	}
	reply.Complete(response.Content)
}

func (r *Runner) handleRequest(ctx context.Context, req *message.Request) {
	r.workerID.Store(req.WorkerID)

	content, err := r.invoke(ctx, req)
	var env *message.Envelope
	if err != nil {
		env = message.NewErrorResponse(req.Idx, message.FromError(err))
	} else {
		env = message.NewValueResponse(req.Idx, content)
	}
	if werr := r.enc.Encode(env); werr != nil {
		r.logger.Errorf("child: writing response for call %d: %v", req.Idx, werr)
	}
}

func (r *Runner) invoke(ctx context.Context, req *message.Request) (any, error) {
	switch req.Method {
	case message.MethodChildInit:
		if len(req.Args) == 0 {
			return nil, fmt.Errorf("%w: childInit needs an entry module", ErrBadHandshake)
		}
		name, ok := req.Args[0].(string)
		if !ok {
			return nil, fmt.Errorf("%w: entry module must be a string", ErrBadHandshake)
		}
		module, ok := r.modules[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
		}
		r.active = module
		r.activeName = name
		r.activeSet = true
		r.logger.Infof("child: entry module %s loaded", name)
		return nil, nil

	case message.MethodInit:
		var options any
		if len(req.Args) > 0 {
			options = req.Args[0]
		}
		r.options = options
		if r.activeSet && r.active.Init != nil {
			if err := r.active.Init(ctx, options); err != nil {
				return nil, err
			}
		}
		return nil, nil

	default:
		if !r.activeSet {
			return nil, ErrNotInitialized
		}
		handler, ok := r.active.Methods[req.Method]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, r.activeName, req.Method)
		}
		return handler(ctx, req.Args)
	}
}
