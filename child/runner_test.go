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

package child

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/RuyiLi/parcel/internal/codec"
	"github.com/RuyiLi/parcel/log"
	"github.com/RuyiLi/parcel/message"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// harness wires a Runner to in-memory pipes and plays the parent's side of
// the protocol.
type harness struct {
	t      *testing.T
	runner *Runner
	enc    *codec.Encoder // parent -> child
	dec    *codec.Decoder // child -> parent
	writer *io.PipeWriter
	done   chan error
}

func newHarness(t *testing.T, modules map[string]Module) *harness {
	t.Helper()

	childIn, parentOut := io.Pipe()
	parentIn, childOut := io.Pipe()

	runner := NewRunner(
		WithInput(childIn),
		WithOutput(childOut),
		WithLogger(log.DiscardLogger),
	)
	for name, module := range modules {
		runner.Register(name, module)
	}

	h := &harness{
		t:      t,
		runner: runner,
		enc:    codec.NewEncoder(parentOut),
		dec:    codec.NewDecoder(parentIn),
		writer: parentOut,
		done:   make(chan error, 1),
	}
	go func() {
		h.done <- runner.Run(context.Background())
	}()
	return h
}

func (h *harness) send(env *message.Envelope) {
	h.t.Helper()
	require.NoError(h.t, h.enc.Encode(env))
}

func (h *harness) read() *message.Envelope {
	h.t.Helper()
	raw, err := h.dec.Decode()
	require.NoError(h.t, err)
	env, err := message.DecodeEnvelope(raw)
	require.NoError(h.t, err)
	return env
}

// call sends a request and reads the matching response.
func (h *harness) call(idx int64, method string, args ...any) *message.Response {
	h.t.Helper()
	h.send(message.NewRequest(idx, 1, method, args))
	env := h.read()
	require.Equal(h.t, message.KindResponse, env.Kind)
	require.Equal(h.t, idx, env.Response.Idx)
	return env.Response
}

// shutdown sends the terminate instruction, closes the channel and waits for
// Run to return.
func (h *harness) shutdown() error {
	h.t.Helper()
	h.send(message.NewTerminate())
	_ = h.writer.Close()
	select {
	case err := <-h.done:
		return err
	case <-time.After(5 * time.Second):
		h.t.Fatal("runner did not stop")
		return nil
	}
}

func sumModule() map[string]Module {
	return map[string]Module{
		"math": {
			Methods: map[string]Handler{
				"add": func(_ context.Context, args []any) (any, error) {
					total := 0.0
					for _, arg := range args {
						total += arg.(float64)
					}
					return total, nil
				},
			},
		},
	}
}

func TestRunner(t *testing.T) {
	t.Run("With handshakes and method dispatch", func(t *testing.T) {
		modules := sumModule()
		var gotOptions any
		module := modules["math"]
		module.Init = func(_ context.Context, options any) error {
			gotOptions = options
			return nil
		}
		modules["math"] = module

		h := newHarness(t, modules)

		resp := h.call(1, message.MethodChildInit, "math")
		assert.Equal(t, message.ContentValue, resp.ContentType)

		resp = h.call(2, message.MethodInit, map[string]any{"precision": "high"})
		assert.Equal(t, message.ContentValue, resp.ContentType)
		assert.Equal(t, map[string]any{"precision": "high"}, gotOptions)
		assert.Equal(t, map[string]any{"precision": "high"}, h.runner.Options())

		resp = h.call(3, "add", 1, 2, 3)
		assert.Equal(t, message.ContentValue, resp.ContentType)
		assert.Equal(t, float64(6), resp.Content)

		require.NoError(t, h.shutdown())
	})
	t.Run("With unknown entry module", func(t *testing.T) {
		h := newHarness(t, sumModule())

		resp := h.call(1, message.MethodChildInit, "no-such-module")
		require.Equal(t, message.ContentError, resp.ContentType)
		payload := message.DecodeErrorPayload(resp.Content)
		assert.Contains(t, payload.Message, "no-such-module")

		require.NoError(t, h.shutdown())
	})
	t.Run("With call before childInit", func(t *testing.T) {
		h := newHarness(t, sumModule())

		resp := h.call(1, "add", 1, 2)
		require.Equal(t, message.ContentError, resp.ContentType)
		payload := message.DecodeErrorPayload(resp.Content)
		assert.Equal(t, ErrNotInitialized.Error(), payload.Message)

		require.NoError(t, h.shutdown())
	})
	t.Run("With unknown method", func(t *testing.T) {
		h := newHarness(t, sumModule())

		h.call(1, message.MethodChildInit, "math")
		resp := h.call(2, "multiply", 2, 3)
		require.Equal(t, message.ContentError, resp.ContentType)
		payload := message.DecodeErrorPayload(resp.Content)
		assert.Contains(t, payload.Message, "multiply")

		require.NoError(t, h.shutdown())
	})
	t.Run("With malformed frames dropped", func(t *testing.T) {
		h := newHarness(t, sumModule())

		_, err := h.writer.Write([]byte("{\"type\":\"bogus\"}\nnot json at all\n"))
		require.NoError(t, err)

		// the runner must still be serving after dropping both frames
		resp := h.call(1, message.MethodChildInit, "math")
		assert.Equal(t, message.ContentValue, resp.ContentType)

		require.NoError(t, h.shutdown())
	})
	t.Run("With unknown control action ignored", func(t *testing.T) {
		h := newHarness(t, sumModule())

		h.send(&message.Envelope{Kind: message.KindControl, Control: &message.Control{Action: "pause"}})
		resp := h.call(1, message.MethodChildInit, "math")
		assert.Equal(t, message.ContentValue, resp.ContentType)

		require.NoError(t, h.shutdown())
	})
	t.Run("With channel close", func(t *testing.T) {
		h := newHarness(t, sumModule())

		h.call(1, message.MethodChildInit, "math")
		_ = h.writer.Close()

		select {
		case err := <-h.done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("runner did not stop on channel close")
		}
	})
}

func TestRunnerAsk(t *testing.T) {
	var runner *Runner
	modules := map[string]Module{
		"resolver": {
			Methods: map[string]Handler{
				"lookup": func(ctx context.Context, args []any) (any, error) {
					return runner.Ask(ctx, "resolve", args)
				},
				"lookupFail": func(ctx context.Context, args []any) (any, error) {
					return runner.Ask(ctx, "resolve", args)
				},
			},
		},
	}

	h := newHarness(t, modules)
	runner = h.runner

	h.call(1, message.MethodChildInit, "resolver")

	t.Run("With answered ask", func(t *testing.T) {
		h.send(message.NewRequest(2, 1, "lookup", []any{"./lib"}))

		// the runner's reverse request arrives before its lookup response
		env := h.read()
		require.Equal(t, message.KindRequest, env.Kind)
		assert.Equal(t, "resolve", env.Request.Method)
		assert.Equal(t, []any{"./lib"}, env.Request.Args)

		h.send(message.NewValueResponse(env.Request.Idx, "/abs/lib.js"))

		reply := h.read()
		require.Equal(t, message.KindResponse, reply.Kind)
		assert.Equal(t, int64(2), reply.Response.Idx)
		assert.Equal(t, message.ContentValue, reply.Response.ContentType)
		assert.Equal(t, "/abs/lib.js", reply.Response.Content)
	})
	t.Run("With failed ask", func(t *testing.T) {
		h.send(message.NewRequest(3, 1, "lookupFail", []any{"./missing"}))

		env := h.read()
		require.Equal(t, message.KindRequest, env.Kind)
		h.send(message.NewErrorResponse(env.Request.Idx, &message.ErrorPayload{Message: "not found"}))

		reply := h.read()
		require.Equal(t, message.KindResponse, reply.Kind)
		assert.Equal(t, message.ContentError, reply.Response.ContentType)
		payload := message.DecodeErrorPayload(reply.Response.Content)
		assert.Equal(t, "not found", payload.Message)
	})

	require.NoError(t, h.shutdown())
}
