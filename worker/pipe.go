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
	"io"
	"os"
	"os/exec"
	"sync"

	gods "github.com/Workiva/go-datastructures/queue"
	"go.uber.org/atomic"

	"github.com/RuyiLi/parcel/internal/codec"
	"github.com/RuyiLi/parcel/log"
	"github.com/RuyiLi/parcel/message"
)

// outboundFrame pairs an envelope with its write completion callback while
// it waits in the transport's write buffer.
type outboundFrame struct {
	env  *message.Envelope
	done func(error)
}

// PipeTransport is the production Transport: it spawns the child with
// os/exec and frames envelopes as newline-delimited JSON over the child's
// stdin and stdout. Stderr passes through to the host's stderr.
//
// Writes flow through a buffered queue consumed by a single writer
// goroutine; Send reports saturation once the buffered depth reaches the
// high-water mark.
type PipeTransport struct {
	command   string
	args      []string
	env       []string
	dir       string
	highWater int64
	logger    log.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	enc    *codec.Encoder
	dec    *codec.Decoder
	writes *gods.Queue

	readDone   chan struct{}
	started    atomic.Bool
	terminated atomic.Bool
	closeOnce  sync.Once
}

var _ Transport = (*PipeTransport)(nil)

// NewPipeTransport creates a transport that will spawn `command` with the
// given launch arguments, environment and working directory.
func NewPipeTransport(command string, args, env []string, dir string, highWater int, logger log.Logger) *PipeTransport {
	return &PipeTransport{
		command:   command,
		args:      args,
		env:       env,
		dir:       dir,
		highWater: int64(highWater),
		logger:    logger,
		writes:    gods.New(int64(highWater)),
		readDone:  make(chan struct{}),
	}
}

// Start spawns the child process and begins pumping frames.
func (t *PipeTransport) Start(handlers Handlers) error {
	if !t.started.CompareAndSwap(false, true) {
		return errors.New("pipe transport already started")
	}

	cmd := exec.Command(t.command, t.args...)
	cmd.Env = t.env
	cmd.Dir = t.dir
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	t.cmd = cmd
	t.stdin = stdin
	t.enc = codec.NewEncoder(stdin)
	t.dec = codec.NewDecoder(stdout)

	go t.writeLoop()
	go t.readLoop(handlers)
	go t.waitLoop(handlers)
	return nil
}

// Send enqueues the envelope for the writer goroutine. The envelope is
// always accepted; saturation is reported once the buffered depth reaches
// the high-water mark.
func (t *PipeTransport) Send(env *message.Envelope, done func(error)) bool {
	if err := t.writes.Put(&outboundFrame{env: env, done: done}); err != nil {
		// transport torn down; the frame can never be written
		if done != nil {
			done(err)
		}
		return false
	}
	return t.writes.Len() >= t.highWater
}

// Terminate sends the control frame instructing the child to exit, then
// half-closes stdin so a child that ignores the instruction still observes
// EOF on its inbound channel.
func (t *PipeTransport) Terminate() error {
	if !t.terminated.CompareAndSwap(false, true) {
		return nil
	}
	t.Send(message.NewTerminate(), func(error) {
		_ = t.stdin.Close()
	})
	return nil
}

// Kill forcefully terminates the child process.
func (t *PipeTransport) Kill() error {
	if t.cmd == nil || t.cmd.Process == nil {
		return ErrNotSpawned
	}
	return t.cmd.Process.Kill()
}

// Close tears down the write path. The process itself is left alone; exit
// is observed through the wait loop.
func (t *PipeTransport) Close() error {
	t.closeOnce.Do(func() {
		t.writes.Dispose()
		if t.stdin != nil {
			_ = t.stdin.Close()
		}
	})
	return nil
}

// writeLoop serializes envelopes one at a time, invoking each frame's
// completion callback after its write.
func (t *PipeTransport) writeLoop() {
	for {
		items, err := t.writes.Get(1)
		if err != nil {
			// queue disposed
			return
		}
		frame := items[0].(*outboundFrame)
		werr := t.enc.Encode(frame.env)
		if frame.done != nil {
			frame.done(werr)
		}
	}
}

// readLoop decodes inbound frames until the child's stdout closes.
func (t *PipeTransport) readLoop(handlers Handlers) {
	defer close(t.readDone)
	for {
		raw, err := t.dec.Decode()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				handlers.OnError(err)
			}
			return
		}
		env, err := message.DecodeEnvelope(raw)
		if err != nil {
			handlers.OnError(err)
			continue
		}
		handlers.OnMessage(env)
	}
}

// waitLoop reaps the child and reports its exit code. The reaping waits for
// the read loop first: exec.Cmd.Wait closes the stdout pipe, and reading
// must have finished by then.
func (t *PipeTransport) waitLoop(handlers Handlers) {
	<-t.readDone
	if err := t.cmd.Wait(); err != nil {
		t.logger.Debugf("pipe transport: process wait: %v", err)
	}
	code := -1
	if t.cmd.ProcessState != nil {
		code = t.cmd.ProcessState.ExitCode()
	}
	t.writes.Dispose()
	handlers.OnExit(code)
}
