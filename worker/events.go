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

// Event stream topics. Every worker publishes on its event stream; a pool
// sharing one stream across workers can tell emitters apart by the WorkerID
// carried on each payload.
const (
	// TopicReady carries WorkerReady, published once the init handshake
	// completes.
	TopicReady = "worker.ready"
	// TopicExit carries WorkerExited, published when the process exits.
	TopicExit = "worker.exit"
	// TopicError carries WorkerError, published on transport-level errors.
	TopicError = "worker.error"
	// TopicRequest carries InboundRequest, published when the process asks
	// the host side to perform work.
	TopicRequest = "worker.request"
	// TopicResponse carries ResponseReceived, an observability tap fired
	// alongside continuation invocation.
	TopicResponse = "worker.response"
)

// WorkerReady signals that the worker completed both handshakes and may be
// assigned work.
type WorkerReady struct {
	WorkerID int64
}

// WorkerExited signals that the underlying process exited.
type WorkerExited struct {
	WorkerID int64
	Code     int
}

// WorkerError surfaces a transport-level failure. It does not by itself
// change the worker's lifecycle state.
type WorkerError struct {
	WorkerID int64
	Err      error
}

// InboundRequest is a call initiated by the process. The idx belongs to the
// process's own correlation space; answer it with Worker.Respond.
type InboundRequest struct {
	WorkerID int64
	Request  *message.Request
}

// ResponseReceived reports a response that was correlated to a pending call.
type ResponseReceived struct {
	WorkerID int64
	Response *message.Response
}
