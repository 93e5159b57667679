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

// Call describes one RPC submission. Submission is fire-and-forget:
// completion is delivered through the continuations, never through a return
// value.
type Call struct {
	// Method is the remote method name. Opaque to the worker.
	Method string
	// Args is the ordered argument list. Opaque to the worker.
	Args []any
	// Retries is carried as call metadata for the orchestrator's benefit.
	// The worker never consults it; retry policy lives at the pool layer.
	Retries int
	// OnSuccess is invoked with the response content when the process
	// answers with a value.
	OnSuccess func(content any)
	// OnFailure is invoked with a *CallError when the process answers with
	// an error, or with ErrWorkerExited when the process dies first.
	OnFailure func(err error)
}
