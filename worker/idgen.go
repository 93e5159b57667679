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

import "go.uber.org/atomic"

// IDGenerator produces worker identities. The generator is injectable via
// WithIDGenerator so an orchestrator, or a test, can own and verify the id
// sequence instead of relying on hidden global state.
type IDGenerator interface {
	// NextID returns the next identity. Implementations must never return
	// the same value twice.
	NextID() int64
}

// NewSequence returns an IDGenerator backed by an atomic counter starting
// at 1.
func NewSequence() IDGenerator {
	return new(sequence)
}

type sequence struct {
	counter atomic.Int64
}

func (g *sequence) NextID() int64 {
	return g.counter.Inc()
}

// defaultIDs assigns ids to workers constructed without an explicit
// generator. Process-wide so ids stay unique across pools.
var defaultIDs = NewSequence()
