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

package chain

import "go.uber.org/multierr"

// Runner is a unit of work executed by a Chain.
type Runner func() error

// Chain defines an ordered sequence of runners whose errors are either
// short-circuited on first failure or accumulated.
type Chain struct {
	failFast bool
	runners  []Runner
}

// Option configures a chain at creation time.
type Option func(*Chain)

// WithFailFast stops the chain execution on the first error encountered.
func WithFailFast() Option {
	return func(c *Chain) { c.failFast = true }
}

// New creates a new chain. Runners are executed respectively according to
// their insertion order.
func New(opts ...Option) *Chain {
	chain := &Chain{
		runners: make([]Runner, 0),
	}
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// AddRunner adds a runner to the chain.
func (c *Chain) AddRunner(fn Runner) *Chain {
	c.runners = append(c.runners, fn)
	return c
}

// AddRunners adds a slice of runners to the chain. Remember the slice order
// does matter here.
func (c *Chain) AddRunners(fn ...Runner) *Chain {
	c.runners = append(c.runners, fn...)
	return c
}

// Run executes the chain and returns the resulting error, if any.
func (c *Chain) Run() error {
	var err error
	for _, runner := range c.runners {
		if rerr := runner(); rerr != nil {
			if c.failFast {
				return rerr
			}
			err = multierr.Append(err, rerr)
		}
	}
	return err
}
