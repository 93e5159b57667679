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

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInOrder(t *testing.T) {
	var order []int
	err := New().
		AddRunner(func() error { order = append(order, 1); return nil }).
		AddRunner(func() error { order = append(order, 2); return nil }).
		AddRunner(func() error { order = append(order, 3); return nil }).
		Run()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestFailFastStopsExecution(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	err := New(WithFailFast()).
		AddRunner(func() error { return boom }).
		AddRunner(func() error { ran = true; return nil }).
		Run()
	require.ErrorIs(t, err, boom)
	assert.False(t, ran)
}

func TestAccumulateErrors(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	err := New().
		AddRunners(
			func() error { return first },
			func() error { return nil },
			func() error { return second },
		).
		Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}
