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

package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAndExpire(t *testing.T) {
	tm := New(20 * time.Millisecond)
	assert.Equal(t, StateStopped, tm.State())

	require.True(t, tm.Start())
	assert.Equal(t, StateRunning, tm.State())
	// starting a running timer is a no-op
	assert.False(t, tm.Start())

	select {
	case <-tm.C():
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestStopPreventsExpiry(t *testing.T) {
	tm := New(30 * time.Millisecond)
	require.True(t, tm.Start())
	require.True(t, tm.Stop())
	assert.Equal(t, StateStopped, tm.State())
	// stopping a stopped timer reports false
	assert.False(t, tm.Stop())

	select {
	case <-tm.C():
		t.Fatal("stopped timer fired")
	case <-time.After(60 * time.Millisecond):
	}
}

func TestReset(t *testing.T) {
	tm := New(time.Hour)
	require.True(t, tm.Start())

	tm.Reset(10 * time.Millisecond)
	select {
	case <-tm.C():
	case <-time.After(time.Second):
		t.Fatal("reset timer did not fire")
	}
}

func TestRestartAfterExpiry(t *testing.T) {
	tm := New(5 * time.Millisecond)
	require.True(t, tm.Start())
	<-tm.C()

	require.True(t, tm.Stop())
	require.True(t, tm.Start())
	select {
	case <-tm.C():
	case <-time.After(time.Second):
		t.Fatal("restarted timer did not fire")
	}
}
