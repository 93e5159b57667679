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

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "INFO", InfoLevel.String())
	assert.Equal(t, "WARNING", WarningLevel.String())
	assert.Equal(t, "ERROR", ErrorLevel.String())
	assert.Equal(t, "DEBUG", DebugLevel.String())
}

func TestZapWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(DebugLevel, &buf)

	logger.Infof("worker %d spawned", 3)
	logger.Debug("detail")
	logger.Warn("pressure")
	logger.Errorf("bad: %s", "pipe")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "worker 3 spawned")
	assert.Contains(t, out, "detail")
	assert.Contains(t, out, "pressure")
	assert.Contains(t, out, "bad: pipe")

	assert.Equal(t, DebugLevel, logger.LogLevel())
	assert.Len(t, logger.LogOutput(), 1)
}

func TestZapRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(ErrorLevel, &buf)

	logger.Info("invisible")
	logger.Debug("invisible too")
	assert.Empty(t, buf.String())

	logger.Error("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestDiscardLogger(t *testing.T) {
	DiscardLogger.Info("nothing")
	DiscardLogger.Errorf("nothing %d", 1)
	assert.Equal(t, InvalidLevel, DiscardLogger.LogLevel())
	assert.Nil(t, DiscardLogger.LogOutput())
}
