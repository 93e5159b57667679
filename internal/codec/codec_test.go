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

package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	require.NoError(t, enc.Encode(map[string]any{"type": "request", "idx": 1}))
	require.NoError(t, enc.Encode(map[string]any{"type": "response", "idx": 1}))

	dec := NewDecoder(&buf)
	first, err := dec.Decode()
	require.NoError(t, err)
	assert.Contains(t, string(first), `"request"`)

	second, err := dec.Decode()
	require.NoError(t, err)
	assert.Contains(t, string(second), `"response"`)

	_, err = dec.Decode()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeSkipsBlankLines(t *testing.T) {
	dec := NewDecoder(strings.NewReader("\n\n  \n{\"a\":1}\n\n"))
	frame, err := dec.Decode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(frame))

	_, err = dec.Decode()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeCopiesFrame(t *testing.T) {
	dec := NewDecoder(strings.NewReader("{\"a\":1}\n{\"b\":2}\n"))
	first, err := dec.Decode()
	require.NoError(t, err)
	_, err = dec.Decode()
	require.NoError(t, err)
	// the first frame must survive subsequent scans
	assert.JSONEq(t, `{"a":1}`, string(first))
}

func TestOversizedFrame(t *testing.T) {
	huge := strings.Repeat("x", maxFrameSize+1)
	dec := NewDecoder(strings.NewReader(huge))
	_, err := dec.Decode()
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}
