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
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sync"
)

// maxFrameSize bounds a single wire frame. A frame larger than this is a
// protocol violation, not a legitimate payload.
const maxFrameSize = 16 << 20

// ErrFrameTooLarge is returned when an inbound frame exceeds maxFrameSize.
var ErrFrameTooLarge = errors.New("codec: frame exceeds maximum size")

// Encoder writes JSON values as newline-delimited frames.
// It is safe for concurrent use.
type Encoder struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewEncoder creates an Encoder writing frames to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w: bufio.NewWriter(w),
	}
}

// Encode marshals v and writes it followed by a newline. The frame is
// flushed before returning so a reader on the other side of a pipe never
// waits on a partially buffered frame.
func (e *Encoder) Encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}
	return e.w.Flush()
}

// Decoder reads newline-delimited JSON frames.
// It is intended for a single consumer.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder creates a Decoder reading frames from r.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), maxFrameSize)
	return &Decoder{
		scanner: scanner,
	}
}

// Decode returns the next non-empty frame. It returns io.EOF once the
// underlying reader is exhausted.
func (d *Decoder) Decode() ([]byte, error) {
	for d.scanner.Scan() {
		frame := bytes.TrimSpace(d.scanner.Bytes())
		if len(frame) == 0 {
			continue
		}
		// the scanner reuses its buffer on the next Scan call
		out := make([]byte, len(frame))
		copy(out, frame)
		return out, nil
	}
	if err := d.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, ErrFrameTooLarge
		}
		return nil, err
	}
	return nil, io.EOF
}
