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

package child

import "errors"

var (
	// ErrUnknownModule is returned to the parent when childInit names an
	// entry module that was never registered.
	ErrUnknownModule = errors.New("unknown entry module")

	// ErrUnknownMethod is returned to the parent when a request names a
	// method the active module does not provide.
	ErrUnknownMethod = errors.New("unknown method")

	// ErrNotInitialized is returned to the parent when a method call
	// arrives before the childInit handshake.
	ErrNotInitialized = errors.New("no entry module loaded")

	// ErrBadHandshake is returned to the parent when a handshake frame is
	// malformed.
	ErrBadHandshake = errors.New("malformed handshake request")
)
