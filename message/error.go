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

package message

import "fmt"

// ErrorPayload is the wire representation of an error carried by a Response
// with ContentType "error".
type ErrorPayload struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// FromError converts a Go error into its wire representation.
func FromError(err error) *ErrorPayload {
	if err == nil {
		return nil
	}
	return &ErrorPayload{
		Message: err.Error(),
	}
}

// DecodeErrorPayload rebuilds an ErrorPayload from the decoded content of a
// response frame. JSON decoding yields the payload as a generic map; a bare
// string is accepted as a message-only payload.
func DecodeErrorPayload(content any) *ErrorPayload {
	switch value := content.(type) {
	case *ErrorPayload:
		return value
	case string:
		return &ErrorPayload{Message: value}
	case map[string]any:
		payload := new(ErrorPayload)
		if msg, ok := value["message"].(string); ok {
			payload.Message = msg
		}
		if stack, ok := value["stack"].(string); ok {
			payload.Stack = stack
		}
		return payload
	default:
		return &ErrorPayload{Message: fmt.Sprintf("%v", content)}
	}
}
