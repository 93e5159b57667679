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

// Package message defines the wire envelope exchanged between a worker actor
// and its spawned process. A frame is one of three kinds: a Request (a call
// in either direction), a Response correlating to a prior Request by idx, or
// a Control instruction outside the call protocol.
package message

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the envelope variants.
type Kind int

const (
	// KindRequest identifies a call frame.
	KindRequest Kind = iota + 1
	// KindResponse identifies a frame answering a prior Request.
	KindResponse
	// KindControl identifies an out-of-protocol instruction.
	KindControl
)

// wire type discriminants
const (
	typeRequest  = "request"
	typeResponse = "response"
	typeControl  = "control"
)

// ContentType discriminates the payload of a Response.
type ContentType string

const (
	// ContentValue marks a successful response carrying a result value.
	ContentValue ContentType = "value"
	// ContentError marks a failed response carrying an error payload.
	ContentError ContentType = "error"
)

// ActionTerminate instructs the receiving process to exit voluntarily.
const ActionTerminate = "terminate"

// Handshake method names. Both sides of the protocol recognize them before
// any user-defined method can be dispatched.
const (
	// MethodChildInit asks the process to load the entry module named by the
	// sole argument.
	MethodChildInit = "childInit"
	// MethodInit hands the process its initialization options.
	MethodInit = "init"
)

// Request is a call frame. Outbound requests carry the id of the issuing
// worker; inbound requests carry the idx chosen by the process so it can
// correlate the eventual response.
type Request struct {
	Idx      int64  `json:"idx"`
	WorkerID int64  `json:"workerId"`
	Method   string `json:"method"`
	Args     []any  `json:"args"`
}

// Response answers the Request that carried the same idx.
type Response struct {
	Idx         int64       `json:"idx"`
	ContentType ContentType `json:"contentType"`
	Content     any         `json:"content"`
}

// Control is an instruction outside the Request/Response protocol.
type Control struct {
	Action string `json:"action"`
}

// Envelope is the decoded wire frame. Exactly one of Request, Response or
// Control is set, matching Kind.
type Envelope struct {
	Kind     Kind
	Request  *Request
	Response *Response
	Control  *Control
}

// NewRequest creates a request envelope.
func NewRequest(idx, workerID int64, method string, args []any) *Envelope {
	return &Envelope{
		Kind: KindRequest,
		Request: &Request{
			Idx:      idx,
			WorkerID: workerID,
			Method:   method,
			Args:     args,
		},
	}
}

// NewValueResponse creates a successful response envelope.
func NewValueResponse(idx int64, content any) *Envelope {
	return &Envelope{
		Kind: KindResponse,
		Response: &Response{
			Idx:         idx,
			ContentType: ContentValue,
			Content:     content,
		},
	}
}

// NewErrorResponse creates a failed response envelope carrying the given
// error payload.
func NewErrorResponse(idx int64, payload *ErrorPayload) *Envelope {
	return &Envelope{
		Kind: KindResponse,
		Response: &Response{
			Idx:         idx,
			ContentType: ContentError,
			Content:     payload,
		},
	}
}

// NewTerminate creates the control envelope instructing the process to exit
// voluntarily.
func NewTerminate() *Envelope {
	return &Envelope{
		Kind: KindControl,
		Control: &Control{
			Action: ActionTerminate,
		},
	}
}

// wireFrame is the flat JSON representation of an Envelope.
type wireFrame struct {
	Type        string      `json:"type"`
	Idx         int64       `json:"idx,omitempty"`
	WorkerID    int64       `json:"workerId,omitempty"`
	Method      string      `json:"method,omitempty"`
	Args        []any       `json:"args,omitempty"`
	ContentType ContentType `json:"contentType,omitempty"`
	Content     any         `json:"content,omitempty"`
	Action      string      `json:"action,omitempty"`
}

// MarshalJSON flattens the envelope into the wire shape with a `type`
// discriminant.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindRequest:
		return json.Marshal(&struct {
			Type     string `json:"type"`
			Idx      int64  `json:"idx"`
			WorkerID int64  `json:"workerId"`
			Method   string `json:"method"`
			Args     []any  `json:"args"`
		}{
			Type:     typeRequest,
			Idx:      e.Request.Idx,
			WorkerID: e.Request.WorkerID,
			Method:   e.Request.Method,
			Args:     e.Request.Args,
		})
	case KindResponse:
		return json.Marshal(&struct {
			Type        string      `json:"type"`
			Idx         int64       `json:"idx"`
			ContentType ContentType `json:"contentType"`
			Content     any         `json:"content"`
		}{
			Type:        typeResponse,
			Idx:         e.Response.Idx,
			ContentType: e.Response.ContentType,
			Content:     e.Response.Content,
		})
	case KindControl:
		return json.Marshal(&struct {
			Type   string `json:"type"`
			Action string `json:"action"`
		}{
			Type:   typeControl,
			Action: e.Control.Action,
		})
	default:
		return nil, fmt.Errorf("message: cannot marshal envelope of kind %d", e.Kind)
	}
}

// DecodeEnvelope decodes a raw frame into the envelope tagged union.
// The `type` discriminant is inspected exactly once here; unknown
// discriminants are rejected.
func DecodeEnvelope(raw []byte) (*Envelope, error) {
	var frame wireFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("message: malformed frame: %w", err)
	}

	switch frame.Type {
	case typeRequest:
		return NewRequest(frame.Idx, frame.WorkerID, frame.Method, frame.Args), nil
	case typeResponse:
		return &Envelope{
			Kind: KindResponse,
			Response: &Response{
				Idx:         frame.Idx,
				ContentType: frame.ContentType,
				Content:     frame.Content,
			},
		}, nil
	case typeControl:
		return &Envelope{
			Kind: KindControl,
			Control: &Control{
				Action: frame.Action,
			},
		}, nil
	default:
		return nil, fmt.Errorf("message: unknown frame type %q", frame.Type)
	}
}
