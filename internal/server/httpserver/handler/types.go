// Package handler provides HTTP request handlers for SecureSnap.
package handler

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses
// Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// ExpirySeconds is the requested message lifetime in seconds. Browser
// clients post the raw value of a form input, so the wire value may
// arrive as either a JSON number or a quoted integer string; both
// decode to the same int64.
type ExpirySeconds int64

func (e *ExpirySeconds) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		var s string
		if err2 := json.Unmarshal(data, &s); err2 != nil {
			return err
		}
		n = json.Number(strings.TrimSpace(s))
	}
	v, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return err
	}
	*e = ExpirySeconds(v)
	return nil
}

// CreateMessageRequest is the request body for POST /create.
//
// Blob fields are base64 strings on the wire; the server never
// inspects their contents.
type CreateMessageRequest struct {
	Ciphertext    []byte        `json:"ciphertext"`
	Salt          []byte        `json:"salt"`
	IV            []byte        `json:"iv"`
	ExpirySeconds ExpirySeconds `json:"expiry"`
}

// CreateMessageResponse is the response body for POST /create.
type CreateMessageResponse struct {
	ID        string `json:"id"`
	ExpiresAt int64  `json:"expires_at"`
}

// ReadMessageResponse is the response body for GET /message/{id}.
type ReadMessageResponse struct {
	Ciphertext []byte `json:"ciphertext"`
	Salt       []byte `json:"salt"`
	IV         []byte `json:"iv"`
}

// DeleteMessageResponse is the response body for DELETE /message/{id}.
type DeleteMessageResponse struct {
	Deleted bool `json:"deleted"`
}
