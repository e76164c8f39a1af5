// Package types holds the JSON envelopes shared by the API and its clients.
package types

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Envelope wraps every successful payload as {"data": ...}.
type Envelope[T any] struct {
	Data T `json:"data"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// RemoteError is a non-2xx API response seen from the client side.
type RemoteError struct {
	Status  int
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// DecodeEnvelope reads a success payload for 2xx statuses and turns any
// other status into a *RemoteError.
func DecodeEnvelope[T any](status int, raw []byte) (T, error) {
	var zero T
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		remote := &RemoteError{Status: status}
		var envelope ErrorEnvelope
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Code != "" {
			remote.Code = envelope.Error.Code
			remote.Message = envelope.Error.Message
		}
		return zero, remote
	}

	var envelope Envelope[T]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return zero, fmt.Errorf("decode envelope: %w", err)
	}
	return envelope.Data, nil
}
