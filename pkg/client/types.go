package client

import "encoding/json"

// Request is the single outbound payload.
type Request struct {
	Message string `json:"message"`
}

// Response is the non-streaming response body. Result is either a JSON string
// or an arbitrary JSON value.
type Response struct {
	Result json.RawMessage `json:"result"`
}

// ErrorResponse is the optional JSON body of a non-2xx response.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}
