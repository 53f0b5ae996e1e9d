// Package api routes normalized HTTP events to the auth flows and task
// handlers. It knows nothing about the transport that produced the event.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Event is an inbound request as normalized by the transport.
type Event struct {
	Method  string            `json:"httpMethod"`
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// Response is the outbound result. Body is JSON or empty.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Header returns the value of the named header, ignoring case.
func (e Event) Header(name string) string {
	for k, v := range e.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// corsHeaders is attached to every response.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, Authorization",
}

// CORSHeaders returns a copy of the fixed header set.
func CORSHeaders() map[string]string {
	h := make(map[string]string, len(corsHeaders)+1)
	for k, v := range corsHeaders {
		h[k] = v
	}
	return h
}

func emptyResponse(status int) Response {
	return Response{StatusCode: status, Headers: CORSHeaders()}
}

func jsonResponse(status int, v any) Response {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"error":"Internal server error"}`)
	}
	h := CORSHeaders()
	h["Content-Type"] = "application/json"
	return Response{StatusCode: status, Headers: h, Body: string(b)}
}

func messageResponse(status int, message string) Response {
	return jsonResponse(status, map[string]string{"message": message})
}

// parseBody decodes a JSON object body. An empty body is an empty object.
func parseBody(body string) (map[string]any, *Error) {
	if strings.TrimSpace(body) == "" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil || m == nil {
		return nil, &Error{Kind: KindValidation, Message: MsgInvalidBody, Err: err}
	}
	return m, nil
}
