// Package jsonrpcx implements the JSON-RPC 2.0 control surface framing.
package jsonrpcx

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
)

// Request represents a JSON-RPC 2.0 request
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response represents a JSON-RPC 2.0 response
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id,omitempty"`
}

// Error represents a JSON-RPC 2.0 error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON-RPC 2.0 error codes plus application codes for the domain taxonomy
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603

	NotFoundError    = -32004
	ConflictError    = -32009
	UnavailableError = -32011
)

// ParseRequest parses a JSON-RPC 2.0 request from the HTTP request body
func ParseRequest(r *http.Request) (*Request, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	defer r.Body.Close()

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}

	if req.JSONRPC != "2.0" {
		return nil, fmt.Errorf("unsupported jsonrpc version %q", req.JSONRPC)
	}

	return &req, nil
}

// DecodeParams unmarshals request params into dst
func DecodeParams(req *Request, dst any) error {
	if len(req.Params) == 0 {
		return fmt.Errorf("missing params")
	}
	return json.Unmarshal(req.Params, dst)
}

// Success sends a successful JSON-RPC 2.0 response
func Success(w http.ResponseWriter, id any, result any) {
	write(w, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	})
}

// Fail sends an error JSON-RPC 2.0 response
func Fail(w http.ResponseWriter, id any, code int, message string, data any) {
	write(w, Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	})
}

// FailFromError translates a domain error into the nearest taxonomy code
// with a stable machine-readable discriminator in the error data.
func FailFromError(w http.ResponseWriter, id any, err error) {
	kind := shared.Kind(err)

	code := InternalError
	switch kind {
	case shared.KindNotFound:
		code = NotFoundError
	case shared.KindInvalidInput:
		code = InvalidParams
	case shared.KindConflict:
		code = ConflictError
	case shared.KindUnavailable:
		code = UnavailableError
	default:
		kind = "INTERNAL"
	}

	Fail(w, id, code, err.Error(), map[string]string{"kind": kind})
}

// write sends a JSON-RPC 2.0 response; JSON-RPC always returns HTTP 200
func write(w http.ResponseWriter, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
