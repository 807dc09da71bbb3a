// Package rpc defines the JSON-RPC envelope and result types exchanged with
// the transport layer. The proof pipeline returns plain results and errors;
// wrapping them into these envelopes is the transport's job.
package rpc

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Version is the JSON-RPC protocol version tag.
const Version = "2.0"

// Proofs is the result envelope of one proof request. StateProof is reserved
// and currently always empty. Duration is wall-clock milliseconds.
type Proofs struct {
	StateProof hexutil.Bytes `json:"state_proof"`
	EvmProof   hexutil.Bytes `json:"evm_proof"`
	Duration   uint64        `json:"duration"`
}

// ProofRequestOptions carries per-request overrides. When K is set it takes
// precedence over the table size derived from the parameter bucket.
type ProofRequestOptions struct {
	K *uint32 `json:"k,omitempty"`
}

// Request is a JSON-RPC request envelope.
type Request struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Response is a successful JSON-RPC response envelope.
type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result"`
}

// ResponseError is a failed JSON-RPC response envelope.
type ResponseError struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Error   Error           `json:"error"`
}

// Error is the error member of a JSON-RPC response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewResponse wraps a result into a success envelope.
func NewResponse(id json.RawMessage, result interface{}) Response {
	return Response{Jsonrpc: Version, ID: id, Result: result}
}

// NewResponseError wraps an error code and message into a failure envelope.
func NewResponseError(id json.RawMessage, code int, message string) ResponseError {
	return ResponseError{Jsonrpc: Version, ID: id, Error: Error{Code: code, Message: message}}
}
