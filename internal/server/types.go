// Package server exposes the resolution and neighborhood APIs over a
// line-delimited JSON-RPC 2.0 stdio transport, for callers (editor and
// agent integrations) that keep modAtlas running as a subprocess.
package server

import (
	"encoding/json"

	"modatlas/internal/atlas"
)

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603

	// codeScopeInvalid is returned when a module scope fails validation;
	// the error data carries the full validation result with suggestions.
	codeScopeInvalid = -32000
)

// rpcRequest is one incoming JSON-RPC request line.
type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// rpcResponse is one outgoing JSON-RPC response line.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// resolveParams are the parameters for atlas.resolve and atlas.validate.
type resolveParams struct {
	Modules []string `json:"modules"`
}

// neighborhoodParams are the parameters for atlas.neighborhood.
type neighborhoodParams struct {
	Modules []string `json:"modules"`

	// Radius overrides the configured default when > 0.
	Radius int `json:"radius,omitempty"`

	// MaxTokens overrides the configured budget when > 0.
	MaxTokens int `json:"maxTokens,omitempty"`
}

// neighborhoodResult is the atlas.neighborhood response payload.
type neighborhoodResult struct {
	SeedModules []string              `json:"seedModules"`
	FoldRadius  int                   `json:"foldRadius"`
	Modules     []atlas.ModuleSummary `json:"modules"`
	Edges       []atlas.Edge          `json:"edges"`
	RadiusUsed  int                   `json:"radiusUsed"`
	TokensUsed  int                   `json:"tokensUsed"`
	Warnings    []string              `json:"warnings,omitempty"`
}
