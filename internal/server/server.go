package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"modatlas/internal/atlas"
	"modatlas/internal/logging"
	"modatlas/internal/policy"
	"modatlas/internal/resolve"
)

// Config carries the server's operating parameters.
type Config struct {
	DefaultRadius int
	MaxTokens     int
	Resolver      resolve.Options
}

// Server serves resolution and neighborhood requests over a reader/writer
// pair, one JSON-RPC message per line. The policy snapshot is immutable for
// the server's lifetime; the alias table is read through the cache so a
// watcher can hot-reload it.
type Server struct {
	pol     *policy.Policy
	aliases *policy.AliasCache
	cfg     Config

	in  io.Reader
	out io.Writer

	writeMu sync.Mutex
}

// New creates a Server over the given streams.
func New(pol *policy.Policy, aliases *policy.AliasCache, cfg Config, in io.Reader, out io.Writer) *Server {
	if cfg.DefaultRadius <= 0 {
		cfg.DefaultRadius = 2
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}
	return &Server{pol: pol, aliases: aliases, cfg: cfg, in: in, out: out}
}

// Run reads requests until EOF or context cancellation. Each request is
// handled synchronously: the underlying operations are pure in-memory
// traversals, so per-request goroutines would only reorder responses.
func (s *Server) Run(ctx context.Context) error {
	logging.Server("Stdio server started (%d modules in policy)", len(s.pol.Modules))

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			logging.Server("Stdio server stopping: %v", ctx.Err())
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		s.handleLine(line)
	}

	if err := scanner.Err(); err != nil {
		logging.Get(logging.CategoryServer).Error("Read error: %v", err)
		return err
	}
	logging.Server("Stdio server stopped (EOF)")
	return nil
}

// handleLine parses and dispatches one request line.
func (s *Server) handleLine(line []byte) {
	reqID := uuid.NewString()

	var req rpcRequest
	if err := json.Unmarshal(line, &req); err != nil {
		logging.ServerDebug("[%s] Parse error: %v", reqID, err)
		s.writeResponse(rpcResponse{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: codeParseError, Message: fmt.Sprintf("parse error: %v", err)},
		})
		return
	}

	logging.ServerDebug("[%s] %s", reqID, req.Method)

	resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
	switch req.Method {
	case "atlas.resolve":
		resp.Result, resp.Error = s.handleResolve(req.Params)
	case "atlas.validate":
		resp.Result, resp.Error = s.handleValidate(req.Params)
	case "atlas.neighborhood":
		resp.Result, resp.Error = s.handleNeighborhood(req.Params)
	default:
		resp.Error = &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("unknown method %q", req.Method)}
	}

	s.writeResponse(resp)
}

func (s *Server) handleResolve(params json.RawMessage) (interface{}, *rpcError) {
	var p resolveParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
	}

	aliases, rpcErr := s.aliasTable()
	if rpcErr != nil {
		return nil, rpcErr
	}

	opts := s.cfg.Resolver
	opts.Strict = false // The wire surface always reports, never throws

	results := make([]resolve.Result, 0, len(p.Modules))
	for _, ref := range p.Modules {
		res, err := resolve.Resolve(ref, s.pol, aliases, opts)
		if err != nil {
			return nil, &rpcError{Code: codeInternalError, Message: err.Error()}
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Server) handleValidate(params json.RawMessage) (interface{}, *rpcError) {
	var p resolveParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
	}

	aliases, rpcErr := s.aliasTable()
	if rpcErr != nil {
		return nil, rpcErr
	}

	return resolve.ValidateModuleIDs(p.Modules, s.pol, aliases, s.cfg.Resolver), nil
}

func (s *Server) handleNeighborhood(params json.RawMessage) (interface{}, *rpcError) {
	var p neighborhoodParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
	}

	aliases, rpcErr := s.aliasTable()
	if rpcErr != nil {
		return nil, rpcErr
	}

	validation := resolve.ValidateModuleIDs(p.Modules, s.pol, aliases, s.cfg.Resolver)
	if !validation.Valid {
		return nil, &rpcError{
			Code:    codeScopeInvalid,
			Message: "module scope failed validation",
			Data:    validation,
		}
	}

	radius := p.Radius
	if radius <= 0 {
		radius = s.cfg.DefaultRadius
	}
	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.cfg.MaxTokens
	}

	tuned, err := atlas.AutoTuneRadius(func(r int) (*atlas.Neighborhood, error) {
		return atlas.ComputeFoldRadius(validation.Canonical, r, s.pol), nil
	}, radius, maxTokens, func(oldR, newR, tokens, max int) {
		logging.Budget("Neighborhood over budget at radius %d (%d > %d), retrying at %d",
			oldR, tokens, max, newR)
	})
	if err != nil {
		return nil, &rpcError{Code: codeInternalError, Message: err.Error()}
	}

	return neighborhoodResult{
		SeedModules: tuned.Neighborhood.SeedModules,
		FoldRadius:  tuned.Neighborhood.FoldRadius,
		Modules:     tuned.Neighborhood.Modules,
		Edges:       tuned.Neighborhood.Edges,
		RadiusUsed:  tuned.RadiusUsed,
		TokensUsed:  tuned.TokensUsed,
		Warnings:    validation.Warnings,
	}, nil
}

// aliasTable fetches the current alias table through the cache.
func (s *Server) aliasTable() (*policy.AliasTable, *rpcError) {
	if s.aliases == nil {
		return nil, nil
	}
	tbl, err := s.aliases.Load()
	if err != nil {
		return nil, &rpcError{Code: codeInternalError, Message: fmt.Sprintf("alias table load failed: %v", err)}
	}
	return tbl, nil
}

// writeResponse serializes one response line.
func (s *Server) writeResponse(resp rpcResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Get(logging.CategoryServer).Error("Failed to marshal response: %v", err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	fmt.Fprintf(s.out, "%s\n", data)
}
