package main

import (
	"fmt"
	"path/filepath"

	"modatlas/internal/policy"
)

// resolvePath makes a config path absolute relative to the workspace.
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workspace, path)
}

// loadInputs loads the policy document and wraps the alias table in a cache.
func loadInputs() (*policy.Policy, *policy.AliasCache, error) {
	pol, err := policy.LoadPolicy(resolvePath(cfg.Paths.PolicyFile))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load policy: %w", err)
	}

	cache := policy.NewAliasCache(resolvePath(cfg.Paths.AliasFile))
	if _, err := cache.Load(); err != nil {
		return nil, nil, fmt.Errorf("failed to load alias table: %w", err)
	}

	return pol, cache, nil
}
