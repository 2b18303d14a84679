package policy

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"modatlas/internal/logging"
)

// ParsePolicy decodes and validates a policy document.
// Validation happens at this boundary so the resolution core never sees a
// malformed module ID key.
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse policy document: %w", err)
	}

	if p.Modules == nil {
		return nil, fmt.Errorf("policy document missing required 'modules' object")
	}

	for id, m := range p.Modules {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("policy contains empty module ID key")
		}
		// Backfill the ID field from the map key.
		m.ID = id
		p.Modules[id] = m
	}

	for _, kp := range p.GlobalKillPatterns {
		if kp.Pattern == "" {
			return nil, fmt.Errorf("global kill pattern with empty pattern")
		}
	}

	logging.PolicyDebug("Parsed policy: %d modules, %d global kill patterns",
		len(p.Modules), len(p.GlobalKillPatterns))
	return &p, nil
}

// LoadPolicy reads and parses the policy document at path.
func LoadPolicy(path string) (*Policy, error) {
	timer := logging.StartTimer(logging.CategoryPolicy, "LoadPolicy")
	defer timer.Stop()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}

	p, err := ParsePolicy(data)
	if err != nil {
		return nil, fmt.Errorf("invalid policy file %s: %w", path, err)
	}

	logging.Policy("Loaded policy from %s (%d modules)", path, len(p.Modules))
	return p, nil
}

// ParseAliasTable decodes and validates an alias table document.
func ParseAliasTable(data []byte) (*AliasTable, error) {
	var t AliasTable
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse alias table: %w", err)
	}

	for alias, entry := range t.Aliases {
		if strings.TrimSpace(alias) == "" {
			return nil, fmt.Errorf("alias table contains empty alias key")
		}
		if entry.Canonical == "" {
			return nil, fmt.Errorf("alias %q has empty canonical target", alias)
		}
		if entry.Confidence <= 0 || entry.Confidence > 1 {
			return nil, fmt.Errorf("alias %q has confidence %v outside (0,1]", alias, entry.Confidence)
		}
	}

	return &t, nil
}

// LoadAliasTable reads and parses the alias table at path.
// A missing file is not an error: aliases are optional, so it yields an
// empty table.
func LoadAliasTable(path string) (*AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.PolicyDebug("No alias table at %s, using empty table", path)
			return &AliasTable{Aliases: map[string]AliasEntry{}}, nil
		}
		return nil, fmt.Errorf("failed to read alias table %s: %w", path, err)
	}

	t, err := ParseAliasTable(data)
	if err != nil {
		return nil, fmt.Errorf("invalid alias table %s: %w", path, err)
	}

	logging.Policy("Loaded alias table from %s (%d aliases)", path, len(t.Aliases))
	return t, nil
}
