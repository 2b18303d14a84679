package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"modatlas/internal/resolve"
)

var validateJSON bool

// validateCmd validates a module scope against the policy
var validateCmd = &cobra.Command{
	Use:   "validate [reference]...",
	Short: "Validate module references against the policy",
	Long: `Validates each reference and prints either the canonical module IDs
or structured errors with suggestions. Exits nonzero when any reference is
invalid, so it can gate CI and pre-commit hooks.

Example:
  modatlas validate auth-core services/gateway`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "machine-readable output")
}

func runValidate(cmd *cobra.Command, args []string) error {
	pol, aliasCache, err := loadInputs()
	if err != nil {
		return err
	}
	aliases, err := aliasCache.Load()
	if err != nil {
		return err
	}

	opts := resolve.Options{
		MinSubstringLength:  cfg.Resolver.MinSubstringLength,
		MaxAmbiguousMatches: cfg.Resolver.MaxAmbiguousMatches,
	}
	result := resolve.ValidateModuleIDs(args, pol, aliases, opts)

	if validateJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Print(renderValidation(result))
	}

	if !result.Valid {
		return fmt.Errorf("%d of %d references failed validation", len(result.Errors), len(args))
	}
	return nil
}
