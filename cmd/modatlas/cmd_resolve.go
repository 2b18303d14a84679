package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"modatlas/internal/resolve"
)

var (
	resolveStrict      bool
	resolveNoSubstring bool
	resolveJSON        bool
)

// resolveCmd maps module references to canonical policy IDs
var resolveCmd = &cobra.Command{
	Use:   "resolve [reference]...",
	Short: "Resolve module references to canonical policy IDs",
	Long: `Resolves each reference through the cascade: exact ID, alias table,
unique case-insensitive substring. Ambiguous references are reported with
their candidates rather than resolved by guesswork.

Examples:
  modatlas resolve auth-core
  modatlas resolve --strict services/auth gateway`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveStrict, "strict", false, "treat ambiguity or no-match as an error")
	resolveCmd.Flags().BoolVar(&resolveNoSubstring, "no-substring", false, "disable substring matching")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "machine-readable output")
}

func runResolve(cmd *cobra.Command, args []string) error {
	pol, aliasCache, err := loadInputs()
	if err != nil {
		return err
	}
	aliases, err := aliasCache.Load()
	if err != nil {
		return err
	}

	opts := resolve.Options{
		Strict:              resolveStrict || cfg.Resolver.Strict,
		NoSubstring:         resolveNoSubstring,
		MinSubstringLength:  cfg.Resolver.MinSubstringLength,
		MaxAmbiguousMatches: cfg.Resolver.MaxAmbiguousMatches,
	}

	var results []resolve.Result
	for _, ref := range args {
		logger.Debug("Resolving reference", zap.String("input", ref))
		res, err := resolve.Resolve(ref, pol, aliases, opts)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if resolveJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, res := range results {
		fmt.Println(renderResolution(res))
	}
	return nil
}
