package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"modatlas/internal/atlas"
	"modatlas/internal/resolve"
)

var (
	atlasRadius    int
	atlasMaxTokens int
	atlasJSON      bool
)

// atlasCmd extracts a policy neighborhood around seed modules
var atlasCmd = &cobra.Command{
	Use:   "atlas [reference]...",
	Short: "Extract a token-budgeted neighborhood around modules",
	Long: `Resolves the references to seed modules, performs a bounded
breadth-first traversal of the policy graph around them, and auto-shrinks
the fold radius until the serialized neighborhood fits the token budget.

Examples:
  modatlas atlas auth-core
  modatlas atlas --radius 3 --max-tokens 2000 services/gateway billing`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAtlas,
}

func init() {
	atlasCmd.Flags().IntVar(&atlasRadius, "radius", 0, "initial fold radius (default from config)")
	atlasCmd.Flags().IntVar(&atlasMaxTokens, "max-tokens", 0, "token budget (default from config)")
	atlasCmd.Flags().BoolVar(&atlasJSON, "json", false, "machine-readable output")
}

func runAtlas(cmd *cobra.Command, args []string) error {
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
	validation := resolve.ValidateModuleIDs(args, pol, aliases, opts)
	if !validation.Valid {
		fmt.Print(renderValidation(validation))
		return fmt.Errorf("cannot build atlas from an invalid module scope")
	}
	for _, warning := range validation.Warnings {
		fmt.Println(renderWarning(warning))
	}

	radius := atlasRadius
	if radius <= 0 {
		radius = cfg.Atlas.DefaultRadius
	}
	maxTokens := atlasMaxTokens
	if maxTokens <= 0 {
		maxTokens = cfg.Atlas.MaxTokens
	}

	result, err := atlas.AutoTuneRadius(func(r int) (*atlas.Neighborhood, error) {
		return atlas.ComputeFoldRadius(validation.Canonical, r, pol), nil
	}, radius, maxTokens, func(oldR, newR, tokens, max int) {
		logger.Debug("Shrinking fold radius",
			zap.Int("from", oldR),
			zap.Int("to", newR),
			zap.Int("tokens", tokens),
			zap.Int("budget", max))
	})
	if err != nil {
		return err
	}

	if result.TokensUsed > maxTokens {
		fmt.Println(renderWarning(fmt.Sprintf(
			"radius-0 neighborhood still exceeds budget (%d > %d tokens)",
			result.TokensUsed, maxTokens)))
	}

	if atlasJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(renderNeighborhood(result))
	return nil
}
