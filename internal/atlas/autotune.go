package atlas

import (
	"fmt"

	"modatlas/internal/logging"
)

// GenerateFunc produces the neighborhood for a given fold radius.
type GenerateFunc func(radius int) (*Neighborhood, error)

// AdjustFunc observes each radius decrement during auto-tuning.
type AdjustFunc func(oldRadius, newRadius, tokens, maxTokens int)

// TuneResult is the outcome of radius auto-tuning.
type TuneResult struct {
	Neighborhood *Neighborhood `json:"neighborhood"`
	RadiusUsed   int           `json:"radiusUsed"`
	TokensUsed   int           `json:"tokensUsed"`
}

// AutoTuneRadius shrinks the fold radius until the serialized neighborhood
// fits maxTokens. Starting at initialRadius it generates, estimates, and if
// over budget decrements the radius by exactly 1 and retries. Radius 0 is a
// hard floor: its result is returned even when still over budget, and the
// caller decides what to do with it. Terminates in at most initialRadius+1
// iterations since the radius only decreases and is bounded below by 0.
func AutoTuneRadius(generate GenerateFunc, initialRadius, maxTokens int, onAdjust AdjustFunc) (TuneResult, error) {
	timer := logging.StartTimer(logging.CategoryBudget, "AutoTuneRadius")
	defer timer.Stop()

	if generate == nil {
		return TuneResult{}, fmt.Errorf("generate function required")
	}

	radius := initialRadius
	if radius < 0 {
		radius = 0
	}

	counter := NewTokenCounter()

	for {
		neighborhood, err := generate(radius)
		if err != nil {
			return TuneResult{}, fmt.Errorf("generate at radius %d: %w", radius, err)
		}

		tokens, err := counter.CountNeighborhood(neighborhood)
		if err != nil {
			return TuneResult{}, fmt.Errorf("estimate at radius %d: %w", radius, err)
		}

		if tokens <= maxTokens || radius == 0 {
			if tokens > maxTokens {
				logging.Budget("Radius floor reached: %d tokens still exceeds budget %d", tokens, maxTokens)
			}
			logging.BudgetDebug("Auto-tune settled at radius %d (%d tokens, budget %d)",
				radius, tokens, maxTokens)
			return TuneResult{
				Neighborhood: neighborhood,
				RadiusUsed:   radius,
				TokensUsed:   tokens,
			}, nil
		}

		logging.BudgetDebug("Radius %d over budget (%d > %d), shrinking", radius, tokens, maxTokens)
		if onAdjust != nil {
			onAdjust(radius, radius-1, tokens, maxTokens)
		}
		radius--
	}
}
