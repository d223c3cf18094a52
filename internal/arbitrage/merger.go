package arbitrage

import (
	"fmt"

	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/domain"
)

var ErrRouteMismatch = fmt.Errorf("quotes do not form a round trip: %w", common.ErrInvalidRoute)

// MergeQuotes joins the A->B and B->A quotes into a single A->A route that
// must return at least stake+tip. The inputs are not modified.
func MergeQuotes(ab, ba *domain.Quote, stake, tip uint64) (*domain.Quote, error) {
	if ab == nil || ba == nil {
		return nil, fmt.Errorf("%w: missing quote", ErrRouteMismatch)
	}
	if ab.OutputMint != ba.InputMint {
		return nil, fmt.Errorf("%w: first leg ends in %s, second starts with %s", ErrRouteMismatch, ab.OutputMint, ba.InputMint)
	}
	if ba.OutputMint != ab.InputMint {
		return nil, fmt.Errorf("%w: loop ends in %s, not %s", ErrRouteMismatch, ba.OutputMint, ab.InputMint)
	}

	minOut := stake + tip
	if minOut < stake {
		return nil, fmt.Errorf("%w: stake plus tip overflows", ErrRouteMismatch)
	}

	merged := ab.Clone()
	merged.OutputMint = ba.OutputMint
	merged.OutAmount = minOut
	merged.OtherAmountThreshold = minOut
	merged.PriceImpactPct = "0"

	plan := make([]domain.RouteStep, 0, len(ab.RoutePlan)+len(ba.RoutePlan))
	for _, step := range ab.RoutePlan {
		plan = append(plan, append(domain.RouteStep(nil), step...))
	}
	for _, step := range ba.RoutePlan {
		plan = append(plan, append(domain.RouteStep(nil), step...))
	}
	merged.RoutePlan = plan

	return merged, nil
}
