package arbitrage

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"

	"github.com/hxuan190/arb-engine/internal/common"
)

const bpsDenominator = 10_000

// Evaluation is the result of pricing one round trip.
type Evaluation struct {
	Stake    uint64
	Returned uint64
	Profit   int64
	Tip      uint64
}

// EvaluateProfit compares what the round trip returns against the stake.
// A profit at or below threshold yields ErrThresholdNotMet along with the
// evaluation, so callers can still report the quoted profit.
func EvaluateProfit(stake, returned uint64, threshold int64, tipBps uint64) (*Evaluation, error) {
	ev := &Evaluation{
		Stake:    stake,
		Returned: returned,
		Profit:   signedDiff(returned, stake),
	}
	if ev.Profit <= threshold {
		return ev, fmt.Errorf("%w: profit %d <= %d", common.ErrThresholdNotMet, ev.Profit, threshold)
	}
	if ev.Profit > 0 {
		ev.Tip = IncentiveFee(uint64(ev.Profit), tipBps)
	}
	return ev, nil
}

// IncentiveFee returns floor(profit * bps / 10000).
func IncentiveFee(profit, bps uint64) uint64 {
	fee := new(uint256.Int).Mul(uint256.NewInt(profit), uint256.NewInt(bps))
	fee.Div(fee, uint256.NewInt(bpsDenominator))
	return fee.Uint64()
}

// signedDiff returns a - b, saturating at the int64 bounds.
func signedDiff(a, b uint64) int64 {
	if a >= b {
		if a-b > math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(a - b)
	}
	if b-a > math.MaxInt64 {
		return math.MinInt64
	}
	return -int64(b - a)
}
