package priority

import (
	"context"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hxuan190/arb-engine/internal/common"
)

// Urgency represents the priority level for a transaction
type Urgency uint8

const (
	// UrgencyLow uses p50 (median) priority fee
	UrgencyLow Urgency = iota
	// UrgencyMedium uses p75 priority fee
	UrgencyMedium
	// UrgencyHigh uses p90 priority fee
	UrgencyHigh
	// UrgencyExtreme uses p99 priority fee
	UrgencyExtreme
)

// MinFeePerCU is the floor applied to sampled fees, in microLamports.
const MinFeePerCU = 100

// DefaultFees are fallback fees when RPC fails (microLamports per CU)
var DefaultFees = map[Urgency]uint64{
	UrgencyLow:     1000,
	UrgencyMedium:  10000,
	UrgencyHigh:    100000,
	UrgencyExtreme: 1000000,
}

// ParseUrgency maps a config value onto an Urgency.
func ParseUrgency(s string) (Urgency, error) {
	switch s {
	case "low":
		return UrgencyLow, nil
	case "medium":
		return UrgencyMedium, nil
	case "high":
		return UrgencyHigh, nil
	case "extreme":
		return UrgencyExtreme, nil
	default:
		return 0, fmt.Errorf("unknown urgency %q", s)
	}
}

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "low"
	case UrgencyMedium:
		return "medium"
	case UrgencyHigh:
		return "high"
	case UrgencyExtreme:
		return "extreme"
	default:
		return "unknown"
	}
}

// FeeSource serves recent prioritization fees.
type FeeSource interface {
	GetRecentPrioritizationFees(ctx context.Context, accounts solana.PublicKeySlice) ([]rpc.PriorizationFeeResult, error)
}

// FeeCalculator calculates priority fees based on network conditions
type FeeCalculator struct {
	source FeeSource
}

func NewFeeCalculator(source FeeSource) *FeeCalculator {
	return &FeeCalculator{source: source}
}

// PriorityFeeResult holds the calculated fee information
type PriorityFeeResult struct {
	FeePerCU    uint64 // microLamports per compute unit
	Urgency     Urgency
	Percentile  int
	SampleCount int
}

// GetOptimalFee returns the fee at the urgency's percentile of recent
// non-zero fees paid for the given accounts. Empty samples fall back to
// DefaultFees. On RPC failure the fallback is returned together with the
// error so callers can still price the transaction.
func (f *FeeCalculator) GetOptimalFee(ctx context.Context, urgency Urgency, accounts []solana.PublicKey) (*PriorityFeeResult, error) {
	fallback := &PriorityFeeResult{
		FeePerCU:   DefaultFees[urgency],
		Urgency:    urgency,
		Percentile: getPercentileForUrgency(urgency),
	}

	recentFees, err := f.source.GetRecentPrioritizationFees(ctx, accounts)
	if err != nil {
		return fallback, fmt.Errorf("%w: get recent prioritization fees: %v", common.ErrNetwork, err)
	}

	fees := make([]uint64, 0, len(recentFees))
	for _, fee := range recentFees {
		if fee.PrioritizationFee > 0 {
			fees = append(fees, fee.PrioritizationFee)
		}
	}
	if len(fees) == 0 {
		return fallback, nil
	}

	sort.Slice(fees, func(i, j int) bool { return fees[i] < fees[j] })

	percentile := getPercentileForUrgency(urgency)
	feePerCU := calculatePercentile(fees, percentile)
	if feePerCU < MinFeePerCU {
		feePerCU = MinFeePerCU
	}

	return &PriorityFeeResult{
		FeePerCU:    feePerCU,
		Urgency:     urgency,
		Percentile:  percentile,
		SampleCount: len(fees),
	}, nil
}

func getPercentileForUrgency(urgency Urgency) int {
	switch urgency {
	case UrgencyLow:
		return 50
	case UrgencyMedium:
		return 75
	case UrgencyHigh:
		return 90
	case UrgencyExtreme:
		return 99
	default:
		return 75
	}
}

// calculatePercentile interpolates linearly between the closest ranks.
func calculatePercentile(sorted []uint64, percentile int) uint64 {
	if len(sorted) == 0 {
		return 0
	}
	if percentile <= 0 {
		return sorted[0]
	}
	if percentile >= 100 {
		return sorted[len(sorted)-1]
	}

	k := float64(percentile) / 100.0 * float64(len(sorted)-1)
	f := int(k)
	c := f + 1
	if c >= len(sorted) {
		c = len(sorted) - 1
	}

	d := k - float64(f)
	return uint64(float64(sorted[f])*(1-d) + float64(sorted[c])*d)
}
