package priority

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"
)

// Service decides the compute unit price attached to cycle transactions.
type Service struct {
	feeCalculator *FeeCalculator
	dynamic       bool
	urgency       Urgency
}

// NewService returns a service with no extra priority fee.
func NewService(source FeeSource) *Service {
	return &Service{feeCalculator: NewFeeCalculator(source)}
}

// WithUrgency enables fee sampling at the given urgency.
func (s *Service) WithUrgency(urgency Urgency) *Service {
	s.dynamic = true
	s.urgency = urgency
	return s
}

// ComputeUnitPrice returns the microLamports per CU to attach, or zero when
// no priority fee is configured.
func (s *Service) ComputeUnitPrice(ctx context.Context, writable []solana.PublicKey) uint64 {
	if !s.dynamic {
		return 0
	}
	res, err := s.feeCalculator.GetOptimalFee(ctx, s.urgency, limitAccounts(writable))
	if err != nil {
		log.Warn().Err(err).
			Uint64("fallback_fee_per_cu", res.FeePerCU).
			Msg("[PriorityService] fee sampling failed, using default fee")
		return res.FeePerCU
	}
	log.Debug().
		Uint64("fee_per_cu", res.FeePerCU).
		Int("percentile", res.Percentile).
		Int("samples", res.SampleCount).
		Str("urgency", res.Urgency.String()).
		Msg("[PriorityService] computed unit price")
	return res.FeePerCU
}

// limitAccounts keeps the first 8 accounts for RPC efficiency
func limitAccounts(accounts []solana.PublicKey) []solana.PublicKey {
	if len(accounts) > 8 {
		return accounts[:8]
	}
	return accounts
}
