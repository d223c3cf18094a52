package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/domain"
	"github.com/hxuan190/arb-engine/internal/metrics"
)

func (svc *BuilderService) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*domain.SimulationResult, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is nil")
	}

	metrics.SimulationRequests.Inc()

	result, err := svc.simulator.SimulateTransactionWithOpts(ctx, tx, &rpc.SimulateTransactionOpts{
		SigVerify:              false,
		Commitment:             svc.commitment,
		ReplaceRecentBlockhash: true,
	})
	if err != nil {
		metrics.SimulationFailures.WithLabelValues("rpc").Inc()
		return nil, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	if result == nil || result.Value == nil {
		metrics.SimulationFailures.WithLabelValues("rpc").Inc()
		return nil, fmt.Errorf("%w: empty simulation response", common.ErrNetwork)
	}

	simResult := &domain.SimulationResult{
		Success: result.Value.Err == nil,
		Logs:    result.Value.Logs,
	}
	if result.Value.UnitsConsumed != nil {
		simResult.ComputeUnitsConsumed = *result.Value.UnitsConsumed
		metrics.ComputeUnits.Observe(float64(simResult.ComputeUnitsConsumed))
	}

	if result.Value.Err != nil {
		simResult.Error = fmt.Sprintf("%v", result.Value.Err)
		simResult.InsufficientFunds = containsAny(simResult.Error, simResult.Logs, "insufficient", "not enough")
		simResult.SlippageExceeded = containsAny(simResult.Error, simResult.Logs, "slippage", "ExceededSlippage", "0x1771")
		metrics.SimulationFailures.WithLabelValues(failureReason(simResult)).Inc()
	}

	return simResult, nil
}

// ValidateSimulation simulates tx and fails with ErrSimulation when the
// transaction would not land.
func (svc *BuilderService) ValidateSimulation(ctx context.Context, tx *solana.Transaction) (*domain.SimulationResult, error) {
	simResult, err := svc.SimulateTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	if !simResult.Success {
		switch {
		case simResult.InsufficientFunds:
			return simResult, fmt.Errorf("%w: insufficient funds: %s", common.ErrSimulation, simResult.Error)
		case simResult.SlippageExceeded:
			return simResult, fmt.Errorf("%w: slippage tolerance exceeded: %s", common.ErrSimulation, simResult.Error)
		default:
			return simResult, fmt.Errorf("%w: transaction would fail: %s", common.ErrSimulation, simResult.Error)
		}
	}

	return simResult, nil
}

func failureReason(r *domain.SimulationResult) string {
	switch {
	case r.InsufficientFunds:
		return "insufficient_funds"
	case r.SlippageExceeded:
		return "slippage"
	default:
		return "other"
	}
}

func containsAny(errStr string, logs []string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(errStr, n) {
			return true
		}
		for _, l := range logs {
			if strings.Contains(l, n) {
				return true
			}
		}
	}
	return false
}
