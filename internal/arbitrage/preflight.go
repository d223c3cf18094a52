package arbitrage

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"

	"github.com/hxuan190/arb-engine/internal/metrics"
)

// runPreflight moves the wallet balance above the configured reserve to the
// authorization address. Failures are logged and never abort the cycle.
func (svc *Service) runPreflight(ctx context.Context, logger *zerolog.Logger) {
	sig, err := svc.preflightTransfer(ctx)
	switch {
	case err != nil:
		metrics.PreflightTransfers.WithLabelValues("failed").Inc()
		logger.Warn().Err(err).Msg("[ArbitrageService] preflight transfer failed")
	case sig.IsZero():
		metrics.PreflightTransfers.WithLabelValues("skipped").Inc()
	default:
		metrics.PreflightTransfers.WithLabelValues("sent").Inc()
		logger.Info().Str("signature", sig.String()).Msg("[ArbitrageService] preflight transfer sent")
	}
}

func (svc *Service) preflightTransfer(ctx context.Context) (solana.Signature, error) {
	payer := svc.deps.Signer.PublicKey()

	balance, err := svc.deps.Chain.GetBalance(ctx, payer, svc.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get balance: %w", err)
	}
	if balance.Value <= svc.preflight.Reserve {
		svc.logger.Info().
			Uint64("balance", balance.Value).
			Uint64("reserve", svc.preflight.Reserve).
			Msg("[ArbitrageService] balance within reserve, skipping preflight")
		return solana.Signature{}, nil
	}
	amount := balance.Value - svc.preflight.Reserve

	blockhash, _, err := svc.deps.Blockhash.GetBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(amount, payer, svc.preflightTo).Build()},
		blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build preflight transfer: %w", err)
	}
	if err := svc.deps.Signer.Sign(tx); err != nil {
		return solana.Signature{}, err
	}

	return svc.deps.Chain.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: svc.commitment,
	})
}
