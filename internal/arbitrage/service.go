package arbitrage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hxuan190/arb-engine/internal/arbitrage/adapters/blockchain"
	"github.com/hxuan190/arb-engine/internal/arbitrage/services/builder"
	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/config"
	"github.com/hxuan190/arb-engine/internal/domain"
	"github.com/hxuan190/arb-engine/internal/metrics"
	"github.com/hxuan190/arb-engine/internal/services"
)

const ARBITRAGE_SERVICE = "arbitrage-service"

// SwapAPI is the aggregator the engine quotes against.
type SwapAPI interface {
	GetQuote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error)
	GetSwapInstructions(ctx context.Context, req *domain.SwapInstructionsRequest) (*domain.SwapInstructions, error)
}

// BundleSender submits signed transactions to a block engine.
type BundleSender interface {
	SendBundle(ctx context.Context, txs ...*solana.Transaction) (string, error)
}

type TipPicker interface {
	Next() solana.PublicKey
}

// FeeOracle prices compute units. A zero price omits the instruction.
type FeeOracle interface {
	ComputeUnitPrice(ctx context.Context, writable []solana.PublicKey) uint64
}

// Deps are the collaborators of the arbitrage service. Priority may be nil.
type Deps struct {
	Swap      SwapAPI
	Relay     BundleSender
	Builder   *builder.BuilderService
	Signer    *builder.Signer
	Chain     blockchain.ChainClient
	Blockhash builder.BlockhashProvider
	Tips      TipPicker
	Priority  FeeOracle
}

type Service struct {
	logger *services.ServiceLogger

	cycle      config.CycleConfig
	jupiter    config.JupiterConfig
	preflight  config.PreflightConfig
	commitment rpc.CommitmentType

	preflightTo solana.PublicKey

	deps    Deps
	history *History
	now     func() time.Time
}

func NewService(cfg *config.Config, deps Deps) (*Service, error) {
	if deps.Swap == nil || deps.Relay == nil || deps.Builder == nil || deps.Signer == nil || deps.Tips == nil {
		return nil, errors.New("arbitrage service: missing dependency")
	}

	svc := &Service{
		cycle:      cfg.Cycle,
		jupiter:    cfg.Jupiter,
		preflight:  cfg.Preflight,
		commitment: cfg.RPC.CommitmentType(),
		deps:       deps,
		history:    NewHistory(cfg.Cycle.HistorySize),
		now:        time.Now,
	}
	svc.logger = services.NewServiceLogger(svc)

	if cfg.Preflight.Enabled {
		if deps.Chain == nil || deps.Blockhash == nil {
			return nil, errors.New("arbitrage service: preflight needs a chain client and blockhash provider")
		}
		to, err := solana.PublicKeyFromBase58(cfg.Preflight.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid preflight address: %w", err)
		}
		svc.preflightTo = to
	}

	return svc, nil
}

func (svc *Service) ID() string {
	return ARBITRAGE_SERVICE
}

// Reports returns the most recent cycle reports, newest first.
func (svc *Service) Reports(limit int) []domain.CycleReport {
	return svc.history.Recent(limit)
}

func (svc *Service) Stats() domain.CycleStats {
	return svc.history.Stats()
}

// Run polls until ctx is cancelled or MaxCycles cycles have run. Cycles
// never overlap and no cycle error stops the loop.
func (svc *Service) Run(ctx context.Context) error {
	svc.logger.Info().
		Str("input_mint", svc.cycle.InputMint).
		Str("output_mint", svc.cycle.OutputMint).
		Uint64("stake", svc.cycle.StakeAmount).
		Int64("threshold", svc.cycle.ProfitThreshold).
		Dur("interval", svc.cycle.PollInterval).
		Bool("dry_run", svc.cycle.DryRun).
		Msg("[ArbitrageService] starting polling loop")

	for n := 0; ; {
		if ctx.Err() != nil {
			break
		}

		svc.safeCycle(ctx)

		n++
		if svc.cycle.MaxCycles > 0 && n >= svc.cycle.MaxCycles {
			svc.logger.Info().Int("cycles", n).Msg("[ArbitrageService] cycle limit reached")
			return nil
		}

		timer := time.NewTimer(svc.cycle.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}

	svc.logger.Info().Msg("[ArbitrageService] polling loop stopped")
	return nil
}

func (svc *Service) safeCycle(ctx context.Context) {
	started := svc.now()
	defer func() {
		if r := recover(); r != nil {
			svc.logger.Error().
				Interface("panic", r).
				Msg("[ArbitrageService] recovered from panic in cycle")
			report := domain.CycleReport{
				ID:         uuid.NewString(),
				Pair:       svc.pair(),
				Stake:      svc.cycle.StakeAmount,
				Outcome:    domain.OutcomeFailed,
				Error:      fmt.Sprintf("panic: %v", r),
				StartedAt:  started,
				DurationMs: svc.now().Sub(started).Milliseconds(),
			}
			metrics.Cycles.WithLabelValues(string(domain.OutcomeFailed)).Inc()
			svc.history.Add(report)
		}
	}()
	svc.RunCycle(ctx)
}

// RunCycle performs one quote, evaluate, build, sign and submit pass and
// returns its report. Errors are folded into the report.
func (svc *Service) RunCycle(ctx context.Context) domain.CycleReport {
	report := domain.CycleReport{
		ID:        uuid.NewString(),
		Pair:      svc.pair(),
		Stake:     svc.cycle.StakeAmount,
		StartedAt: svc.now(),
	}
	logger := svc.logger.Cycle(report.ID)

	cctx, cancel := context.WithTimeout(ctx, svc.cycle.CycleTimeout)
	defer cancel()

	err := svc.runCycle(cctx, &report, &logger)
	svc.finish(&report, err, &logger)
	return report
}

func (svc *Service) runCycle(ctx context.Context, report *domain.CycleReport, logger *zerolog.Logger) error {
	stake := svc.cycle.StakeAmount

	var quoteAB, quoteBA *domain.Quote
	err := timed(common.StageQuoteAB, func() (err error) {
		quoteAB, err = svc.deps.Swap.GetQuote(ctx, svc.quoteRequest(svc.cycle.InputMint, svc.cycle.OutputMint, stake))
		return err
	})
	if err != nil {
		return err
	}
	report.ContextSlot = quoteAB.ContextSlot

	err = timed(common.StageQuoteBA, func() (err error) {
		quoteBA, err = svc.deps.Swap.GetQuote(ctx, svc.quoteRequest(svc.cycle.OutputMint, svc.cycle.InputMint, quoteAB.OutAmount))
		return err
	})
	if err != nil {
		return err
	}
	report.QuotedOut = quoteBA.OutAmount

	ev, err := EvaluateProfit(stake, quoteBA.OutAmount, svc.cycle.ProfitThreshold, svc.cycle.TipBps)
	report.Profit = ev.Profit
	report.Tip = ev.Tip
	metrics.Profit.Set(float64(ev.Profit))
	svc.logProfit(logger, ev, quoteAB)
	if err != nil {
		return common.AtStage(common.StageEvaluate, err)
	}

	if svc.preflight.Enabled {
		svc.runPreflight(ctx, logger)
	}

	merged, err := MergeQuotes(quoteAB, quoteBA, stake, ev.Tip)
	if err != nil {
		return common.AtStage(common.StageMerge, err)
	}

	payer := svc.deps.Signer.PublicKey()
	var swap *domain.SwapInstructions
	err = timed(common.StageSwapInstructions, func() (err error) {
		swap, err = svc.deps.Swap.GetSwapInstructions(ctx, &domain.SwapInstructionsRequest{
			UserPublicKey:                 payer.String(),
			WrapAndUnwrapSol:              false,
			UseSharedAccounts:             false,
			ComputeUnitPriceMicroLamports: svc.cycle.ComputeUnitPrice,
			DynamicComputeUnitLimit:       true,
			SkipUserAccountsRpcCalls:      true,
			QuoteResponse:                 merged,
		})
		return err
	})
	if err != nil {
		return err
	}

	var price uint64
	if svc.deps.Priority != nil {
		price = svc.deps.Priority.ComputeUnitPrice(ctx, builder.WritableAccounts(swap))
	}

	var tx *solana.Transaction
	err = timed(common.StageBuild, func() error {
		plan, err := svc.deps.Builder.BuildPlan(ctx, builder.BuildParams{
			Payer:            payer,
			Swap:             swap,
			TipAccount:       svc.deps.Tips.Next(),
			TipLamports:      ev.Tip,
			ComputeUnitPrice: price,
		})
		if err != nil {
			return err
		}
		tx, err = svc.deps.Builder.Compile(plan)
		return err
	})
	if err != nil {
		return err
	}

	if err := timed(common.StageSign, func() error { return svc.deps.Signer.Sign(tx) }); err != nil {
		return err
	}
	report.Signature = tx.Signatures[0].String()

	if svc.cycle.SimulateBeforeSend {
		err = timed(common.StageSimulate, func() error {
			sim, err := svc.deps.Builder.ValidateSimulation(ctx, tx)
			report.Simulation = sim
			return err
		})
		if err != nil {
			return err
		}
	}

	if svc.cycle.DryRun {
		report.Outcome = domain.OutcomeDryRun
		return nil
	}

	err = timed(common.StageSubmit, func() error {
		id, err := svc.deps.Relay.SendBundle(ctx, tx)
		report.BundleID = id
		return err
	})
	if err != nil {
		metrics.BundlesSubmitted.WithLabelValues("failed").Inc()
		return err
	}

	metrics.BundlesSubmitted.WithLabelValues("accepted").Inc()
	metrics.TipsPaid.Add(float64(ev.Tip))
	report.Outcome = domain.OutcomeSubmitted
	return nil
}

func (svc *Service) finish(report *domain.CycleReport, err error, logger *zerolog.Logger) {
	elapsed := svc.now().Sub(report.StartedAt)
	report.DurationMs = elapsed.Milliseconds()
	metrics.CycleDuration.Observe(elapsed.Seconds())

	switch {
	case err == nil:
		logger.Info().
			Str("pair", report.Pair).
			Int64("profit", report.Profit).
			Uint64("tip", report.Tip).
			Str("outcome", string(report.Outcome)).
			Str("bundle_id", report.BundleID).
			Str("signature", report.Signature).
			Int64("duration_ms", report.DurationMs).
			Msg("[ArbitrageService] cycle completed")
	case errors.Is(err, common.ErrThresholdNotMet):
		report.Outcome = domain.OutcomeSkipped
		logger.Debug().
			Int64("profit", report.Profit).
			Int64("threshold", svc.cycle.ProfitThreshold).
			Msg("[ArbitrageService] below threshold, skipping")
	default:
		stage := common.StageOf(err)
		category := common.Category(err)
		report.Outcome = domain.OutcomeFailed
		report.Stage = string(stage)
		report.Error = err.Error()
		metrics.CycleErrors.WithLabelValues(string(stage), category).Inc()
		logger.Error().
			Err(err).
			Str("pair", report.Pair).
			Int64("profit", report.Profit).
			Str("stage", string(stage)).
			Str("category", category).
			Uint64("slot", report.ContextSlot).
			Int64("duration_ms", report.DurationMs).
			Msg("[ArbitrageService] cycle failed")
	}

	metrics.Cycles.WithLabelValues(string(report.Outcome)).Inc()
	svc.history.Add(*report)
}

func (svc *Service) quoteRequest(in, out string, amount uint64) domain.QuoteRequest {
	return domain.QuoteRequest{
		InputMint:        in,
		OutputMint:       out,
		Amount:           amount,
		SlippageBps:      uint16(svc.jupiter.SlippageBps),
		MaxAccounts:      svc.jupiter.MaxAccounts,
		OnlyDirectRoutes: svc.jupiter.OnlyDirectRoutes,
	}
}

func (svc *Service) logProfit(logger *zerolog.Logger, ev *Evaluation, quoteAB *domain.Quote) {
	event := logger.Info().
		Str("pair", svc.pair()).
		Uint64("stake", ev.Stake).
		Uint64("intermediate", quoteAB.OutAmount).
		Uint64("returned", ev.Returned).
		Int64("profit", ev.Profit).
		Uint64("tip", ev.Tip)
	if svc.cycle.InputMint == config.WSOLMint {
		event = event.Str("profit_sol", decimal.New(ev.Profit, 0).Div(decimal.New(common.LamportsPerSOL, 0)).String())
	}
	event.Msg("[ArbitrageService] quoted round trip")
}

func (svc *Service) pair() string {
	return fmt.Sprintf("%s->%s->%s", shortMint(svc.cycle.InputMint), shortMint(svc.cycle.OutputMint), shortMint(svc.cycle.InputMint))
}

func shortMint(m string) string {
	if len(m) <= 8 {
		return m
	}
	return m[:4] + ".." + m[len(m)-4:]
}

// timed runs fn, records how long the stage took and tags any error with
// the stage.
func timed(stage common.Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
	return common.AtStage(stage, err)
}
