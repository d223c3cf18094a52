package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/arb-engine/internal/arbitrage/services/priority"
	"github.com/hxuan190/arb-engine/internal/domain"
)

var (
	ErrInvalidPayer  = errors.New("invalid payer address")
	ErrMissingSwap   = errors.New("swap instructions are missing")
	ErrBuildFailed   = errors.New("failed to build transaction")
	ErrInvalidTables = errors.New("invalid lookup table address")
)

// DefaultComputeUnitLimit is used when the aggregator reports no limit.
const DefaultComputeUnitLimit = 1_400_000

const BUILDER_SERVICE_NAME = "BuilderService"

type BlockhashProvider interface {
	GetBlockhash(ctx context.Context) (solana.Hash, uint64, error)
}

type TableResolver interface {
	Resolve(ctx context.Context, addrs []solana.PublicKey) (map[solana.PublicKey]solana.PublicKeySlice, error)
}

type Simulator interface {
	SimulateTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts *rpc.SimulateTransactionOpts) (*rpc.SimulateTransactionResponse, error)
}

// BuildParams describes one cycle transaction.
type BuildParams struct {
	Payer            solana.PublicKey
	Swap             *domain.SwapInstructions
	TipAccount       solana.PublicKey
	TipLamports      uint64
	ComputeUnitPrice uint64
}

type BuilderService struct {
	tables     TableResolver
	blockhash  BlockhashProvider
	simulator  Simulator
	commitment rpc.CommitmentType
}

func NewBuilderService(tables TableResolver, blockhash BlockhashProvider, simulator Simulator, commitment rpc.CommitmentType) *BuilderService {
	return &BuilderService{
		tables:     tables,
		blockhash:  blockhash,
		simulator:  simulator,
		commitment: commitment,
	}
}

func (svc *BuilderService) ID() string {
	return BUILDER_SERVICE_NAME
}

// BuildPlan assembles the instruction list
// [compute budget, ...setup, swap, tip transfer], resolves the lookup tables
// and fetches a blockhash.
func (svc *BuilderService) BuildPlan(ctx context.Context, p BuildParams) (*domain.TransactionPlan, error) {
	if p.Payer.IsZero() {
		return nil, ErrInvalidPayer
	}
	if p.Swap == nil {
		return nil, ErrMissingSwap
	}

	limit := p.Swap.ComputeUnitLimit
	if limit == 0 {
		log.Debug().Msg("[BuilderService] no compute unit limit returned, using default")
		limit = DefaultComputeUnitLimit
	}

	instructions := priority.BuildBudgetInstructions(limit, p.ComputeUnitPrice)

	for i := range p.Swap.SetupInstructions {
		ix, err := p.Swap.SetupInstructions[i].ToInstruction()
		if err != nil {
			return nil, fmt.Errorf("setup instruction %d: %w", i, err)
		}
		instructions = append(instructions, ix)
	}

	swapIx, err := p.Swap.SwapInstruction.ToInstruction()
	if err != nil {
		return nil, fmt.Errorf("swap instruction: %w", err)
	}
	instructions = append(instructions, swapIx)

	if p.Swap.CleanupInstruction != nil {
		log.Debug().Str("program", p.Swap.CleanupInstruction.ProgramID).Msg("[BuilderService] ignoring cleanup instruction")
	}

	instructions = append(instructions, system.NewTransferInstruction(p.TipLamports, p.Payer, p.TipAccount).Build())

	tableKeys, err := p.Swap.LookupTableKeys()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTables, err)
	}
	tables, err := svc.tables.Resolve(ctx, tableKeys)
	if err != nil {
		return nil, err
	}

	blockhash, lastValid, err := svc.blockhash.GetBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("get blockhash: %w", err)
	}

	return &domain.TransactionPlan{
		Payer:                p.Payer,
		Instructions:         instructions,
		AddressTables:        tables,
		Blockhash:            blockhash,
		LastValidBlockHeight: lastValid,
		ComputeUnitLimit:     limit,
		TipAccount:           p.TipAccount,
		TipLamports:          p.TipLamports,
	}, nil
}

// Compile turns a plan into an unsigned V0 transaction.
func (svc *BuilderService) Compile(plan *domain.TransactionPlan) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(
		plan.Instructions,
		plan.Blockhash,
		solana.TransactionPayer(plan.Payer),
		solana.TransactionAddressTables(plan.AddressTables),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	tx.Message.SetVersion(solana.MessageVersionV0)
	return tx, nil
}

// WritableAccounts lists the writable accounts of the plan's swap leg, used
// to sample prioritization fees.
func WritableAccounts(swap *domain.SwapInstructions) []solana.PublicKey {
	out := make([]solana.PublicKey, 0, 8)
	for _, acc := range swap.SwapInstruction.Accounts {
		if !acc.IsWritable || acc.IsSigner {
			continue
		}
		pk, err := solana.PublicKeyFromBase58(acc.Pubkey)
		if err != nil {
			continue
		}
		out = append(out, pk)
	}
	return out
}
