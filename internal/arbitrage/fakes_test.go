package arbitrage

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hxuan190/arb-engine/internal/arbitrage/services/builder"
	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/config"
	"github.com/hxuan190/arb-engine/internal/domain"
)

type fakeSwap struct {
	mu sync.Mutex

	abOut, baOut uint64
	quoteErr     error
	tables       []string
	panicNext    bool

	quoteReqs []domain.QuoteRequest
	swapReqs  []*domain.SwapInstructionsRequest
}

func (f *fakeSwap) GetQuote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicNext {
		f.panicNext = false
		panic("aggregator exploded")
	}
	f.quoteReqs = append(f.quoteReqs, req)
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	out := f.abOut
	if len(f.quoteReqs)%2 == 0 {
		out = f.baOut
	}
	return &domain.Quote{
		InputMint:            req.InputMint,
		InAmount:             req.Amount,
		OutputMint:           req.OutputMint,
		OutAmount:            out,
		OtherAmountThreshold: out,
		SwapMode:             "ExactIn",
		PriceImpactPct:       "0.001",
		RoutePlan:            []domain.RouteStep{domain.RouteStep(`{"percent":100}`)},
		ContextSlot:          321,
	}, nil
}

func (f *fakeSwap) GetSwapInstructions(ctx context.Context, req *domain.SwapInstructionsRequest) (*domain.SwapInstructions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swapReqs = append(f.swapReqs, req)
	return &domain.SwapInstructions{
		ComputeUnitLimit: 300_000,
		SwapInstruction: domain.InstructionDescriptor{
			ProgramID: common.JupiterProgramID.String(),
			Accounts: []domain.AccountDescriptor{
				{Pubkey: req.UserPublicKey, IsSigner: true, IsWritable: true},
				{Pubkey: solana.NewWallet().PublicKey().String(), IsWritable: true},
			},
			Data: base64.StdEncoding.EncodeToString([]byte{0xE5, 0x17, 0xCB, 0x97}),
		},
		AddressLookupTableAddresses: f.tables,
	}, nil
}

func (f *fakeSwap) swapCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.swapReqs)
}

type fakeRelay struct {
	mu   sync.Mutex
	txs  []*solana.Transaction
	err  error
	next string
}

func (f *fakeRelay) SendBundle(ctx context.Context, txs ...*solana.Transaction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txs = append(f.txs, txs...)
	if f.err != nil {
		return "", f.err
	}
	return "bundle-1", nil
}

type fakeChain struct {
	mu      sync.Mutex
	balance uint64
	sendErr error
	sent    []*solana.Transaction
}

func (f *fakeChain) GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	return &rpc.GetBalanceResult{Value: f.balance}, nil
}

func (f *fakeChain) GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeChain) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	return nil, rpc.ErrNotFound
}

func (f *fakeChain) SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	return tx.Signatures[0], nil
}

func (f *fakeChain) SimulateTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts *rpc.SimulateTransactionOpts) (*rpc.SimulateTransactionResponse, error) {
	units := uint64(120_000)
	return &rpc.SimulateTransactionResponse{Value: &rpc.SimulateTransactionResult{
		Logs:          []string{"Program JUP6Lkb success"},
		UnitsConsumed: &units,
	}}, nil
}

func (f *fakeChain) GetRecentPrioritizationFees(ctx context.Context, accounts solana.PublicKeySlice) ([]rpc.PriorizationFeeResult, error) {
	return nil, nil
}

type fakeBlockhash struct{}

func (fakeBlockhash) GetBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	return solana.Hash{7}, 100, nil
}

type fixedTip struct {
	account solana.PublicKey
}

func (f fixedTip) Next() solana.PublicKey {
	return f.account
}

type harness struct {
	svc   *Service
	swap  *fakeSwap
	relay BundleSender
	chain *fakeChain
	tip   solana.PublicKey
	payer solana.PublicKey
}

func newHarness(t *testing.T, swap *fakeSwap, relay BundleSender, chain *fakeChain, configure func(*config.Config)) *harness {
	t.Helper()

	cfg := config.Defaults()
	cfg.Cycle.PollInterval = 0
	if configure != nil {
		configure(cfg)
	}

	key := solana.NewWallet().PrivateKey
	tip := solana.NewWallet().PublicKey()
	b := builder.NewBuilderService(builder.NewLUTManager(chain, 0), fakeBlockhash{}, chain, rpc.CommitmentProcessed)

	svc, err := NewService(cfg, Deps{
		Swap:      swap,
		Relay:     relay,
		Builder:   b,
		Signer:    builder.NewSigner(key),
		Chain:     chain,
		Blockhash: fakeBlockhash{},
		Tips:      fixedTip{account: tip},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &harness{svc: svc, swap: swap, relay: relay, chain: chain, tip: tip, payer: key.PublicKey()}
}
