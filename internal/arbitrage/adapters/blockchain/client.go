package blockchain

import (
	"context"
	"net/http"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"

	"github.com/hxuan190/arb-engine/internal/config"
)

// ChainClient is the subset of the Solana JSON-RPC API the engine calls.
// *rpc.Client satisfies it.
type ChainClient interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	SimulateTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts *rpc.SimulateTransactionOpts) (*rpc.SimulateTransactionResponse, error)
	GetRecentPrioritizationFees(ctx context.Context, accounts solana.PublicKeySlice) ([]rpc.PriorizationFeeResult, error)
}

var _ ChainClient = (*rpc.Client)(nil)

// NewRPCClient builds the RPC client described by cfg. Every call is bounded
// by cfg.Timeout, including calls made on a context without a deadline.
func NewRPCClient(cfg *config.RPCConfig) *rpc.Client {
	opts := &jsonrpc.RPCClientOpts{
		HTTPClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
	}
	if cfg.APIKey != "" {
		opts.CustomHeaders = map[string]string{
			"x-api-key": cfg.APIKey,
		}
	}
	return rpc.NewWithCustomRPCClient(jsonrpc.NewClientWithOpts(cfg.RPCUrl, opts))
}
