package config

import (
	"errors"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

type RPCConfig struct {
	RPCUrl     string        `toml:"url"`
	Commitment string        `toml:"commitment"`
	Timeout    time.Duration `toml:"timeout"`
	// Headers sent with every RPC call, e.g. an API key for a private node.
	APIKey string `toml:"api_key"`
}

func DefaultRPCConfig() RPCConfig {
	return RPCConfig{
		RPCUrl:     "https://solana-rpc.publicnode.com",
		Commitment: string(rpc.CommitmentProcessed),
		Timeout:    5 * time.Second,
	}
}

func (r *RPCConfig) Key() string {
	return RPC_CONFIG_KEY
}

func (r *RPCConfig) Load() error {
	setString(&r.RPCUrl, "RPC_URL")
	setString(&r.Commitment, "RPC_COMMITMENT")
	setString(&r.APIKey, "RPC_KEY")
	return setDuration(&r.Timeout, "RPC_TIMEOUT")
}

func (r *RPCConfig) Validate() error {
	if r.RPCUrl == "" {
		return errors.New("invalid rpc config")
	}
	if r.Timeout <= 0 {
		return errors.New("rpc timeout must be positive")
	}
	switch rpc.CommitmentType(r.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return errors.New("invalid rpc commitment")
	}
	return nil
}

// CommitmentType returns the configured commitment as the rpc type.
func (r *RPCConfig) CommitmentType() rpc.CommitmentType {
	return rpc.CommitmentType(r.Commitment)
}
