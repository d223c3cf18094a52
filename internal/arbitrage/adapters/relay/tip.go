package relay

import (
	"fmt"
	"math/rand/v2"

	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/config"
)

// TipAccountPicker chooses the account that receives the incentive fee.
type TipAccountPicker struct {
	fixed  solana.PublicKey
	rotate bool
	pick   func(n int) int
}

func NewTipAccountPicker(cfg *config.RelayConfig) (*TipAccountPicker, error) {
	p := &TipAccountPicker{
		fixed:  common.DefaultTipAccount,
		rotate: cfg.RotateTipAccount,
		pick:   rand.IntN,
	}
	if cfg.TipAccount != "" {
		pk, err := solana.PublicKeyFromBase58(cfg.TipAccount)
		if err != nil {
			return nil, fmt.Errorf("invalid tip account: %w", err)
		}
		p.fixed = pk
	}
	return p, nil
}

// Next returns the tip account for the next bundle.
func (p *TipAccountPicker) Next() solana.PublicKey {
	if !p.rotate {
		return p.fixed
	}
	return common.JitoTipAccounts[p.pick(len(common.JitoTipAccounts))]
}
