package builder

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/arb-engine/internal/common"
)

// Signer holds the single operator key.
type Signer struct {
	key solana.PrivateKey
}

func NewSigner(key solana.PrivateKey) *Signer {
	return &Signer{key: key}
}

func (s *Signer) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

// Sign signs tx in place. Any required signer other than the operator
// fails the call.
func (s *Signer) Sign(tx *solana.Transaction) error {
	pub := s.key.PublicKey()
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrSigning, err)
	}
	return nil
}
