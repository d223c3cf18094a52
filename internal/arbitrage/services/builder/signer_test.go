package builder

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/hxuan190/arb-engine/internal/common"
)

func TestSignerSign(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	signer := NewSigner(key)

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1, signer.PublicKey(), common.DefaultTipAccount).Build()},
		solana.Hash{1},
		solana.TransactionPayer(signer.PublicKey()),
	)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	if err := signer.Sign(tx); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(tx.Signatures) != 1 || tx.Signatures[0].IsZero() {
		t.Errorf("expected one non-zero signature")
	}
	if err := tx.VerifySignatures(); err != nil {
		t.Errorf("VerifySignatures: %v", err)
	}
}

func TestSignerForeignSigner(t *testing.T) {
	signer := NewSigner(solana.NewWallet().PrivateKey)
	other := solana.NewWallet().PublicKey()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1, other, common.DefaultTipAccount).Build()},
		solana.Hash{1},
		solana.TransactionPayer(signer.PublicKey()),
	)
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	if err := signer.Sign(tx); !errors.Is(err, common.ErrSigning) {
		t.Errorf("err = %v, want ErrSigning", err)
	}
}
