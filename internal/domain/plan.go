package domain

import (
	"github.com/gagliardetto/solana-go"
)

// TransactionPlan is everything needed to compile the cycle transaction.
// Instructions are kept in execution order:
// compute budget, setup, swap, tip transfer.
type TransactionPlan struct {
	Payer solana.PublicKey

	Instructions []solana.Instruction

	AddressTables map[solana.PublicKey]solana.PublicKeySlice

	Blockhash solana.Hash

	LastValidBlockHeight uint64

	ComputeUnitLimit uint32

	TipAccount solana.PublicKey

	TipLamports uint64
}
