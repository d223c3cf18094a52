package domain

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ErrInvalidInstruction = errors.New("invalid instruction descriptor")

// SwapInstructionsRequest is the body posted to the swap-instructions
// endpoint.
type SwapInstructionsRequest struct {
	UserPublicKey string `json:"userPublicKey"`

	WrapAndUnwrapSol bool `json:"wrapAndUnwrapSol"`

	UseSharedAccounts bool `json:"useSharedAccounts"`

	ComputeUnitPriceMicroLamports uint64 `json:"computeUnitPriceMicroLamports"`

	DynamicComputeUnitLimit bool `json:"dynamicComputeUnitLimit"`

	SkipUserAccountsRpcCalls bool `json:"skipUserAccountsRpcCalls"`

	QuoteResponse *Quote `json:"quoteResponse"`
}

type AccountDescriptor struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// InstructionDescriptor is an instruction in serialized form: program id,
// ordered account metas and base64 data.
type InstructionDescriptor struct {
	ProgramID string              `json:"programId"`
	Accounts  []AccountDescriptor `json:"accounts"`
	Data      string              `json:"data"`
}

// ToInstruction decodes the descriptor into a solana instruction.
func (d *InstructionDescriptor) ToInstruction() (solana.Instruction, error) {
	programID, err := solana.PublicKeyFromBase58(d.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("%w: program id %q: %v", ErrInvalidInstruction, d.ProgramID, err)
	}

	metas := make(solana.AccountMetaSlice, 0, len(d.Accounts))
	for i, acc := range d.Accounts {
		pk, err := solana.PublicKeyFromBase58(acc.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("%w: account %d %q: %v", ErrInvalidInstruction, i, acc.Pubkey, err)
		}
		metas = append(metas, solana.NewAccountMeta(pk, acc.IsWritable, acc.IsSigner))
	}

	data, err := base64.StdEncoding.DecodeString(d.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: data: %v", ErrInvalidInstruction, err)
	}

	return solana.NewInstruction(programID, metas, data), nil
}

// SwapInstructions is the decomposed swap returned by the aggregator.
type SwapInstructions struct {
	ComputeUnitLimit uint32 `json:"computeUnitLimit"`

	ComputeBudgetInstructions []InstructionDescriptor `json:"computeBudgetInstructions"`

	SetupInstructions []InstructionDescriptor `json:"setupInstructions"`

	SwapInstruction InstructionDescriptor `json:"swapInstruction"`

	CleanupInstruction *InstructionDescriptor `json:"cleanupInstruction"`

	OtherInstructions []InstructionDescriptor `json:"otherInstructions"`

	AddressLookupTableAddresses []string `json:"addressLookupTableAddresses"`

	PrioritizationFeeLamports uint64 `json:"prioritizationFeeLamports"`
}

// LookupTableKeys parses the lookup table addresses.
func (s *SwapInstructions) LookupTableKeys() ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, 0, len(s.AddressLookupTableAddresses))
	for _, addr := range s.AddressLookupTableAddresses {
		pk, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			return nil, fmt.Errorf("lookup table address %q: %w", addr, err)
		}
		keys = append(keys, pk)
	}
	return keys, nil
}

type SimulationResult struct {
	Success              bool     `json:"success"`
	Logs                 []string `json:"logs"`
	ComputeUnitsConsumed uint64   `json:"computeUnitsConsumed"`
	Error                string   `json:"error,omitempty"`

	InsufficientFunds bool `json:"insufficientFunds"`

	SlippageExceeded bool `json:"slippageExceeded"`
}
