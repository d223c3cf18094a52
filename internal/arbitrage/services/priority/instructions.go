package priority

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/arb-engine/internal/common"
)

const (
	setComputeUnitLimitDiscriminator uint8 = 2
	setComputeUnitPriceDiscriminator uint8 = 3
)

// SetComputeUnitLimitInstruction sets the compute unit limit
type SetComputeUnitLimitInstruction struct {
	Units uint32
}

func NewSetComputeUnitLimitInstruction(units uint32) *SetComputeUnitLimitInstruction {
	return &SetComputeUnitLimitInstruction{Units: units}
}

func (ix *SetComputeUnitLimitInstruction) ProgramID() solana.PublicKey {
	return common.ComputeBudgetProgramID
}

func (ix *SetComputeUnitLimitInstruction) Accounts() []*solana.AccountMeta {
	return nil
}

func (ix *SetComputeUnitLimitInstruction) Data() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 5))
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(setComputeUnitLimitDiscriminator); err != nil {
		return nil, err
	}
	if err := enc.WriteUint32(ix.Units, bin.LE); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SetComputeUnitPriceInstruction sets the compute unit price
type SetComputeUnitPriceInstruction struct {
	MicroLamports uint64
}

func NewSetComputeUnitPriceInstruction(microLamports uint64) *SetComputeUnitPriceInstruction {
	return &SetComputeUnitPriceInstruction{MicroLamports: microLamports}
}

func (ix *SetComputeUnitPriceInstruction) ProgramID() solana.PublicKey {
	return common.ComputeBudgetProgramID
}

func (ix *SetComputeUnitPriceInstruction) Accounts() []*solana.AccountMeta {
	return nil
}

func (ix *SetComputeUnitPriceInstruction) Data() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 9))
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint8(setComputeUnitPriceDiscriminator); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(ix.MicroLamports, bin.LE); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildBudgetInstructions returns the compute budget prefix of a
// transaction. The unit price instruction is only added when microLamports
// is non-zero.
func BuildBudgetInstructions(units uint32, microLamports uint64) []solana.Instruction {
	instructions := make([]solana.Instruction, 0, 2)
	instructions = append(instructions, NewSetComputeUnitLimitInstruction(units))
	if microLamports > 0 {
		instructions = append(instructions, NewSetComputeUnitPriceInstruction(microLamports))
	}
	return instructions
}
