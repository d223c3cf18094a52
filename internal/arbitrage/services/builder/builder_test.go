package builder

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/domain"
)

type fakeTables struct {
	tables map[solana.PublicKey]solana.PublicKeySlice
	err    error
	calls  int
}

func (f *fakeTables) Resolve(ctx context.Context, addrs []solana.PublicKey) (map[solana.PublicKey]solana.PublicKeySlice, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.tables == nil {
		return map[solana.PublicKey]solana.PublicKeySlice{}, nil
	}
	return f.tables, nil
}

type fakeBlockhash struct {
	calls int
}

func (f *fakeBlockhash) GetBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	f.calls++
	return solana.Hash{9, 9, 9}, 5000, nil
}

func descriptor(program solana.PublicKey, accounts ...domain.AccountDescriptor) domain.InstructionDescriptor {
	return domain.InstructionDescriptor{
		ProgramID: program.String(),
		Accounts:  accounts,
		Data:      base64.StdEncoding.EncodeToString([]byte{0xAA, 0xBB}),
	}
}

func writable(pk solana.PublicKey) domain.AccountDescriptor {
	return domain.AccountDescriptor{Pubkey: pk.String(), IsWritable: true}
}

func newSwap(setupPrograms []solana.PublicKey, swapProgram solana.PublicKey, swapAccount solana.PublicKey) *domain.SwapInstructions {
	setup := make([]domain.InstructionDescriptor, 0, len(setupPrograms))
	for _, p := range setupPrograms {
		setup = append(setup, descriptor(p, writable(solana.NewWallet().PublicKey())))
	}
	return &domain.SwapInstructions{
		ComputeUnitLimit:  245_000,
		SetupInstructions: setup,
		SwapInstruction:   descriptor(swapProgram, writable(swapAccount)),
	}
}

func TestBuildPlanInstructionOrder(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	swapProgram := common.JupiterProgramID

	for _, n := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("%d setup instructions", n), func(t *testing.T) {
			setupPrograms := make([]solana.PublicKey, n)
			for i := range setupPrograms {
				setupPrograms[i] = solana.NewWallet().PublicKey()
			}

			svc := NewBuilderService(&fakeTables{}, &fakeBlockhash{}, nil, rpc.CommitmentProcessed)
			plan, err := svc.BuildPlan(context.Background(), BuildParams{
				Payer:       payer,
				Swap:        newSwap(setupPrograms, swapProgram, solana.NewWallet().PublicKey()),
				TipAccount:  common.DefaultTipAccount,
				TipLamports: 2500,
			})
			if err != nil {
				t.Fatalf("BuildPlan: %v", err)
			}

			want := []solana.PublicKey{common.ComputeBudgetProgramID}
			want = append(want, setupPrograms...)
			want = append(want, swapProgram, solana.SystemProgramID)

			if len(plan.Instructions) != len(want) {
				t.Fatalf("instructions = %d, want %d", len(plan.Instructions), len(want))
			}
			for i, ix := range plan.Instructions {
				if !ix.ProgramID().Equals(want[i]) {
					t.Errorf("instruction %d program = %s, want %s", i, ix.ProgramID(), want[i])
				}
			}

			tx, err := svc.Compile(plan)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if tx.Message.GetVersion() != solana.MessageVersionV0 {
				t.Errorf("message version = %d, want v0", tx.Message.GetVersion())
			}
			if !tx.Message.AccountKeys[0].Equals(payer) {
				t.Errorf("fee payer = %s, want %s", tx.Message.AccountKeys[0], payer)
			}
			if len(tx.Message.Instructions) != len(want) {
				t.Fatalf("compiled instructions = %d, want %d", len(tx.Message.Instructions), len(want))
			}
			for i, ci := range tx.Message.Instructions {
				if got := tx.Message.AccountKeys[ci.ProgramIDIndex]; !got.Equals(want[i]) {
					t.Errorf("compiled instruction %d program = %s, want %s", i, got, want[i])
				}
			}
		})
	}
}

func TestBuildPlanWithComputeUnitPrice(t *testing.T) {
	svc := NewBuilderService(&fakeTables{}, &fakeBlockhash{}, nil, rpc.CommitmentProcessed)
	plan, err := svc.BuildPlan(context.Background(), BuildParams{
		Payer:            solana.NewWallet().PublicKey(),
		Swap:             newSwap(nil, common.JupiterProgramID, solana.NewWallet().PublicKey()),
		TipAccount:       common.DefaultTipAccount,
		TipLamports:      1,
		ComputeUnitPrice: 10_000,
	})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if len(plan.Instructions) != 4 {
		t.Fatalf("instructions = %d, want 4", len(plan.Instructions))
	}
	for i := 0; i < 2; i++ {
		if !plan.Instructions[i].ProgramID().Equals(common.ComputeBudgetProgramID) {
			t.Errorf("instruction %d should be a compute budget instruction", i)
		}
	}
	if !plan.Instructions[2].ProgramID().Equals(common.JupiterProgramID) {
		t.Errorf("swap must follow the compute budget prefix")
	}
}

func TestBuildPlanTipTransfer(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	tip := solana.NewWallet().PublicKey()

	svc := NewBuilderService(&fakeTables{}, &fakeBlockhash{}, nil, rpc.CommitmentProcessed)
	plan, err := svc.BuildPlan(context.Background(), BuildParams{
		Payer:       payer,
		Swap:        newSwap(nil, common.JupiterProgramID, solana.NewWallet().PublicKey()),
		TipAccount:  tip,
		TipLamports: 2500,
	})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}

	last := plan.Instructions[len(plan.Instructions)-1]
	if !last.ProgramID().Equals(solana.SystemProgramID) {
		t.Fatalf("last instruction program = %s, want system", last.ProgramID())
	}

	data, err := last.Data()
	if err != nil {
		t.Fatalf("Data: %v", err)
	}
	dec := bin.NewBinDecoder(data)
	kind, _ := dec.ReadUint32(bin.LE)
	lamports, _ := dec.ReadUint64(bin.LE)
	if kind != 2 || lamports != 2500 {
		t.Errorf("transfer (kind %d, lamports %d), want (2, 2500)", kind, lamports)
	}

	accounts := last.Accounts()
	if len(accounts) != 2 || !accounts[0].PublicKey.Equals(payer) || !accounts[1].PublicKey.Equals(tip) {
		t.Errorf("transfer accounts = %v", accounts)
	}
	if plan.TipLamports != 2500 || plan.ComputeUnitLimit != 245_000 || plan.LastValidBlockHeight != 5000 {
		t.Errorf("unexpected plan %+v", plan)
	}
}

func TestBuildPlanLookupFailureAborts(t *testing.T) {
	tables := &fakeTables{err: fmt.Errorf("table x: %w", ErrLookupTableNotFound)}
	blockhash := &fakeBlockhash{}
	svc := NewBuilderService(tables, blockhash, nil, rpc.CommitmentProcessed)

	swap := newSwap(nil, common.JupiterProgramID, solana.NewWallet().PublicKey())
	swap.AddressLookupTableAddresses = []string{solana.NewWallet().PublicKey().String()}

	_, err := svc.BuildPlan(context.Background(), BuildParams{
		Payer:      solana.NewWallet().PublicKey(),
		Swap:       swap,
		TipAccount: common.DefaultTipAccount,
	})
	if !errors.Is(err, common.ErrResolution) {
		t.Fatalf("err = %v, want ErrResolution", err)
	}
	if blockhash.calls != 0 {
		t.Errorf("blockhash fetched after resolution failure")
	}
}

func TestBuildPlanInvalidInput(t *testing.T) {
	svc := NewBuilderService(&fakeTables{}, &fakeBlockhash{}, nil, rpc.CommitmentProcessed)

	bad := newSwap(nil, common.JupiterProgramID, solana.NewWallet().PublicKey())
	bad.SwapInstruction.Data = "!!"

	badTable := newSwap(nil, common.JupiterProgramID, solana.NewWallet().PublicKey())
	badTable.AddressLookupTableAddresses = []string{"nope"}

	tests := []struct {
		name   string
		params BuildParams
		target error
	}{
		{"zero payer", BuildParams{Swap: bad}, ErrInvalidPayer},
		{"nil swap", BuildParams{Payer: solana.NewWallet().PublicKey()}, ErrMissingSwap},
		{"bad swap data", BuildParams{Payer: solana.NewWallet().PublicKey(), Swap: bad}, domain.ErrInvalidInstruction},
		{"bad table address", BuildParams{Payer: solana.NewWallet().PublicKey(), Swap: badTable}, ErrInvalidTables},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.BuildPlan(context.Background(), tt.params); !errors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestCompileUsesLookupTables(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	swapAccount := solana.NewWallet().PublicKey()
	table := solana.NewWallet().PublicKey()

	tables := &fakeTables{tables: map[solana.PublicKey]solana.PublicKeySlice{
		table: {solana.NewWallet().PublicKey(), swapAccount},
	}}
	svc := NewBuilderService(tables, &fakeBlockhash{}, nil, rpc.CommitmentProcessed)

	swap := newSwap(nil, common.JupiterProgramID, swapAccount)
	swap.AddressLookupTableAddresses = []string{table.String()}

	plan, err := svc.BuildPlan(context.Background(), BuildParams{
		Payer:       payer,
		Swap:        swap,
		TipAccount:  common.DefaultTipAccount,
		TipLamports: 10,
	})
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	tx, err := svc.Compile(plan)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	lookups := tx.Message.GetAddressTableLookups()
	if len(lookups) != 1 || !lookups[0].AccountKey.Equals(table) {
		t.Fatalf("lookups = %+v", lookups)
	}
	if len(lookups[0].WritableIndexes) != 1 || lookups[0].WritableIndexes[0] != 1 {
		t.Errorf("writable indexes = %v, want [1]", lookups[0].WritableIndexes)
	}
	for _, key := range tx.Message.AccountKeys {
		if key.Equals(swapAccount) {
			t.Errorf("table account should not be a static key")
		}
	}
}

func TestWritableAccounts(t *testing.T) {
	w := solana.NewWallet().PublicKey()
	swap := &domain.SwapInstructions{
		SwapInstruction: domain.InstructionDescriptor{
			Accounts: []domain.AccountDescriptor{
				{Pubkey: solana.NewWallet().PublicKey().String(), IsSigner: true, IsWritable: true},
				{Pubkey: w.String(), IsWritable: true},
				{Pubkey: solana.NewWallet().PublicKey().String()},
			},
		},
	}
	got := WritableAccounts(swap)
	if len(got) != 1 || !got[0].Equals(w) {
		t.Errorf("WritableAccounts = %v, want [%s]", got, w)
	}
}
