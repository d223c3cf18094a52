package builder

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hxuan190/arb-engine/internal/common"
)

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey][]byte
	err      error
	calls    int
}

func (f *fakeAccounts) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.accounts[account]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{
			Owner: solana.AddressLookupTableProgramID,
			Data:  rpc.DataBytesOrJSONFromBytes(data),
		},
	}, nil
}

func encodeTable(t *testing.T, deactivation uint64, addresses ...solana.PublicKey) []byte {
	t.Helper()
	authority := solana.NewWallet().PublicKey()
	state := addresslookuptable.AddressLookupTableState{
		TypeIndex:        1,
		DeactivationSlot: deactivation,
		LastExtendedSlot: 10,
		Authority:        &authority,
		Addresses:        addresses,
	}
	buf := new(bytes.Buffer)
	if err := state.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		t.Fatalf("encode table: %v", err)
	}
	return buf.Bytes()
}

func TestResolve(t *testing.T) {
	a1, a2, a3 := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	t1, t2 := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()

	fetcher := &fakeAccounts{accounts: map[solana.PublicKey][]byte{
		t1: encodeTable(t, math.MaxUint64, a1, a2),
		t2: encodeTable(t, math.MaxUint64, a3),
	}}
	m := NewLUTManager(fetcher, 0)

	tables, err := m.Resolve(context.Background(), []solana.PublicKey{t1, t2})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("tables = %d, want 2", len(tables))
	}
	if got := tables[t1]; len(got) != 2 || !got[0].Equals(a1) || !got[1].Equals(a2) {
		t.Errorf("table 1 = %v", got)
	}
	if got := tables[t2]; len(got) != 1 || !got[0].Equals(a3) {
		t.Errorf("table 2 = %v", got)
	}
}

func TestResolveEmpty(t *testing.T) {
	fetcher := &fakeAccounts{}
	tables, err := NewLUTManager(fetcher, time.Minute).Resolve(context.Background(), nil)
	if err != nil || len(tables) != 0 || fetcher.calls != 0 {
		t.Errorf("Resolve(nil) = %v, %v after %d calls", tables, err, fetcher.calls)
	}
}

func TestResolveFailures(t *testing.T) {
	good := solana.NewWallet().PublicKey()
	missing := solana.NewWallet().PublicKey()
	inactive := solana.NewWallet().PublicKey()
	garbage := solana.NewWallet().PublicKey()

	accounts := map[solana.PublicKey][]byte{
		good:     encodeTable(t, math.MaxUint64, solana.NewWallet().PublicKey()),
		inactive: encodeTable(t, 1234, solana.NewWallet().PublicKey()),
		garbage:  {1, 2, 3},
	}

	tests := []struct {
		name   string
		addrs  []solana.PublicKey
		err    error
		target error
	}{
		{"missing account", []solana.PublicKey{good, missing}, nil, ErrLookupTableNotFound},
		{"deactivated table", []solana.PublicKey{inactive}, nil, ErrLookupTableInactive},
		{"undecodable state", []solana.PublicKey{garbage}, nil, ErrLookupTableNotFound},
		{"rpc failure", []solana.PublicKey{good}, errors.New("timeout"), common.ErrResolution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeAccounts{accounts: accounts, err: tt.err}
			_, err := NewLUTManager(fetcher, 0).Resolve(context.Background(), tt.addrs)
			if !errors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
			if !errors.Is(err, common.ErrResolution) {
				t.Errorf("err = %v should be a resolution error", err)
			}
		})
	}
}

func TestResolveCache(t *testing.T) {
	table := solana.NewWallet().PublicKey()
	fetcher := &fakeAccounts{accounts: map[solana.PublicKey][]byte{
		table: encodeTable(t, math.MaxUint64, solana.NewWallet().PublicKey()),
	}}
	m := NewLUTManager(fetcher, time.Minute)

	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := m.Resolve(context.Background(), []solana.PublicKey{table}); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
	}
	if fetcher.calls != 1 {
		t.Errorf("fetches = %d, want 1 while cached", fetcher.calls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := m.Resolve(context.Background(), []solana.PublicKey{table}); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if fetcher.calls != 2 {
		t.Errorf("fetches = %d, want 2 after ttl expiry", fetcher.calls)
	}
}
