package builder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/metrics"
)

var (
	ErrLookupTableNotFound = fmt.Errorf("lookup table not found: %w", common.ErrResolution)
	ErrLookupTableInactive = fmt.Errorf("lookup table deactivated: %w", common.ErrResolution)
)

// AccountFetcher reads raw account state.
type AccountFetcher interface {
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

type cachedTable struct {
	addresses solana.PublicKeySlice
	fetchedAt time.Time
}

// LUTManager resolves Address Lookup Tables for V0 transactions. Tables
// only ever grow, so a resolved table is reused until the TTL expires.
type LUTManager struct {
	client AccountFetcher
	ttl    time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	cache map[solana.PublicKey]cachedTable
}

// NewLUTManager creates a LUT manager. A zero ttl disables caching.
func NewLUTManager(client AccountFetcher, ttl time.Duration) *LUTManager {
	return &LUTManager{
		client: client,
		ttl:    ttl,
		now:    time.Now,
		cache:  make(map[solana.PublicKey]cachedTable),
	}
}

// Resolve fetches every table concurrently and returns them keyed by
// table address, ready for solana.TransactionAddressTables. Any table that
// cannot be resolved fails the whole call.
func (m *LUTManager) Resolve(ctx context.Context, addrs []solana.PublicKey) (map[solana.PublicKey]solana.PublicKeySlice, error) {
	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(addrs))
	if len(addrs) == 0 {
		return tables, nil
	}

	resolved := make([]solana.PublicKeySlice, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	for i, addr := range addrs {
		if cached, ok := m.cached(addr); ok {
			metrics.LUTResolutions.WithLabelValues("cache_hit").Inc()
			resolved[i] = cached
			continue
		}
		g.Go(func() error {
			addresses, err := m.fetch(gctx, addr)
			if err != nil {
				return err
			}
			resolved[i] = addresses
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, addr := range addrs {
		tables[addr] = resolved[i]
	}
	return tables, nil
}

func (m *LUTManager) cached(addr solana.PublicKey) (solana.PublicKeySlice, bool) {
	if m.ttl <= 0 {
		return nil, false
	}
	m.mu.RLock()
	entry, ok := m.cache[addr]
	m.mu.RUnlock()
	if !ok || m.now().Sub(entry.fetchedAt) >= m.ttl {
		return nil, false
	}
	return entry.addresses, true
}

func (m *LUTManager) fetch(ctx context.Context, addr solana.PublicKey) (solana.PublicKeySlice, error) {
	res, err := m.client.GetAccountInfo(ctx, addr)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			metrics.LUTResolutions.WithLabelValues("not_found").Inc()
			return nil, fmt.Errorf("%s: %w", addr, ErrLookupTableNotFound)
		}
		metrics.LUTResolutions.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: fetch %s: %v", common.ErrResolution, addr, err)
	}

	data := res.GetBinary()
	if len(data) == 0 {
		metrics.LUTResolutions.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%s: empty account: %w", addr, ErrLookupTableNotFound)
	}

	state, err := addresslookuptable.DecodeAddressLookupTableState(data)
	if err != nil {
		metrics.LUTResolutions.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%s: decode: %v: %w", addr, err, ErrLookupTableNotFound)
	}
	if !state.IsActive() {
		metrics.LUTResolutions.WithLabelValues("inactive").Inc()
		return nil, fmt.Errorf("%s: %w", addr, ErrLookupTableInactive)
	}

	if m.ttl > 0 {
		m.mu.Lock()
		m.cache[addr] = cachedTable{addresses: state.Addresses, fetchedAt: m.now()}
		m.mu.Unlock()
	}

	metrics.LUTResolutions.WithLabelValues("fetched").Inc()
	log.Debug().
		Str("lut", addr.String()).
		Int("addresses", len(state.Addresses)).
		Msg("[LUTManager] loaded LUT")

	return state.Addresses, nil
}
