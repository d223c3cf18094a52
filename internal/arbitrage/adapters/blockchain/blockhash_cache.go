package blockchain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/arb-engine/internal/common"
)

const BLOCKHASH_CACHE_SERVICE = "cache-blockhash-svc"

// staleFallback bounds how old a cached blockhash may be when the RPC
// node cannot serve a new one.
const staleFallback = 30 * time.Second

const minRefreshInterval = 50 * time.Millisecond

type CachedBlockhash struct {
	Blockhash            solana.Hash
	LastValidBlockHeight uint64
	Slot                 uint64
	UpdatedAt            time.Time
}

type BlockhashCacheService struct {
	mu         sync.RWMutex
	current    *CachedBlockhash
	client     ChainClient
	commitment rpc.CommitmentType
	maxAge     time.Duration
	now        func() time.Time
}

// NewBlockhashCacheService returns a cache that reuses a blockhash for at
// most maxAge. A zero maxAge fetches on every call.
func NewBlockhashCacheService(client ChainClient, commitment rpc.CommitmentType, maxAge time.Duration) *BlockhashCacheService {
	return &BlockhashCacheService{
		client:     client,
		commitment: commitment,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

func (svc *BlockhashCacheService) ID() string {
	return BLOCKHASH_CACHE_SERVICE
}

// Start keeps the cache warm in the background until ctx is done. It is a
// no-op when caching is disabled.
func (svc *BlockhashCacheService) Start(ctx context.Context) {
	if svc.maxAge <= 0 {
		return
	}
	if _, err := svc.refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("[BlockhashCacheService] failed to fetch initial blockhash, will retry on first request")
	}

	go func() {
		ticker := time.NewTicker(svc.refreshInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := svc.refresh(ctx); err != nil && ctx.Err() == nil {
					log.Warn().Err(err).Msg("[BlockhashCacheService] background refresh failed")
				}
			}
		}
	}()
}

func (svc *BlockhashCacheService) refreshInterval() time.Duration {
	return max(svc.maxAge/2, minRefreshInterval)
}

func (svc *BlockhashCacheService) refresh(ctx context.Context) (*CachedBlockhash, error) {
	res, err := svc.client.GetLatestBlockhash(ctx, svc.commitment)
	if err != nil {
		return nil, fmt.Errorf("%w: get latest blockhash: %v", common.ErrNetwork, err)
	}

	fresh := &CachedBlockhash{
		Blockhash:            res.Value.Blockhash,
		LastValidBlockHeight: res.Value.LastValidBlockHeight,
		Slot:                 res.Context.Slot,
		UpdatedAt:            svc.now(),
	}

	svc.mu.Lock()
	svc.current = fresh
	svc.mu.Unlock()

	log.Debug().
		Str("blockhash", fresh.Blockhash.String()).
		Uint64("slot", fresh.Slot).
		Msg("[BlockhashCacheService] refreshed blockhash")

	return fresh, nil
}

// GetBlockhash returns a recent blockhash and its last valid block height.
func (svc *BlockhashCacheService) GetBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	svc.mu.RLock()
	cached := svc.current
	svc.mu.RUnlock()

	if cached != nil && svc.maxAge > 0 && svc.now().Sub(cached.UpdatedAt) < svc.maxAge {
		return cached.Blockhash, cached.LastValidBlockHeight, nil
	}

	fresh, err := svc.refresh(ctx)
	if err != nil {
		if cached != nil && svc.now().Sub(cached.UpdatedAt) < staleFallback {
			log.Warn().Err(err).Msg("[BlockhashCacheService] rpc failed, serving cached blockhash")
			return cached.Blockhash, cached.LastValidBlockHeight, nil
		}
		return solana.Hash{}, 0, err
	}

	return fresh.Blockhash, fresh.LastValidBlockHeight, nil
}
