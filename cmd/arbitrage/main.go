package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/arb-engine/internal/arbitrage"
	"github.com/hxuan190/arb-engine/internal/arbitrage/adapters/blockchain"
	"github.com/hxuan190/arb-engine/internal/arbitrage/adapters/jupiter"
	"github.com/hxuan190/arb-engine/internal/arbitrage/adapters/relay"
	"github.com/hxuan190/arb-engine/internal/arbitrage/services/builder"
	"github.com/hxuan190/arb-engine/internal/arbitrage/services/priority"
	"github.com/hxuan190/arb-engine/internal/common"
	"github.com/hxuan190/arb-engine/internal/config"
	"github.com/hxuan190/arb-engine/internal/http"
)

func main() {
	common.InitRuntime()

	// a missing .env is fine, the environment may already be populated
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Msg("failed to load env")
		return
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return
	}
	common.InitLogger(cfg.General.LogLevel, cfg.General.Env)

	key, err := cfg.Wallet.PrivateKey()
	if err != nil {
		log.Error().Err(err).Msg("failed to load wallet")
		return
	}
	signer := builder.NewSigner(key)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rpcClient := blockchain.NewRPCClient(&cfg.RPC)
	commitment := cfg.RPC.CommitmentType()

	blockhashCache := blockchain.NewBlockhashCacheService(rpcClient, commitment, cfg.Blockhash.MaxAge)
	blockhashCache.Start(ctx)

	builderSvc := builder.NewBuilderService(
		builder.NewLUTManager(rpcClient, cfg.LUT.CacheTTL),
		blockhashCache,
		rpcClient,
		commitment,
	)

	tips, err := relay.NewTipAccountPicker(&cfg.Relay)
	if err != nil {
		log.Error().Err(err).Msg("failed to configure tip account")
		return
	}

	deps := arbitrage.Deps{
		Swap:      jupiter.NewClient(&cfg.Jupiter),
		Relay:     relay.NewClient(&cfg.Relay),
		Builder:   builderSvc,
		Signer:    signer,
		Chain:     rpcClient,
		Blockhash: blockhashCache,
		Tips:      tips,
	}
	if cfg.Cycle.PriorityUrgency != "" {
		urgency, err := priority.ParseUrgency(cfg.Cycle.PriorityUrgency)
		if err != nil {
			log.Error().Err(err).Msg("invalid priority urgency")
			return
		}
		deps.Priority = priority.NewService(rpcClient).WithUrgency(urgency)
	}

	arbSvc, err := arbitrage.NewService(cfg, deps)
	if err != nil {
		log.Error().Err(err).Msg("failed to create arbitrage service")
		return
	}

	log.Info().
		Str("wallet", signer.PublicKey().String()).
		Str("rpc", cfg.RPC.RPCUrl).
		Str("relay", cfg.Relay.URL).
		Msg("arbitrage engine configured")

	var httpSvc *http.HTTPService
	if cfg.General.HTTPEnabled {
		httpSvc, err = http.NewHTTPService(&cfg.General, arbSvc)
		if err != nil {
			log.Error().Err(err).Msg("failed to create http service")
			return
		}
		go func() {
			if err := httpSvc.Start(); err != nil {
				log.Error().Err(err).Msg("http server stopped unexpectedly")
			}
		}()
	}

	if err := arbSvc.Run(ctx); err != nil {
		log.Error().Err(err).Msg("polling loop failed")
	}

	log.Info().Msg("Shutting down services...")
	if httpSvc != nil {
		if err := httpSvc.Stop(); err != nil {
			log.Error().Err(err).Msg("error during shutdown")
		}
	}
	log.Info().Msg("Shutdown complete")
}
