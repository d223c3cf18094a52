package blockchain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/hxuan190/arb-engine/internal/config"
)

func TestNewRPCClientHonorsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewRPCClient(&config.RPCConfig{RPCUrl: srv.URL, Timeout: 100 * time.Millisecond})

	start := time.Now()
	_, err := client.GetBalance(context.Background(), solana.NewWallet().PublicKey(), rpc.CommitmentProcessed)
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected timeout error from slow node")
	}
	if elapsed > time.Second {
		t.Fatalf("call took %v, timeout not applied", elapsed)
	}
}

func TestNewRPCClientSendsAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":7},"value":42}}`))
	}))
	defer srv.Close()

	client := NewRPCClient(&config.RPCConfig{RPCUrl: srv.URL, Timeout: time.Second, APIKey: "secret"})

	res, err := client.GetBalance(context.Background(), solana.NewWallet().PublicKey(), rpc.CommitmentProcessed)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if res.Value != 42 {
		t.Errorf("balance = %d, want 42", res.Value)
	}
	if gotKey != "secret" {
		t.Errorf("x-api-key = %q, want secret", gotKey)
	}
}
