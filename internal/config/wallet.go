package config

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

type WalletConfig struct {
	// SecretKey is the base58 encoded operator key.
	SecretKey string `toml:"-"`
	// KeypairPath points at a solana-keygen JSON file, used when SecretKey is empty.
	KeypairPath string `toml:"keypair_path"`
}

func (w *WalletConfig) Key() string {
	return WALLET_CONFIG_KEY
}

func (w *WalletConfig) Load() error {
	setString(&w.SecretKey, "SECRET_KEY")
	setString(&w.KeypairPath, "KEYPAIR_PATH")
	return nil
}

func (w *WalletConfig) Validate() error {
	if w.SecretKey == "" && w.KeypairPath == "" {
		return errors.New("SECRET_KEY or KEYPAIR_PATH is required")
	}
	return nil
}

// PrivateKey loads the operator key from whichever source is configured.
func (w *WalletConfig) PrivateKey() (solana.PrivateKey, error) {
	if w.SecretKey != "" {
		key, err := solana.PrivateKeyFromBase58(w.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("decode SECRET_KEY: %w", err)
		}
		return key, nil
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(w.KeypairPath)
	if err != nil {
		return nil, fmt.Errorf("read keypair %s: %w", w.KeypairPath, err)
	}
	return key, nil
}
