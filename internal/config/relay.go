package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

type RelayConfig struct {
	URL string `toml:"url"`
	// TipAccount receives the incentive fee. Empty picks a Jito tip account.
	TipAccount string `toml:"tip_account"`
	// RotateTipAccount spreads tips across all published Jito tip accounts.
	RotateTipAccount bool          `toml:"rotate_tip_account"`
	AuthUUID         string        `toml:"-"`
	Timeout          time.Duration `toml:"timeout"`
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		URL:     "https://frankfurt.mainnet.block-engine.jito.wtf/api/v1/bundles",
		Timeout: 5 * time.Second,
	}
}

func (c *RelayConfig) Key() string {
	return RELAY_CONFIG_KEY
}

func (c *RelayConfig) Load() error {
	setString(&c.URL, "RELAY_URL")
	setString(&c.TipAccount, "TIP_ACCOUNT")
	setString(&c.AuthUUID, "RELAY_AUTH_UUID")
	if err := setBool(&c.RotateTipAccount, "TIP_ROTATE"); err != nil {
		return err
	}
	return setDuration(&c.Timeout, "RELAY_TIMEOUT")
}

func (c *RelayConfig) Validate() error {
	if c.URL == "" {
		return errors.New("relay url is required")
	}
	if c.TipAccount != "" {
		if _, err := solana.PublicKeyFromBase58(c.TipAccount); err != nil {
			return fmt.Errorf("invalid tip account: %w", err)
		}
	}
	if c.AuthUUID != "" {
		if _, err := uuid.Parse(c.AuthUUID); err != nil {
			return fmt.Errorf("invalid relay auth uuid: %w", err)
		}
	}
	return nil
}
