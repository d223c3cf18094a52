package config

import (
	"errors"
	"time"
)

type JupiterConfig struct {
	BaseURL          string        `toml:"base_url"`
	APIKey           string        `toml:"-"`
	Timeout          time.Duration `toml:"timeout"`
	SlippageBps      int           `toml:"slippage_bps"`
	MaxAccounts      int           `toml:"max_accounts"`
	OnlyDirectRoutes bool          `toml:"only_direct_routes"`
}

func DefaultJupiterConfig() JupiterConfig {
	return JupiterConfig{
		BaseURL:     "https://api.jup.ag/swap/v1",
		Timeout:     5 * time.Second,
		SlippageBps: 0,
		MaxAccounts: 20,
	}
}

func (c *JupiterConfig) Key() string {
	return JUPITER_CONFIG_KEY
}

func (c *JupiterConfig) Load() error {
	setString(&c.BaseURL, "JUPITER_BASE_URL")
	setString(&c.APIKey, "JUPITER_API_KEY")
	if err := setDuration(&c.Timeout, "HTTP_TIMEOUT"); err != nil {
		return err
	}
	if err := setInt(&c.SlippageBps, "SLIPPAGE_BPS"); err != nil {
		return err
	}
	if err := setInt(&c.MaxAccounts, "MAX_ACCOUNTS"); err != nil {
		return err
	}
	return setBool(&c.OnlyDirectRoutes, "ONLY_DIRECT_ROUTES")
}

func (c *JupiterConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("jupiter base url is required")
	}
	if c.SlippageBps < 0 || c.SlippageBps > 10_000 {
		return errors.New("slippage bps out of range")
	}
	if c.MaxAccounts <= 0 {
		return errors.New("max accounts must be positive")
	}
	return nil
}
