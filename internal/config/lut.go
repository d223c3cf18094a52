package config

import (
	"fmt"
	"time"
)

const LUT_CONFIG_KEY = "lut-config"

type LUTConfig struct {
	// CacheTTL controls how long a resolved lookup table is reused across
	// cycles. Zero resolves every table on every cycle.
	CacheTTL time.Duration `toml:"cache_ttl"`
}

func DefaultLUTConfig() LUTConfig {
	return LUTConfig{CacheTTL: 60 * time.Second}
}

func (c *LUTConfig) Key() string {
	return LUT_CONFIG_KEY
}

func (c *LUTConfig) Load() error {
	return setDuration(&c.CacheTTL, "LUT_CACHE_TTL")
}

func (c *LUTConfig) Validate() error {
	return nil
}

type BlockhashConfig struct {
	// MaxAge is how long a fetched blockhash may be reused. Zero always
	// fetches a fresh one.
	MaxAge time.Duration `toml:"max_age"`
}

func DefaultBlockhashConfig() BlockhashConfig {
	return BlockhashConfig{}
}

func (c *BlockhashConfig) Key() string {
	return BLOCKHASH_CONFIG_KEY
}

func (c *BlockhashConfig) Load() error {
	return setDuration(&c.MaxAge, "BLOCKHASH_MAX_AGE")
}

// MinBlockhashMaxAge is the smallest non-zero reuse window.
const MinBlockhashMaxAge = 100 * time.Millisecond

func (c *BlockhashConfig) Validate() error {
	if c.MaxAge < 0 || (c.MaxAge > 0 && c.MaxAge < MinBlockhashMaxAge) {
		return fmt.Errorf("blockhash max age must be 0 or at least %s", MinBlockhashMaxAge)
	}
	return nil
}
