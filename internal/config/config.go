package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type ServerEnv = string

var (
	DevEnv     ServerEnv = "dev"
	StagingEnv ServerEnv = "staging"
	ProdEnv    ServerEnv = "prod"
)

const (
	GENERAL_CONFIG_KEY   = "general-config"
	RPC_CONFIG_KEY       = "rpc-config"
	WALLET_CONFIG_KEY    = "wallet-config"
	JUPITER_CONFIG_KEY   = "jupiter-config"
	RELAY_CONFIG_KEY     = "relay-config"
	CYCLE_CONFIG_KEY     = "cycle-config"
	PREFLIGHT_CONFIG_KEY = "preflight-config"
	BLOCKHASH_CONFIG_KEY = "blockhash-config"
)

// Section is a self-loading piece of configuration.
type Section interface {
	Key() string
	Load() error
	Validate() error
}

// Config groups every section the engine reads at startup.
type Config struct {
	General   GeneralConfig   `toml:"general"`
	RPC       RPCConfig       `toml:"rpc"`
	Wallet    WalletConfig    `toml:"wallet"`
	Jupiter   JupiterConfig   `toml:"jupiter"`
	Relay     RelayConfig     `toml:"relay"`
	Cycle     CycleConfig     `toml:"cycle"`
	Preflight PreflightConfig `toml:"preflight"`
	LUT       LUTConfig       `toml:"lut"`
	Blockhash BlockhashConfig `toml:"blockhash"`
}

// Defaults returns a Config populated with the built-in values.
func Defaults() *Config {
	return &Config{
		General:   DefaultGeneralConfig(),
		RPC:       DefaultRPCConfig(),
		Jupiter:   DefaultJupiterConfig(),
		Relay:     DefaultRelayConfig(),
		Cycle:     DefaultCycleConfig(),
		Preflight: DefaultPreflightConfig(),
		LUT:       DefaultLUTConfig(),
		Blockhash: DefaultBlockhashConfig(),
	}
}

func (c *Config) Sections() []Section {
	return []Section{
		&c.General,
		&c.RPC,
		&c.Wallet,
		&c.Jupiter,
		&c.Relay,
		&c.Cycle,
		&c.Preflight,
		&c.LUT,
		&c.Blockhash,
	}
}

// Load builds the configuration from defaults, an optional TOML file and the
// process environment, in that order of precedence (env wins).
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	for _, s := range cfg.Sections() {
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("load %s: %w", s.Key(), err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	for _, s := range c.Sections() {
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Key(), err))
		}
	}
	return errors.Join(errs...)
}

type GeneralConfig struct {
	HTTPPort    string `toml:"http_port"`
	HTTPHost    string `toml:"http_host"`
	HTTPEnabled bool   `toml:"http_enabled"`
	Env         string `toml:"env"`
	LogLevel    string `toml:"log_level"`
}

func DefaultGeneralConfig() GeneralConfig {
	return GeneralConfig{
		HTTPPort:    "8080",
		HTTPHost:    "localhost",
		HTTPEnabled: true,
		Env:         DevEnv,
		LogLevel:    "INFO",
	}
}

func (gc *GeneralConfig) Key() string {
	return GENERAL_CONFIG_KEY
}

func (gc *GeneralConfig) Load() error {
	setString(&gc.HTTPPort, "HTTP_PORT")
	setString(&gc.HTTPHost, "HTTP_HOST")
	setString(&gc.Env, "ENV")
	setString(&gc.LogLevel, "LOG_LEVEL")
	return setBool(&gc.HTTPEnabled, "HTTP_ENABLED")
}

func (gc *GeneralConfig) Validate() error {
	if gc.HTTPPort == "" || gc.HTTPHost == "" || gc.Env == "" {
		return errors.New("invalid server config")
	}
	switch strings.ToLower(gc.Env) {
	case DevEnv, StagingEnv, ProdEnv:
	default:
		return fmt.Errorf("unknown env %q", gc.Env)
	}
	return nil
}
