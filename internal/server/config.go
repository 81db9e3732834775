package server

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/pitboss/blackjack/engine"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Rules  *RulesConfig   `hcl:"rules,block"`
	Table  *TableSettings `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address       string `hcl:"address,optional"`
	Port          int    `hcl:"port,optional"`
	LogLevel      string `hcl:"log_level,optional"`
	ActionTimeout string `hcl:"action_timeout,optional"`
}

// RulesConfig overrides individual table rules. Anything left unset
// falls back to the house defaults.
type RulesConfig struct {
	Decks            int     `hcl:"decks,optional"`
	Penetration      float64 `hcl:"penetration,optional"`
	DealerHitsSoft17 bool    `hcl:"dealer_hits_soft_17,optional"`
	DoubleAfterSplit *bool   `hcl:"double_after_split,optional"`
	ResplitAces      bool    `hcl:"resplit_aces,optional"`
	LateSurrender    *bool   `hcl:"late_surrender,optional"`
	MaxSplits        *int    `hcl:"max_splits,optional"`
}

// TableSettings contains betting limits and the bankroll handed to
// every new session
type TableSettings struct {
	MinBet          float64 `hcl:"min_bet,optional"`
	MaxBet          float64 `hcl:"max_bet,optional"`
	StartingBalance float64 `hcl:"starting_balance,optional"`
}

// envOverrides are applied on top of whatever the file configured
type envOverrides struct {
	Address       string `env:"BLACKJACK_ADDR"`
	Port          int    `env:"BLACKJACK_PORT"`
	LogLevel      string `env:"BLACKJACK_LOG_LEVEL"`
	ActionTimeout string `env:"BLACKJACK_ACTION_TIMEOUT"`
}

const defaultActionTimeout = 30 * time.Second

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:       "localhost",
			Port:          8080,
			LogLevel:      "info",
			ActionTimeout: "30s",
		},
		Table: &TableSettings{
			MinBet:          1,
			MaxBet:          500,
			StartingBalance: 1000,
		},
	}
}

// LoadConfig loads server configuration from an HCL file, then applies
// environment overrides. A missing file yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filename); err == nil {
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCLFile(filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
		}

		config = &Config{}
		diags = gohcl.DecodeBody(file.Body, nil, config)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
		}

		// Apply defaults for missing values
		if config.Server.Address == "" {
			config.Server.Address = "localhost"
		}
		if config.Server.Port == 0 {
			config.Server.Port = 8080
		}
		if config.Server.LogLevel == "" {
			config.Server.LogLevel = "info"
		}
		if config.Server.ActionTimeout == "" {
			config.Server.ActionTimeout = "30s"
		}
		if config.Table == nil {
			config.Table = DefaultConfig().Table
		} else {
			if config.Table.MinBet == 0 {
				config.Table.MinBet = 1
			}
			if config.Table.MaxBet == 0 {
				config.Table.MaxBet = 500
			}
			if config.Table.StartingBalance == 0 {
				config.Table.StartingBalance = 1000
			}
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadRules reads just the rules block from an HCL file, ignoring any
// server or table configuration around it. The simulator shares rule
// files with the server this way.
func LoadRules(filename string) (engine.Rules, error) {
	if _, err := os.Stat(filename); err != nil {
		return engine.Rules{}, fmt.Errorf("rules file: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return engine.Rules{}, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var parsed struct {
		Rules  *RulesConfig `hcl:"rules,block"`
		Remain hcl.Body     `hcl:",remain"`
	}
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return engine.Rules{}, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := &Config{Rules: parsed.Rules}
	return cfg.GetRules(), nil
}

// applyEnvOverrides lets the environment win over the file
func applyEnvOverrides(config *Config) error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if overrides.Address != "" {
		config.Server.Address = overrides.Address
	}
	if overrides.Port != 0 {
		config.Server.Port = overrides.Port
	}
	if overrides.LogLevel != "" {
		config.Server.LogLevel = overrides.LogLevel
	}
	if overrides.ActionTimeout != "" {
		config.Server.ActionTimeout = overrides.ActionTimeout
	}

	return nil
}

// GetRules materialises the configured table rules on top of the house
// defaults
func (c *Config) GetRules() engine.Rules {
	rules := engine.DefaultRules()
	rc := c.Rules
	if rc == nil {
		return rules
	}

	if rc.Decks != 0 {
		rules.Decks = rc.Decks
	}
	if rc.Penetration != 0 {
		rules.Penetration = rc.Penetration
	}
	rules.DealerHitsSoft17 = rc.DealerHitsSoft17
	if rc.DoubleAfterSplit != nil {
		rules.DoubleAfterSplit = *rc.DoubleAfterSplit
	}
	rules.ResplitAces = rc.ResplitAces
	if rc.LateSurrender != nil {
		rules.LateSurrender = *rc.LateSurrender
	}
	if rc.MaxSplits != nil {
		rules.MaxSplits = *rc.MaxSplits
	}

	return rules
}

// GetActionTimeout returns the parsed per-decision timeout
func (c *Config) GetActionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ActionTimeout)
	if err != nil || d <= 0 {
		return defaultActionTimeout
	}
	return d
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if c.Server.ActionTimeout != "" {
		if _, err := time.ParseDuration(c.Server.ActionTimeout); err != nil {
			return fmt.Errorf("invalid action timeout: %w", err)
		}
	}

	if err := c.GetRules().Validate(); err != nil {
		return err
	}

	if c.Table != nil {
		if c.Table.MinBet <= 0 {
			return fmt.Errorf("min bet must be positive, got %v", c.Table.MinBet)
		}
		if c.Table.MaxBet < c.Table.MinBet {
			return fmt.Errorf("max bet %v is below min bet %v", c.Table.MaxBet, c.Table.MinBet)
		}
		if c.Table.StartingBalance < c.Table.MinBet {
			return fmt.Errorf("starting balance %v cannot cover the min bet %v", c.Table.StartingBalance, c.Table.MinBet)
		}
	}

	return nil
}

// GetMinBet returns the table minimum
func (c *Config) GetMinBet() float64 {
	if c.Table == nil {
		return 1
	}
	return c.Table.MinBet
}

// GetMaxBet returns the table maximum
func (c *Config) GetMaxBet() float64 {
	if c.Table == nil {
		return 500
	}
	return c.Table.MaxBet
}

// GetStartingBalance returns the bankroll granted to new sessions
func (c *Config) GetStartingBalance() float64 {
	if c.Table == nil {
		return 1000
	}
	return c.Table.StartingBalance
}
