// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/solana-txsend/internal/blockchain/solbc/priorityfee"
)

// Transfer описывает один перевод SOL
type Transfer struct {
	Recipient string `mapstructure:"recipient"`
	Lamports  uint64 `mapstructure:"lamports"`
}

type Config struct {
	RPCURL           string     `mapstructure:"rpc_url"`
	Commitment       string     `mapstructure:"commitment"`
	PrivateKey       string     `mapstructure:"private_key"`
	ComputeUnitLimit uint32     `mapstructure:"compute_unit_limit"`
	PriorityFee      bool       `mapstructure:"priority_fee"`
	PriorityLevel    string     `mapstructure:"priority_level"`
	HTTPTimeoutMs    int        `mapstructure:"http_timeout_ms"`
	Confirm          bool       `mapstructure:"confirm"`
	ConfirmTimeoutMs int        `mapstructure:"confirm_timeout_ms"`
	DebugLogging     bool       `mapstructure:"debug_logging"`
	LogFile          string     `mapstructure:"log_file"`
	Transfers        []Transfer `mapstructure:"transfers"`
}

const (
	DefaultCommitment       = "confirmed"
	DefaultComputeUnitLimit = 200_000
	DefaultHTTPTimeoutMs    = 10_000
	DefaultConfirmTimeoutMs = 30_000
	DefaultLogFile          = "logs/txsend.log"

	envPrefix = "SOLANA_TX"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"commitment":         DefaultCommitment,
		"compute_unit_limit": DefaultComputeUnitLimit,
		"priority_fee":       true,
		"priority_level":     string(priorityfee.DefaultPriorityLevel),
		"http_timeout_ms":    DefaultHTTPTimeoutMs,
		"confirm":            false,
		"confirm_timeout_ms": DefaultConfirmTimeoutMs,
		"log_file":           DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

// CommitmentType возвращает commitment в терминах rpc
func (c *Config) CommitmentType() rpc.CommitmentType {
	return rpc.CommitmentType(strings.ToLower(c.Commitment))
}

// Level возвращает уровень приоритета для сервиса оценки комиссии
func (c *Config) Level() priorityfee.PriorityLevel {
	level, err := priorityfee.ParsePriorityLevel(c.PriorityLevel)
	if err != nil {
		return priorityfee.DefaultPriorityLevel
	}
	return level
}

func validateConfig(cfg *Config) error {
	if cfg.RPCURL == "" {
		return errors.New("rpc_url is empty")
	}
	if err := validateURL(cfg.RPCURL, "http"); err != nil {
		return fmt.Errorf("invalid rpc_url: %w", err)
	}
	if cfg.PrivateKey == "" {
		return errors.New("missing private_key in configuration")
	}
	switch cfg.CommitmentType() {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("invalid commitment: %q", cfg.Commitment)
	}
	if _, err := priorityfee.ParsePriorityLevel(cfg.PriorityLevel); err != nil {
		return err
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	return validateTransfers(cfg.Transfers)
}

func validateNumericParams(cfg *Config) error {
	if cfg.ComputeUnitLimit == 0 {
		return errors.New("invalid compute_unit_limit")
	}
	if cfg.HTTPTimeoutMs <= 0 {
		return errors.New("invalid http_timeout_ms")
	}
	if cfg.ConfirmTimeoutMs <= 0 {
		return errors.New("invalid confirm_timeout_ms")
	}
	return nil
}

func validateTransfers(transfers []Transfer) error {
	if len(transfers) == 0 {
		return errors.New("transfers list is empty")
	}
	for i, t := range transfers {
		if _, err := solana.PublicKeyFromBase58(t.Recipient); err != nil {
			return fmt.Errorf("transfers[%d]: invalid recipient: %w", i, err)
		}
		if t.Lamports == 0 {
			return fmt.Errorf("transfers[%d]: lamports must be positive", i)
		}
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	return nil
}

// loadEnvironmentVariables позволяет переопределить ключи через SOLANA_TX_*,
// например SOLANA_TX_PRIVATE_KEY, чтобы не хранить ключ в файле.
func loadEnvironmentVariables(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"rpc_url",
		"commitment",
		"private_key",
		"compute_unit_limit",
		"priority_fee",
		"priority_level",
		"http_timeout_ms",
		"confirm",
		"confirm_timeout_ms",
		"debug_logging",
		"log_file",
	} {
		_ = v.BindEnv(key)
	}
}
