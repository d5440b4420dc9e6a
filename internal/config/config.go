// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"pnyx/internal/domain"
	"pnyx/pkg/db"
)

// EnvPrefix prefixes every environment override, e.g. PNYX_DATABASE_HOST.
const EnvPrefix = "PNYX"

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	// CORSAllowedOrigins feeds the router's CORS middleware.
	CORSAllowedOrigins []string
	LogLevel           string
	DB                 db.Config
	Redis              RedisConfig
	Staking            StakingConfig
	Issues             IssuesConfig
	Fees               map[domain.TransactionTypeName]decimal.Decimal
}

// RedisConfig configures the optional ranking cache.
type RedisConfig struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	RankingTTL time.Duration
}

// StakingConfig holds the stake lifetime and ranking cutoffs.
type StakingConfig struct {
	ProposalStakeLifetimeDays int
	TopStakedProposalsPercent float64
	TopStakedIssuesPercent    float64
	SweepInterval             time.Duration
}

// IssuesConfig bounds issue due dates.
type IssuesConfig struct {
	MaxDueDays int
}

var feeKeys = map[domain.TransactionTypeName]string{
	domain.TransactionTypeGenesis:               "fees.genesis",
	domain.TransactionTypeAddIssue:              "fees.add_issue",
	domain.TransactionTypeAddProposal:           "fees.add_proposal",
	domain.TransactionTypeStakeProposal:         "fees.stake_proposal",
	domain.TransactionTypeStakeProposalRollback: "fees.stake_proposal_rollback",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "pnyx")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ranking_ttl", 30*time.Second)

	v.SetDefault("staking.proposal_stake_lifetime_days", 7)
	v.SetDefault("staking.top_staked_proposals_percent", 10)
	v.SetDefault("staking.top_staked_issues_percent", 10)
	v.SetDefault("staking.sweep_interval", time.Minute)

	v.SetDefault("issues.max_due_days", 365)

	v.SetDefault("fees.genesis", "100")
	v.SetDefault("fees.add_issue", "-5")
	v.SetDefault("fees.add_proposal", "-2")
	v.SetDefault("fees.stake_proposal", "-10")
	v.SetDefault("fees.stake_proposal_rollback", "10")
}

// LoadConfig loads configuration from defaults, an optional config file named
// by PNYX_CONFIG, and PNYX_* environment variables.
func LoadConfig() (*AppConfig, error) {
	return Load(os.Getenv(EnvPrefix + "_CONFIG"))
}

// Load builds the configuration, reading configFile when it is not empty.
func Load(configFile string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &AppConfig{
		ServerPort:         v.GetString("server.port"),
		CORSAllowedOrigins: v.GetStringSlice("server.cors_allowed_origins"),
		LogLevel:           v.GetString("log.level"),
		DB: db.Config{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Enabled:    v.GetBool("redis.enabled"),
			Addr:       v.GetString("redis.addr"),
			Password:   v.GetString("redis.password"),
			DB:         v.GetInt("redis.db"),
			RankingTTL: v.GetDuration("redis.ranking_ttl"),
		},
		Staking: StakingConfig{
			ProposalStakeLifetimeDays: v.GetInt("staking.proposal_stake_lifetime_days"),
			TopStakedProposalsPercent: v.GetFloat64("staking.top_staked_proposals_percent"),
			TopStakedIssuesPercent:    v.GetFloat64("staking.top_staked_issues_percent"),
			SweepInterval:             v.GetDuration("staking.sweep_interval"),
		},
		Issues: IssuesConfig{
			MaxDueDays: v.GetInt("issues.max_due_days"),
		},
		Fees: make(map[domain.TransactionTypeName]decimal.Decimal, len(feeKeys)),
	}

	for name, key := range feeKeys {
		fee, err := decimal.NewFromString(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		cfg.Fees[name] = fee
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges that would otherwise break staking or ranking.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Staking.ProposalStakeLifetimeDays <= 0 {
		errs = append(errs, errors.New("staking.proposal_stake_lifetime_days must be positive"))
	}
	if !(c.Staking.TopStakedProposalsPercent >= 0 && c.Staking.TopStakedProposalsPercent <= 100) {
		errs = append(errs, errors.New("staking.top_staked_proposals_percent must be within [0, 100]"))
	}
	if !(c.Staking.TopStakedIssuesPercent >= 0 && c.Staking.TopStakedIssuesPercent <= 100) {
		errs = append(errs, errors.New("staking.top_staked_issues_percent must be within [0, 100]"))
	}
	if c.Staking.SweepInterval <= 0 {
		errs = append(errs, errors.New("staking.sweep_interval must be positive"))
	}
	if c.Issues.MaxDueDays <= 0 {
		errs = append(errs, errors.New("issues.max_due_days must be positive"))
	}
	stakeFee := c.Fees[domain.TransactionTypeStakeProposal]
	if stakeFee.IsPositive() {
		errs = append(errs, errors.New("fees.stake_proposal must not be a credit"))
	}
	// A rollback credits back exactly what the stake debited.
	if !c.Fees[domain.TransactionTypeStakeProposalRollback].Equal(stakeFee.Neg()) {
		errs = append(errs, errors.New("fees.stake_proposal_rollback must equal the negated fees.stake_proposal"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
