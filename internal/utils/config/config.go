package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/types/environments"
)

const (
	defaultServerPort          = "8080"
	defaultStoreDriver         = "memory"
	defaultIndexPeriod         = "@every 15s"
	defaultStallSweepPeriod    = "@every 1m"
	defaultStallThreshold      = 30 * time.Minute
	defaultConfirmationSubject = "bridge.confirmations"
)

type AppConfig struct {
	Environment environments.Environment
	ApiServer   ApiServerConfig
	Postgres    DBConnection
	StoreDriver string
	Blockchain  BlockchainConfig
	IndexPeriod string
	Stall       StallConfig
	Nats        NatsConfig
	Webhooks    WebhookConfig
	Vault       VaultConfig
}

type ApiServerConfig struct {
	AllowedOrigins string
	Port           string
}

type DBConnection struct {
	Host string
	Port string
	User string
	Name string
	Pass string

	SSLMode string
}

type BlockchainConfig struct {
	EthereumRPCEndpoint string
	ApechainRPCEndpoint string

	// RequiredConfirmations is keyed by source network. Zero means the model default.
	RequiredConfirmations map[model.Network]int
}

type StallConfig struct {
	Threshold   time.Duration
	SweepPeriod string
}

type NatsConfig struct {
	URL                 string
	ConfirmationSubject string
}

type WebhookConfig struct {
	SettlementURL string

	// uptime pings fired after a successful job run
	IndexConfirmationsUptimeURL string
	SweepStalledUptimeURL       string
}

// VaultConfig enables loading secrets from Vault when Addr is set.
type VaultConfig struct {
	Addr         string
	KVSecretPath string
	Role         string
}

func New() *AppConfig {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// this will not override env variables if they already exist
	godotenv.Load(".env." + env)

	return &AppConfig{
		Environment: environments.Parse(env),
		ApiServer: ApiServerConfig{
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
			Port:           envOrDefault("SERVER_PORT", defaultServerPort),
		},
		Postgres: DBConnection{
			Host:    os.Getenv("DB_HOST"),
			Port:    os.Getenv("DB_PORT"),
			User:    os.Getenv("DB_USER"),
			Name:    os.Getenv("DB_NAME"),
			Pass:    os.Getenv("DB_PASS"),
			SSLMode: os.Getenv("DB_SSL_MODE"),
		},
		StoreDriver: strings.ToLower(envOrDefault("STORE_DRIVER", defaultStoreDriver)),
		Blockchain: BlockchainConfig{
			EthereumRPCEndpoint: os.Getenv("ETHEREUM_RPC_ENDPOINT"),
			ApechainRPCEndpoint: os.Getenv("APECHAIN_RPC_ENDPOINT"),
			RequiredConfirmations: map[model.Network]int{
				model.NetworkEthereum: envVarAtoiOrDefault("ETHEREUM_REQUIRED_CONFIRMATIONS", model.DefaultRequiredConfirmations),
				model.NetworkApechain: envVarAtoiOrDefault("APECHAIN_REQUIRED_CONFIRMATIONS", model.DefaultRequiredConfirmations),
			},
		},
		IndexPeriod: envOrDefault("INDEX_PERIOD", defaultIndexPeriod),
		Stall: StallConfig{
			Threshold:   envVarDurationOrDefault("STALL_THRESHOLD", defaultStallThreshold),
			SweepPeriod: envOrDefault("STALL_SWEEP_PERIOD", defaultStallSweepPeriod),
		},
		Nats: NatsConfig{
			URL:                 os.Getenv("NATS_URL"),
			ConfirmationSubject: envOrDefault("NATS_CONFIRMATION_SUBJECT", defaultConfirmationSubject),
		},
		Webhooks: WebhookConfig{
			SettlementURL:               os.Getenv("SETTLEMENT_WEBHOOK_URL"),
			IndexConfirmationsUptimeURL: os.Getenv("UPTIME_WEBHOOK_INDEX_CONFIRMATIONS_URL"),
			SweepStalledUptimeURL:       os.Getenv("UPTIME_WEBHOOK_SWEEP_STALLED_URL"),
		},
		Vault: VaultConfig{
			Addr:         os.Getenv("VAULT_ADDR"),
			KVSecretPath: os.Getenv("VAULT_KV_SECRET_PATH"),
			Role:         os.Getenv("VAULT_ROLE"),
		},
	}
}

// ApplySecrets overrides credential-bearing settings with values loaded from
// a secret store. Keys use the environment variable names; empty values are ignored.
func (c *AppConfig) ApplySecrets(secrets map[string]string) []string {
	targets := map[string]*string{
		"DB_PASS":                &c.Postgres.Pass,
		"DB_USER":                &c.Postgres.User,
		"ETHEREUM_RPC_ENDPOINT":  &c.Blockchain.EthereumRPCEndpoint,
		"APECHAIN_RPC_ENDPOINT":  &c.Blockchain.ApechainRPCEndpoint,
		"NATS_URL":               &c.Nats.URL,
		"SETTLEMENT_WEBHOOK_URL": &c.Webhooks.SettlementURL,
	}

	var applied []string
	for key, target := range targets {
		if v := strings.TrimSpace(secrets[key]); v != "" {
			*target = v
			applied = append(applied, key)
		}
	}
	sort.Strings(applied)
	return applied
}

func envOrDefault(envName, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
		return v
	}
	return fallback
}

// envVarAtoiOrDefault falls back on missing, malformed or non-positive values.
func envVarAtoiOrDefault(envName string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(envName)))
	if err != nil || value <= 0 {
		return fallback
	}

	return value
}

func envVarDurationOrDefault(envName string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(strings.TrimSpace(os.Getenv(envName)))
	if err != nil || value <= 0 {
		return fallback
	}

	return value
}
