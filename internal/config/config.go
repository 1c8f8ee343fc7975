package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Issuer   IssuerConfig
	Chain    ChainConfig
	Mint     MintConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Addr string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	TicketMinted string
	EventCreated string
}

// IssuerConfig drives the external proof-of-attendance issuer client.
type IssuerConfig struct {
	Audience     string
	ClientID     string
	ClientSecret string
	TokenURL     string
	EventsURL    string
}

// ChainConfig maps network → token standard → indexer endpoint. Anything not
// present here is an unsupported combination.
type ChainConfig struct {
	Endpoints map[string]map[string]string
}

type MintConfig struct {
	// Treasury receives the mint payment; Value is the amount in wei.
	TreasuryAddress string
	Value           string
	ProviderURL     string
	LockTTL         time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "ticket_user"),
			Password:     getEnv("DB_PASSWORD", "ticket_pass"),
			Database:     getEnv("DB_NAME", "nft_ticketing"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", true),
			Topics: TopicConfig{
				TicketMinted: getEnv("KAFKA_TOPIC_TICKET_MINTED", "ticketing.ticket.minted"),
				EventCreated: getEnv("KAFKA_TOPIC_EVENT_CREATED", "ticketing.event.created"),
			},
		},
		Issuer: IssuerConfig{
			Audience:     getEnv("POAP_AUDIENCE", "https://api.poap.xyz"),
			ClientID:     getEnv("POAP_CLIENT_ID", ""),
			ClientSecret: getEnv("POAP_CLIENT_SECRET", ""),
			TokenURL:     fmt.Sprintf("https://%s/oauth/token", getEnv("POAP_DOMAIN", "auth.accounts.poap.xyz")),
			EventsURL:    getEnv("POAP_EVENTS_URL", "https://api.poap.xyz/events"),
		},
		Chain: ChainConfig{
			Endpoints: map[string]map[string]string{
				"mainnet": {
					"erc721":  getEnv("GRAPH_MAINNET_ERC721_URL", "https://api.thegraph.com/subgraphs/name/mohit-acc/erc721_mainnet"),
					"erc1155": getEnv("GRAPH_MAINNET_ERC1155_URL", "https://api.thegraph.com/subgraphs/name/eventonchain/mainnet-erc1155-subgraph"),
				},
				"rinkeby": {
					"erc721":  getEnv("GRAPH_RINKEBY_ERC721_URL", "https://api.thegraph.com/subgraphs/name/digital/rinkeby-erc721"),
					"erc1155": getEnv("GRAPH_RINKEBY_ERC1155_URL", "https://api.thegraph.com/subgraphs/name/sanguru/erc1155-rinkeby-subgraph"),
				},
			},
		},
		Mint: MintConfig{
			TreasuryAddress: getEnv("MINT_TREASURY_ADDRESS", "0x8F52Ef5933925aa2e536c7c882A643ba4C0797b8"),
			Value:           getEnv("MINT_VALUE_WEI", "1000000000000"),
			ProviderURL:     getEnv("CHAIN_PROVIDER_URL", "http://localhost:8545"),
			LockTTL:         time.Duration(getEnvInt("MINT_LOCK_TTL_SECONDS", 90)) * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
