package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

var (
	ConfigPath    = "./config/"
	ConfigFile    = ConfigPath + "config.json"
	EnvFile       = ".env"
	LogPath       = "./logs/"
	BackendLog    = "backend"
	RelayerLog    = "relayer"
	PipelineLog   = "pipeline"
	SenderLog     = "sender"
	StoreLog      = "store"
	NetworkLog    = "network"
	BalanceLog    = "balance"
	InitializeLog = "initialize"
)

const (
	DefaultRelayer         = "ws://localhost:8080"
	DefaultBlockEngine     = "https://ny.mainnet.block-engine.jito.wtf"
	DefaultQueueSize       = 100
	DefaultMaxInFlight     = 256
	DefaultToleranceBps    = 1
	DefaultFeeBps          = 25
	DefaultTipBps          = 3000
	DefaultSubmitTimeoutMs = 5000
	DefaultListen          = ":8090"
	DefaultBalanceTicker   = 10
)

type Node struct {
	Rpc    string `json:"rpc"`
	Ws     string `json:"ws"`
	Usable bool   `json:"usable"`
}

type Config struct {
	Nodes             []*Node          `json:"nodes"`
	Relayer           string           `json:"relayer"`
	BlockEngines      []string         `json:"block_engines"`
	DetectBlockEngine bool             `json:"detect_block_engine"`
	KeyFile           string           `json:"key_file"`
	SandwichProgram   solana.PublicKey `json:"sandwich_program"`
	QueueSize         int              `json:"queue_size"`
	MaxInFlight       int64            `json:"max_in_flight"`
	ToleranceBps      uint64           `json:"tolerance_bps"`
	FeeBps            uint64           `json:"fee_bps"`
	TipBps            uint16           `json:"tip_bps"`
	SubmitTimeoutMs   int64            `json:"submit_timeout_ms"`
	BalanceTicker     uint64           `json:"balance_ticker"`
	LogLevel          string           `json:"log_level"`
	Listen            string           `json:"listen"`
	DingUrl           string           `json:"ding-url"`
	DBDialect         string           `json:"db_dialect"`
	DBUrl             string           `json:"db_url"`
}

// Load reads the JSON config file, then applies .env and SANDWICH_* overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config(%s) err: %w", path, err)
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config(%s) err: %w", path, err)
	}
	if err := godotenv.Load(EnvFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s err: %w", EnvFile, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	if v := os.Getenv("SANDWICH_RPC"); v != "" {
		cfg.Nodes = []*Node{{Rpc: v, Usable: true}}
	}
	if v := os.Getenv("SANDWICH_RELAYER"); v != "" {
		cfg.Relayer = v
	}
	if v := os.Getenv("SANDWICH_BLOCK_ENGINE"); v != "" {
		cfg.BlockEngines = strings.Split(v, ",")
	}
	if v := os.Getenv("SANDWICH_KEY_FILE"); v != "" {
		cfg.KeyFile = v
	}
	if v := os.Getenv("SANDWICH_PROGRAM"); v != "" {
		key, err := solana.PublicKeyFromBase58(v)
		if err != nil {
			return fmt.Errorf("SANDWICH_PROGRAM(%s) is not a valid public key: %w", v, err)
		}
		cfg.SandwichProgram = key
	}
	if v := os.Getenv("SANDWICH_DB_URL"); v != "" {
		cfg.DBUrl = v
	}
	if v := os.Getenv("SANDWICH_DING_URL"); v != "" {
		cfg.DingUrl = v
	}
	if v := os.Getenv("SANDWICH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// Check validates the mandatory fields and fills defaults for the rest.
func (cfg *Config) Check() error {
	if len(cfg.Nodes) == 0 || cfg.Nodes[0].Rpc == "" {
		return fmt.Errorf("no rpc node in config")
	}
	if cfg.KeyFile == "" {
		return fmt.Errorf("no key file in config")
	}
	if cfg.SandwichProgram.IsZero() {
		return fmt.Errorf("no sandwich program in config")
	}
	if cfg.Relayer == "" {
		cfg.Relayer = DefaultRelayer
	}
	if len(cfg.BlockEngines) == 0 {
		cfg.BlockEngines = []string{DefaultBlockEngine}
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = DefaultMaxInFlight
	}
	if cfg.ToleranceBps == 0 {
		cfg.ToleranceBps = DefaultToleranceBps
	}
	if cfg.FeeBps == 0 {
		cfg.FeeBps = DefaultFeeBps
	}
	if cfg.FeeBps >= 10000 {
		return fmt.Errorf("fee bps(%d) out of range", cfg.FeeBps)
	}
	if cfg.TipBps == 0 {
		cfg.TipBps = DefaultTipBps
	}
	if cfg.TipBps > 10000 {
		return fmt.Errorf("tip bps(%d) out of range", cfg.TipBps)
	}
	if cfg.SubmitTimeoutMs <= 0 {
		cfg.SubmitTimeoutMs = DefaultSubmitTimeoutMs
	}
	if cfg.BalanceTicker == 0 {
		cfg.BalanceTicker = DefaultBalanceTicker
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.DBDialect == "" {
		cfg.DBDialect = "mysql"
	}
	return nil
}
