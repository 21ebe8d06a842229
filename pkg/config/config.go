package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Config is the resolved application configuration.
type Config struct {
	// Ledger connection
	RPCURL          string // HTTP JSON-RPC endpoint
	WSURL           string // websocket endpoint for push subscriptions; empty disables push
	ContractAddress string // InteropToken contract address
	ChainID         int64

	// Wallet. Empty private key means the engine starts read-only and waits
	// for an explicit connect.
	PrivateKey string

	// Engine
	RefreshInterval time.Duration // timer-driven reconciliation interval
	PageSize        int           // orders per page in the read model
	TokenSymbol     string        // unit label for balances and volume
	RelayerMode     bool          // answer Fill notifications with confirm()

	// Presentation / persistence
	ListenAddr string // HTTP read-model listen address; empty disables the server
	DataDir    string // base dir for persisted preferences and snapshots

	// Logging
	LogLevel string
	LogFile  string
}

// ConfigFile mirrors the YAML/JSON config file layout.
type ConfigFile struct {
	Ledger struct {
		RPCURL          string `yaml:"rpc_url" json:"rpc_url"`
		WSURL           string `yaml:"ws_url" json:"ws_url"`
		ContractAddress string `yaml:"contract_address" json:"contract_address"`
		ChainID         int64  `yaml:"chain_id" json:"chain_id"`
	} `yaml:"ledger" json:"ledger"`
	Wallet struct {
		PrivateKey string `yaml:"private_key" json:"private_key"`
	} `yaml:"wallet" json:"wallet"`
	Engine struct {
		RefreshIntervalSeconds int    `yaml:"refresh_interval_seconds" json:"refresh_interval_seconds"`
		PageSize               int    `yaml:"page_size" json:"page_size"`
		TokenSymbol            string `yaml:"token_symbol" json:"token_symbol"`
		RelayerMode            bool   `yaml:"relayer_mode" json:"relayer_mode"`
	} `yaml:"engine" json:"engine"`
	Server struct {
		ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
	} `yaml:"server" json:"server"`
	DataDir  string `yaml:"data_dir" json:"data_dir"`
	LogLevel string `yaml:"log_level" json:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file"`
}

var globalConfig *Config

// Load builds the configuration from an optional file plus environment
// overrides. Precedence: environment > file > defaults.
func Load(filePath string) (*Config, error) {
	var file *ConfigFile
	if filePath != "" {
		var err error
		file, err = loadConfigFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("load config file %s: %w", filePath, err)
		}
	}

	cfg := &Config{
		RPCURL:          pickString(getEnv("LEDGER_RPC_URL", ""), fileLedgerRPC(file), "http://127.0.0.1:8545"),
		WSURL:           pickString(getEnv("LEDGER_WS_URL", ""), fileLedgerWS(file), "ws://127.0.0.1:8545"),
		ContractAddress: pickString(getEnv("LEDGER_CONTRACT_ADDRESS", ""), fileContract(file), "0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		ChainID:         pickInt64(parseInt64Env("LEDGER_CHAIN_ID", 0), fileChainID(file), 31337),
		PrivateKey:      pickString(getEnv("WALLET_PRIVATE_KEY", ""), fileKey(file), ""),
		RefreshInterval: time.Duration(pickInt(parseIntEnv("REFRESH_INTERVAL_SECONDS", 0), fileRefresh(file), 5)) * time.Second,
		PageSize:        pickInt(parseIntEnv("PAGE_SIZE", 0), filePageSize(file), 5),
		TokenSymbol:     pickString(getEnv("TOKEN_SYMBOL", ""), fileSymbol(file), "TST"),
		RelayerMode:     pickBool(parseBoolEnv("RELAYER_MODE"), fileRelayer(file)),
		ListenAddr:      pickString(getEnv("LISTEN_ADDR", ""), fileListen(file), ":8080"),
		DataDir:         pickString(getEnv("DATA_DIR", ""), fileDataDir(file), "data"),
		LogLevel:        pickString(getEnv("LOG_LEVEL", ""), fileLogLevel(file), "info"),
		LogFile:         pickString(getEnv("LOG_FILE", ""), fileLogFile(file), "logs/gowatch.log"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	globalConfig = cfg
	return cfg, nil
}

// Get returns the last loaded configuration, if any.
func Get() *Config {
	return globalConfig
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("LEDGER_RPC_URL is required")
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("invalid contract address: %s", c.ContractAddress)
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("LEDGER_CHAIN_ID must be positive")
	}
	if c.RefreshInterval < time.Second {
		return fmt.Errorf("refresh interval must be at least 1s")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	return nil
}

func loadConfigFile(filePath string) (*ConfigFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var file ConfigFile
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .yaml, .yml or .json)", ext)
	}
	return &file, nil
}

// file accessors tolerate a nil file

func fileLedgerRPC(f *ConfigFile) string {
	if f == nil {
		return ""
	}
	return f.Ledger.RPCURL
}

func fileLedgerWS(f *ConfigFile) string {
	if f == nil {
		return ""
	}
	return f.Ledger.WSURL
}

func fileContract(f *ConfigFile) string {
	if f == nil {
		return ""
	}
	return f.Ledger.ContractAddress
}

func fileChainID(f *ConfigFile) int64 {
	if f == nil {
		return 0
	}
	return f.Ledger.ChainID
}

func fileKey(f *ConfigFile) string {
	if f == nil {
		return ""
	}
	return f.Wallet.PrivateKey
}

func fileRefresh(f *ConfigFile) int {
	if f == nil {
		return 0
	}
	return f.Engine.RefreshIntervalSeconds
}

func filePageSize(f *ConfigFile) int {
	if f == nil {
		return 0
	}
	return f.Engine.PageSize
}

func fileSymbol(f *ConfigFile) string {
	if f == nil {
		return ""
	}
	return f.Engine.TokenSymbol
}

func fileRelayer(f *ConfigFile) bool {
	if f == nil {
		return false
	}
	return f.Engine.RelayerMode
}

func fileListen(f *ConfigFile) string {
	if f == nil {
		return ""
	}
	return f.Server.ListenAddr
}

func fileDataDir(f *ConfigFile) string {
	if f == nil {
		return ""
	}
	return f.DataDir
}

func fileLogLevel(f *ConfigFile) string {
	if f == nil {
		return ""
	}
	return f.LogLevel
}

func fileLogFile(f *ConfigFile) string {
	if f == nil {
		return ""
	}
	return f.LogFile
}

func pickString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func pickInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func pickInt64(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

func pickBool(values ...bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseInt64Env(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseBoolEnv(key string) bool {
	value := os.Getenv(key)
	if value == "" {
		return false
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return parsed
}
