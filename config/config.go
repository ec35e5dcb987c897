package config

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	defaultServerAddress = ":8080"
	defaultDatabaseDSN   = ""
	defaultNotifyQueue   = "storefront.new-orders"
	defaultPollInterval  = 30 * time.Second
	defaultLogLevel      = "debug"
)

type Config struct {
	ServerAddr    string
	DatabaseDSN   string
	NotifyAMQPURL string
	NotifyQueue   string
	PollInterval  time.Duration
	TokenSecret   string
	OperatorLogin string
	// bcrypt hash of the operator passphrase
	OperatorHash string
	LogLevel     string
}

var (
	once      sync.Once
	singleton *Config
	initErr   error
)

// New returns new Config. It parses command line and environment variables
// only once and fails fast when the store is not configured.
func New() (*Config, error) {
	once.Do(func() {
		cfg := Config{}

		// initialize flags
		flag.StringVar(&cfg.ServerAddr, "a", defaultServerAddress, "storefront server address")
		flag.StringVar(&cfg.DatabaseDSN, "d", defaultDatabaseDSN, "storefront database DSN")
		flag.StringVar(&cfg.NotifyAMQPURL, "q", "", "notification broker URL (empty = log only)")
		flag.StringVar(&cfg.NotifyQueue, "n", defaultNotifyQueue, "notification queue name")
		flag.DurationVar(&cfg.PollInterval, "i", defaultPollInterval, "new-order poll interval")
		flag.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")

		flag.Parse()

		// if environment variable is set, then using it
		if runAddrEnv := os.Getenv("RUN_ADDRESS"); runAddrEnv != "" {
			cfg.ServerAddr = runAddrEnv
		}
		if dsnEnv := os.Getenv("DATABASE_URI"); dsnEnv != "" {
			cfg.DatabaseDSN = dsnEnv
		}
		if amqpEnv := os.Getenv("NOTIFY_AMQP_URL"); amqpEnv != "" {
			cfg.NotifyAMQPURL = amqpEnv
		}
		if queueEnv := os.Getenv("NOTIFY_QUEUE"); queueEnv != "" {
			cfg.NotifyQueue = queueEnv
		}
		if intervalEnv := os.Getenv("NOTIFY_POLL_INTERVAL"); intervalEnv != "" {
			if d, err := time.ParseDuration(intervalEnv); err == nil {
				cfg.PollInterval = d
			}
		}
		if levelEnv := os.Getenv("LOG_LEVEL"); levelEnv != "" {
			cfg.LogLevel = levelEnv
		}

		cfg.TokenSecret = os.Getenv("TOKEN_SECRET")
		cfg.OperatorLogin = os.Getenv("OPERATOR_LOGIN")
		cfg.OperatorHash = os.Getenv("OPERATOR_PASSWORD_HASH")

		if cfg.DatabaseDSN == "" {
			initErr = fmt.Errorf("database DSN is not configured (use -d or DATABASE_URI)")
			return
		}
		if cfg.TokenSecret == "" {
			initErr = fmt.Errorf("TOKEN_SECRET is not configured")
			return
		}

		singleton = &cfg
	})

	return singleton, initErr
}
