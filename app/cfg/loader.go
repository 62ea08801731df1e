package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"contentsync_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"contentsync_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"contentsync" description:"Database name"`

	// Redis configuration
	RedisAddr     string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address for rate limiting"`
	RedisPassword string `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password (optional)"`

	// RabbitMQ configuration
	RabbitMQURL      string `long:"rabbitmq-url" env:"RABBITMQ_URL" description:"RabbitMQ URL for notifications (optional)"`
	RabbitMQExchange string `long:"rabbitmq-exchange" env:"RABBITMQ_EXCHANGE" default:"contentsync.notifications" description:"RabbitMQ exchange for notifications"`

	// Application configuration
	SeedsDir          string `long:"seeds-dir" env:"SEEDS_DIR" default:"./seeds" description:"Directory containing source seed files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for source syncing"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Scheduler interval in seconds"`
	ServiceKey        string `long:"service-key" env:"SERVICE_KEY" description:"Shared key for internal endpoints (optional)"`
	SyncRateMax       int    `long:"sync-rate-max" env:"SYNC_RATE_MAX" default:"10" description:"Max interactive syncs per account per window"`
	SyncRateWindow    int    `long:"sync-rate-window" env:"SYNC_RATE_WINDOW" default:"60" description:"Interactive sync rate window in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"ContentSync/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:            raw.DBHost,
		DBPort:            raw.DBPort,
		DBUser:            raw.DBUser,
		DBPassword:        raw.DBPassword,
		DBName:            raw.DBName,
		RedisAddr:         raw.RedisAddr,
		RedisPassword:     raw.RedisPassword,
		RabbitMQURL:       raw.RabbitMQURL,
		RabbitMQExchange:  raw.RabbitMQExchange,
		SeedsDir:          raw.SeedsDir,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		ServiceKey:        raw.ServiceKey,
		SyncRateMax:       raw.SyncRateMax,
		SyncRateWindow:    raw.SyncRateWindow,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
