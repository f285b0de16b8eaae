package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	Config struct {
		App     `json:"app"     toml:"app"`
		Solana  `json:"solana"  toml:"solana"`
		Pricing `json:"pricing" toml:"pricing"`
		HTTP    `json:"http"    toml:"http"`
		DB      `json:"db"      toml:"db"`
		Log     `json:"logger"  toml:"logger"`
		Workers `json:"workers" toml:"workers"`
	}

	App struct {
		Name        string `json:"name"        toml:"name"        env:"APP_NAME"`
		Environment string `json:"environment" toml:"environment" env:"ENV_NAME" env-default:"dev"`
		Debug       bool   `json:"debug"       toml:"debug"       env:"DEBUG"    env-default:"false"`
	}

	Solana struct {
		RPCURL string `json:"rpc_url" toml:"rpc_url" env:"SOLANA_RPC_URL"`
	}

	// Pricing holds the outbound price/metadata API endpoints and the
	// throttling knobs shared by every upstream-facing call.
	Pricing struct {
		PriceAPIURL        string        `json:"price_api_url"        toml:"price_api_url"        env:"PRICE_API_URL"        env-default:"https://api.jup.ag/price/v2"`
		TokenListAPIURL    string        `json:"token_list_api_url"   toml:"token_list_api_url"   env:"TOKEN_LIST_API_URL"   env-default:"https://tokens.jup.ag/token/"`
		MinRequestInterval time.Duration `json:"min_request_interval" toml:"min_request_interval" env:"MIN_REQUEST_INTERVAL" env-default:"1s"`
		MaxRetries         int           `json:"max_retries"          toml:"max_retries"          env:"MAX_RETRIES"          env-default:"5"`
		BaseRetryDelay     time.Duration `json:"base_retry_delay"     toml:"base_retry_delay"     env:"BASE_RETRY_DELAY"     env-default:"2s"`
		BatchSize          int           `json:"batch_size"           toml:"batch_size"           env:"BATCH_SIZE"           env-default:"2"`
		BatchPause         time.Duration `json:"batch_pause"          toml:"batch_pause"          env:"BATCH_PAUSE"          env-default:"2s"`
		RequestTimeout     time.Duration `json:"request_timeout"      toml:"request_timeout"      env:"UPSTREAM_REQ_TIMEOUT" env-default:"10s"`
	}

	HTTP struct {
		Port string ` json:"port" toml:"port" env:"HTTP_PORT"`
	}

	DB struct {
		DatabaseURL       string `json:"database_url"     toml:"database_url"     env:"DATABASE_URL"`
		PoolMax           int32  `json:"pool_max" toml:"pool_max" env:"PG_POOL_MAX" env-default:"10"`
		ConnectTimeout    int    `json:"connect_timeout" toml:"connect_timeout" env:"PG_POOL_CONN_TIMEOUT" env-default:"5"`
		HealthCheckPeriod int    `json:"health_check_period" toml:"health_check_period" env:"PG_POOL_HEALTHCHECK" env-default:"1"`
	}

	Log struct {
		Level slog.Level `json:"level" toml:"level" env:"LOG_LEVEL"`
	}

	Workers struct {
		PortfolioRefreshInterval time.Duration `json:"portfolio_refresh_interval" toml:"portfolio_refresh_interval" env:"PORTFOLIO_REFRESH_INTERVAL" env-default:"5m"`
	}
)

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	_, b, _, _ := runtime.Caller(0)
	basePath := filepath.Dir(b)

	configTomlPath := filepath.Join(basePath, "config.toml")
	err := cleanenv.ReadConfig(configTomlPath, cfg)
	if err != nil {
		configJsonPath := filepath.Join(basePath, "config.json")
		err = cleanenv.ReadConfig(configJsonPath, cfg)
		if err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	}

	err = cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, fmt.Errorf("env read error: %w", err)
	}

	return cfg, nil
}
