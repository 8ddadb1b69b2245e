package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"

	defaultConfigFile = "values_local.yaml"
	configDir         = "configs"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `mapstructure:"token"`
		ChatID int64  `mapstructure:"chat_id"`
	} `mapstructure:"telegram"`
	DB         string `mapstructure:"db_dsn"`
	DBMaxConns int32  `mapstructure:"db_max_conns"`
	Service    struct {
		Host       string `mapstructure:"host"`
		PublicPort int    `mapstructure:"public_port"`
		AdminPort  int    `mapstructure:"admin_port"`
	} `mapstructure:"service"`

	Log struct {
		Level string `mapstructure:"level"`
		Dev   bool   `mapstructure:"dev"`
	} `mapstructure:"log"`

	Ledger Ledger `mapstructure:"ledger"`

	// Публичный CLOB, берём только стакан (best bid/ask)
	Clob struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"clob"`

	Kafka struct {
		Enabled bool     `mapstructure:"enabled"`
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`

	Tracing struct {
		Enabled     bool   `mapstructure:"enabled"`
		ServiceName string `mapstructure:"service_name"`
		Host        string `mapstructure:"host"`
		Port        int    `mapstructure:"port"`
	} `mapstructure:"tracing"`

	// Стартовая загрузка истории из файла и прогрев кэша
	Bootstrap struct {
		SeedFile  string `mapstructure:"seed_file"`
		WarmCache bool   `mapstructure:"warm_cache"`
	} `mapstructure:"bootstrap"`

	Cache struct {
		TTL             time.Duration `mapstructure:"ttl"`
		MaxCost         int64         `mapstructure:"max_cost"`
		RefreshInterval time.Duration `mapstructure:"refresh_interval"` // 0 = без фонового пересчёта
	} `mapstructure:"cache"`
}

// Ledger: лимиты прохода учёта позиций.
type Ledger struct {
	MaxFills         int      `mapstructure:"max_fills"`
	MaxPages         int      `mapstructure:"max_pages"`
	PageSize         int      `mapstructure:"page_size"`
	IncludePrices    bool     `mapstructure:"include_prices"`
	PriceLookupLimit int      `mapstructure:"price_lookup_limit"`
	PriceConcurrency int      `mapstructure:"price_concurrency"`
	AssetIDs         []string `mapstructure:"asset_ids"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("db_dsn", "")
	v.SetDefault("db_max_conns", 0)
	v.SetDefault("service.host", "0.0.0.0")
	v.SetDefault("service.public_port", 8080)
	v.SetDefault("service.admin_port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.dev", false)

	v.SetDefault("ledger.max_fills", 500)
	v.SetDefault("ledger.max_pages", 10)
	v.SetDefault("ledger.page_size", 100)
	v.SetDefault("ledger.include_prices", true)
	v.SetDefault("ledger.price_lookup_limit", 10)
	v.SetDefault("ledger.price_concurrency", 4)
	v.SetDefault("ledger.asset_ids", []string{})

	v.SetDefault("clob.base_url", "https://clob.polymarket.com")
	v.SetDefault("clob.timeout", "10s")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "trades")
	v.SetDefault("kafka.group_id", "trade-ledger")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "trade-ledger")
	v.SetDefault("tracing.host", "localhost")
	v.SetDefault("tracing.port", 6831)

	v.SetDefault("bootstrap.seed_file", "")
	v.SetDefault("bootstrap.warm_cache", true)

	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("cache.max_cost", 1<<20)
	v.SetDefault("cache.refresh_interval", "0s")
}

// Default: конфиг только из дефолтов, без файла и env. Удобно для тестов и replay.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(err)
	}
	return cfg
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = defaultConfigFile
	}
	return Load(configDir + "/" + configFileName)
}

// Load читает yaml-файл и накладывает env поверх (ledger.max_fills -> LEDGER_MAX_FILLS).
// Отсутствующий файл не ошибка: работаем на дефолтах.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("db_dsn", databaseDSN)
	_ = v.BindEnv("telegram.token", tokenTelegramENV)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		log.Printf("[CONFIG] %s not found, using defaults", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Ledger.MaxFills <= 0 {
		return errors.New("ledger.max_fills must be > 0")
	}
	if c.Ledger.MaxPages <= 0 {
		return errors.New("ledger.max_pages must be > 0")
	}
	if c.Ledger.PageSize <= 0 {
		return errors.New("ledger.page_size must be > 0")
	}
	if c.Ledger.PriceConcurrency <= 0 {
		c.Ledger.PriceConcurrency = 1
	}
	return nil
}
