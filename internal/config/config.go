// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"APP_ENV" env-default:"local"`
	StorageDriver   string `yaml:"storage_driver" env:"STORAGE_DRIVER" env-default:"redis"`
	RedisConnection `yaml:"redis_connection"`
	Postgres        `yaml:"postgres"`
	RabbitMQ        `yaml:"rabbitmq"`
	HTTPServer      `yaml:"http_server"`
	JWTToken        `yaml:"jwttoken"`
	Completion      `yaml:"completion"`
	Voice           `yaml:"voice"`
	Gates           `yaml:"gates"`
	Slot            `yaml:"slot"`
	Session         `yaml:"session"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"60s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit" env-default:"5"`
	RateBurst   int           `yaml:"rate_burst" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// Postgres структура для альтернативного хранилища состояний
type Postgres struct {
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
}

// RabbitMQ структура для публикации событий гейтов. Пустой URL отключает публикацию.
type RabbitMQ struct {
	AMQPURL      string        `yaml:"amqp_url" env:"AMQP_URL"`
	Retries      int           `yaml:"retries" env-default:"5"`
	RetryDelay   time.Duration `yaml:"retry_delay" env-default:"2s"`
	ExchangeName string        `yaml:"exchange" env-default:"notifications"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-default:"change-me"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Completion настройки внешнего сервиса генерации ответов
type Completion struct {
	BaseURL          string        `yaml:"base_url" env:"COMPLETION_BASE_URL" env-default:"https://openrouter.ai/api/v1"`
	Model            string        `yaml:"model" env:"COMPLETION_MODEL" env-default:"gryphe/mythomax-l2-13b"`
	MaxTokens        int           `yaml:"max_tokens" env-default:"512"`
	Temperature      float32       `yaml:"temperature"`
	TopP             float32       `yaml:"top_p"`
	PresencePenalty  float32       `yaml:"presence_penalty"`
	FrequencyPenalty float32       `yaml:"frequency_penalty"`
	Referer          string        `yaml:"referer" env-default:"https://scarlett-ai.app"`
	Title            string        `yaml:"title" env-default:"Scarlett AI"`
	RequestTimeout   time.Duration `yaml:"request_timeout" env-default:"60s"`
	PhotoURL         string        `yaml:"photo_url" env-default:"https://images.unsplash.com/photo-1744014269857-b1112ce79766?q=80&w=200&auto=format&fit=crop"`
	PhotoDelay       time.Duration `yaml:"photo_delay" env-default:"1s"`
	SystemPrompt     string        `yaml:"system_prompt"`
	ImagePrompt      string        `yaml:"image_prompt"`
	OpeningLine      string        `yaml:"opening_line"`
}

// Voice настройки синтеза речи
type Voice struct {
	BaseURL        string        `yaml:"base_url" env:"VOICE_BASE_URL" env-default:"https://api.elevenlabs.io"`
	ModelID        string        `yaml:"model_id" env-default:"eleven_monolingual_v1"`
	DefaultVoiceID string        `yaml:"default_voice_id" env-default:"EXAVITQu4vr4xnSDxMaL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"30s"`
}

// Gates настройки пароля приложения, подписки и бесплатного лимита
type Gates struct {
	AppPassword          string        `yaml:"app_password" env:"APP_PASSWORD" env-default:"sai25"`
	SubscriptionPassword string        `yaml:"subscription_password" env:"SUBSCRIPTION_PASSWORD" env-default:"sai25"`
	FreeMessageLimit     int           `yaml:"free_message_limit" env-default:"10"`
	SubscriptionDays     int           `yaml:"subscription_days" env-default:"30"`
	RecheckInterval      time.Duration `yaml:"recheck_interval" env-default:"60s"`
	PaymentDelay         time.Duration `yaml:"payment_delay" env-default:"1500ms"`
}

// Slot настройки мини-игры
type Slot struct {
	StartCredits  int           `yaml:"start_credits" env-default:"100"`
	StartBet      int           `yaml:"start_bet" env-default:"10"`
	MinBet        int           `yaml:"min_bet" env-default:"5"`
	MaxBet        int           `yaml:"max_bet" env-default:"50"`
	BetStep       int           `yaml:"bet_step" env-default:"5"`
	DepositAmount int           `yaml:"deposit_amount" env-default:"100"`
	SpinDelay     time.Duration `yaml:"spin_delay" env-default:"2500ms"`
	AutoSpinDelay time.Duration `yaml:"auto_spin_delay" env-default:"1s"`
}

// Session настройки политики сброса состояния при старте.
// По умолчанию все хранилища очищаются при каждом запуске процесса.
type Session struct {
	KeepStateOnStart bool `yaml:"keep_state_on_start" env:"SESSION_KEEP_STATE"`
}

// MustLoad функция для загрузки конфига. Перед чтением подхватывает .env, если он есть.
func MustLoad() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("cannot load .env: %s", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг по пути и проверяет значения.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// Validate отбрасывает конфигурации, при которых гейты и игра теряют смысл.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "redis", "memory":
	case "postgres":
		if c.StorageConnectionString == "" {
			return fmt.Errorf("storage_connection_string is required for postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.FreeMessageLimit <= 0 {
		return fmt.Errorf("free_message_limit must be positive")
	}
	if c.SubscriptionDays <= 0 {
		return fmt.Errorf("subscription_days must be positive")
	}
	if c.MinBet <= 0 || c.MinBet > c.MaxBet {
		return fmt.Errorf("invalid bet range [%d, %d]", c.MinBet, c.MaxBet)
	}
	if c.StartBet < c.MinBet || c.StartBet > c.MaxBet {
		return fmt.Errorf("start_bet %d outside [%d, %d]", c.StartBet, c.MinBet, c.MaxBet)
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageDriver: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Completion:\n"+
			"  BaseURL: %s\n"+
			"  Model: %s\n"+
			"Gates:\n"+
			"  FreeMessageLimit: %d\n"+
			"  SubscriptionDays: %d\n"+
			"  RecheckInterval: %s\n",
		c.Env,
		c.StorageDriver,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Completion.BaseURL,
		c.Model,
		c.FreeMessageLimit,
		c.SubscriptionDays,
		c.RecheckInterval,
	)
}
