package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const ConfigPathEnv = "MATRIX_CONFIG_PATH"

type MatrixConfig struct {
	Env          string `yaml:"env" env:"ENV" env-default:"local"`
	GRPCServer   `yaml:"grpc_server"`
	MatrixDB     `yaml:"matrix_db"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka_service"`
	Redis        `yaml:"redis"`
	Telegram     `yaml:"telegram"`
	Notifier     `yaml:"notifier"`
	Donation     `yaml:"donation"`
	House        `yaml:"house"`
	Metrics      `yaml:"metrics"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50051"`
}

type MatrixDB struct {
	Dsn            string `yaml:"dsn" env:"MATRIX_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"MATRIX_MIGRATIONS_PATH" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type KafkaService struct {
	Brokers            []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	EventsTopic        string   `yaml:"events_topic" env-default:"matrix-events"`
	NotificationsTopic string   `yaml:"notifications_topic" env-default:"matrix-notifications"`
	ConfirmationsTopic string   `yaml:"confirmations_topic" env-default:"donation-confirmations"`
	GroupID            string   `yaml:"group_id" env-default:"matrix-service"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	// DedupTTL - сколько помним обработанные события подтверждений
	DedupTTL time.Duration `yaml:"dedup_ttl" env-default:"24h"`
}

type Telegram struct {
	BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
}

type Notifier struct {
	// Driver: kafka | telegram | log
	Driver string `yaml:"driver" env:"NOTIFIER_DRIVER" env-default:"kafka"`
}

type Donation struct {
	ConfirmationWindow time.Duration `yaml:"confirmation_window" env-default:"30m"`
	FreeCheckInterval  time.Duration `yaml:"free_check_interval" env-default:"10m"`
	// CancelMode: flag | delete
	CancelMode    string        `yaml:"cancel_mode" env-default:"flag"`
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"1m"`
	// CreditPolicy: owner | second_level
	CreditPolicy string `yaml:"credit_policy" env-default:"owner"`
	TaskQueue    string `yaml:"task_queue" env-default:"matrix"`
	Concurrency  int    `yaml:"concurrency" env-default:"10"`
}

type House struct {
	UserID    int64  `yaml:"user_id" env:"HOUSE_USER_ID"`
	Username  string `yaml:"username" env:"HOUSE_USERNAME" env-default:"admin"`
	FirstName string `yaml:"first_name" env-default:"Admin"`
}

type Metrics struct {
	Addr string `yaml:"addr" env:"METRICS_ADDR" env-default:":9090"`
}

// Load reads the YAML file at path and applies env overrides.
func Load(path string) (*MatrixConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	var cfg MatrixConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *MatrixConfig) Validate() error {
	switch c.Donation.CancelMode {
	case "flag", "delete":
	default:
		return fmt.Errorf("donation.cancel_mode must be flag or delete, got %q", c.Donation.CancelMode)
	}
	switch c.Donation.CreditPolicy {
	case "owner", "second_level":
	default:
		return fmt.Errorf("donation.credit_policy must be owner or second_level, got %q", c.Donation.CreditPolicy)
	}
	switch c.Notifier.Driver {
	case "kafka", "telegram", "log":
	default:
		return fmt.Errorf("notifier.driver must be kafka, telegram or log, got %q", c.Notifier.Driver)
	}
	if c.Donation.ConfirmationWindow <= 0 {
		return fmt.Errorf("donation.confirmation_window must be positive")
	}
	return nil
}

func MustLoad() *MatrixConfig {

	// Processing env config variable and file
	configPath := os.Getenv(ConfigPathEnv)

	if configPath == "" {
		log.Fatalf("%s was not found\n", ConfigPathEnv)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return cfg
}
