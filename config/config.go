package config

import (
	"log"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort      string `env:"SERVER_PORT" envDefault:"8888"`
	AdminServerPort string `env:"ADMIN_SERVER_PORT" envDefault:"8889"`
	ServerHost      string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment     string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName     string `env:"SERVICE_NAME" envDefault:"lavka"`

	// PostgreSQL 配置
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"lavka"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"30"`
	PostgreSQLMaxOpen  int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"200"`

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"lavka"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// Telegram 网关配置
	// 用户侧 bot 的 token 同时用于群发投递
	UserBotToken  string `env:"USER_BOT_TOKEN"`
	AdminBotToken string `env:"ADMIN_BOT_TOKEN"`
	// 管理员 chat id 白名单，逗号分隔
	AdminChatIDs    string `env:"ADMIN_CHAT_IDS"`
	GatewayProvider string `env:"GATEWAY_PROVIDER" envDefault:"telegram"` // telegram, mock

	// 群发投递配置
	MailingSendRatePerSec  int `env:"MAILING_SEND_RATE_PER_SEC" envDefault:"30"`        // 网关发送速率上限
	MailingMaxSendAttempts int `env:"MAILING_MAX_SEND_ATTEMPTS" envDefault:"4"`         // 单收件人最大尝试次数，含首发
	MailingDispatchBudget  int `env:"MAILING_DISPATCH_BUDGET_SECONDS" envDefault:"600"` // 单次投递的总时长预算
	MailingStallAfter      int `env:"MAILING_STALL_AFTER_SECONDS" envDefault:"900"`     // in_progress 超过此时长视为中断，可恢复
	SchedulerInterval      int `env:"SCHEDULER_INTERVAL_SECONDS" envDefault:"30"`       // 调度器轮询间隔
	SupportSweepInterval   int `env:"SUPPORT_SWEEP_INTERVAL_SECONDS" envDefault:"60"`   // 支持请求转发间隔

	// 货币配置
	CurrencyExponent int32 `env:"CURRENCY_EXPONENT" envDefault:"2"` // 价格保留的小数位数

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪 / 指标配置
	OTLPEndpoint string `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`

	// 速率限制配置, 配置在中间件内
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"100"` // 每秒请求数
}

func init() {

	if err := godotenv.Load(); err != nil {

		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.GatewayProvider == "telegram" && Cfg.UserBotToken == "" {
		log.Printf("WARN: USER_BOT_TOKEN is not set, mailing delivery will not work")
	}

	if Cfg.AdminChatIDs == "" {
		log.Printf("WARN: ADMIN_CHAT_IDS is not set, operator endpoints will reject everyone")
	}

	if Cfg.MailingSendRatePerSec <= 0 {
		log.Fatal("MAILING_SEND_RATE_PER_SEC must be positive")
	}

	if Cfg.MailingMaxSendAttempts < 1 {
		log.Fatal("MAILING_MAX_SEND_ATTEMPTS must be at least 1")
	}
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

// AdminIDs 解析管理员白名单，非法片段直接跳过
func (c *Config) AdminIDs() []int64 {
	parts := strings.Split(c.AdminChatIDs, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
