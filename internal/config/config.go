package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	DynamoDB    DynamoDBConfig    `mapstructure:"dynamodb"`
	Postgres    PostgresConfig    `mapstructure:"postgres"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	MercadoPago MercadoPagoConfig `mapstructure:"mercadopago"`
	Log         LogConfig         `mapstructure:"log"`
	Workflow    WorkflowConfig    `mapstructure:"workflow"`
	Quotes      QuotesConfig      `mapstructure:"quotes"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Storage drivers.
const (
	DriverDynamoDB = "dynamodb"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type DynamoDBConfig struct {
	Region          string       `mapstructure:"region"`
	Endpoint        string       `mapstructure:"endpoint"`
	AccessKeyID     string       `mapstructure:"access_key_id"`
	SecretAccessKey string       `mapstructure:"secret_access_key"`
	AutoCreate      bool         `mapstructure:"auto_create"`
	Tables          TablesConfig `mapstructure:"tables"`
}

type TablesConfig struct {
	WorkOrders string `mapstructure:"work_orders"`
	Quotes     string `mapstructure:"quotes"`
	Recurring  string `mapstructure:"recurring"`
	Executions string `mapstructure:"executions"`
	Invoices   string `mapstructure:"invoices"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN renders the pgx keyword/value connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type MercadoPagoConfig struct {
	AccessToken     string `mapstructure:"access_token"`
	Mock            string `mapstructure:"mock"`
	NotificationURL string `mapstructure:"notification_url"`
	BackURL         string `mapstructure:"back_url"`
	Currency        string `mapstructure:"currency"`
	TestPayerEmail  string `mapstructure:"test_payer_email"`
}

// MockEnabled accepts the same switches operators already use for the gateway mock.
func (m MercadoPagoConfig) MockEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(m.Mock)) {
	case "1", "true", "yes", "on", "mock":
		return true
	default:
		return false
	}
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type WorkflowConfig struct {
	PolicyFile string `mapstructure:"policy_file"`
}

type QuotesConfig struct {
	DefaultMarkup string `mapstructure:"default_markup"`
}

// Markup parses the default markup percentage; an unparsable value falls back to zero.
func (q QuotesConfig) Markup() decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(q.DefaultMarkup))
	if err != nil {
		return decimal.Zero
	}
	return d
}

type SchedulerConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	CatchUpLimit int           `mapstructure:"catch_up_limit"`
	Members      []string      `mapstructure:"members"`
	Self         string        `mapstructure:"self"`
}

// Load reads config.yaml from ./configs or the working directory when present,
// then applies environment overrides.
func Load() (*Config, error) {
	return load("./configs", ".")
}

func load(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverDynamoDB, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Scheduler.CatchUpLimit <= 0 {
		return fmt.Errorf("scheduler.catch_up_limit must be positive, got %d", c.Scheduler.CatchUpLimit)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("storage.driver", DriverDynamoDB)

	v.SetDefault("dynamodb.region", "us-east-1")
	v.SetDefault("dynamodb.access_key_id", "local")
	v.SetDefault("dynamodb.secret_access_key", "local")
	v.SetDefault("dynamodb.auto_create", true)
	v.SetDefault("dynamodb.tables.work_orders", "work_orders")
	v.SetDefault("dynamodb.tables.quotes", "quotes")
	v.SetDefault("dynamodb.tables.recurring", "recurring_work_orders")
	v.SetDefault("dynamodb.tables.executions", "recurring_work_order_executions")
	v.SetDefault("dynamodb.tables.invoices", "invoices")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.dbname", "workorders")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("postgres.auto_migrate", true)

	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.channel", "workorders.events")

	v.SetDefault("jwt.issuer", "facility-workorders")

	v.SetDefault("mercadopago.currency", "BRL")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("quotes.default_markup", "10")

	v.SetDefault("scheduler.interval", time.Hour)
	v.SetDefault("scheduler.catch_up_limit", 31)
}

func bindEnvVariables(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("server.mode", "GIN_MODE")

	v.BindEnv("storage.driver", "STORAGE_DRIVER")

	// DynamoDB
	v.BindEnv("dynamodb.region", "AWS_REGION")
	v.BindEnv("dynamodb.endpoint", "DYNAMODB_ENDPOINT")
	v.BindEnv("dynamodb.access_key_id", "AWS_ACCESS_KEY_ID")
	v.BindEnv("dynamodb.secret_access_key", "AWS_SECRET_ACCESS_KEY")
	v.BindEnv("dynamodb.tables.work_orders", "DYNAMODB_WORK_ORDERS_TABLE")
	v.BindEnv("dynamodb.tables.quotes", "DYNAMODB_QUOTES_TABLE")
	v.BindEnv("dynamodb.tables.recurring", "DYNAMODB_RECURRING_TABLE")
	v.BindEnv("dynamodb.tables.executions", "DYNAMODB_EXECUTIONS_TABLE")
	v.BindEnv("dynamodb.tables.invoices", "DYNAMODB_INVOICES_TABLE")

	// Postgres
	v.BindEnv("postgres.host", "DB_HOST")
	v.BindEnv("postgres.port", "DB_PORT")
	v.BindEnv("postgres.user", "DB_USER")
	v.BindEnv("postgres.password", "DB_PASSWORD")
	v.BindEnv("postgres.dbname", "DB_NAME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Mercado Pago
	v.BindEnv("mercadopago.access_token", "MERCADOPAGO_ACCESS_TOKEN")
	v.BindEnv("mercadopago.mock", "PAYMENT_GATEWAY_MOCK", "MERCADOPAGO_MOCK")
	v.BindEnv("mercadopago.notification_url", "MERCADOPAGO_NOTIFICATION_URL")
	v.BindEnv("mercadopago.test_payer_email", "MERCADOPAGO_TEST_PAYER_EMAIL")

	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("workflow.policy_file", "WORKFLOW_POLICY_FILE")

	// Scheduler
	v.BindEnv("scheduler.members", "SCHEDULER_MEMBERS")
	v.BindEnv("scheduler.self", "SCHEDULER_SELF", "HOSTNAME")
}
