package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "SHOP_CONFIG_FILE"

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	OrdersMock  = "mock"
	OrdersKafka = "kafka"
)

type catalog struct {
	Latency time.Duration `mapstructure:"latency"`
	File    string        `mapstructure:"file"`
}

type storage struct {
	Driver string `mapstructure:"driver"`
	SQLDB  string `mapstructure:"sql_db"`
}

type orders struct {
	Driver  string        `mapstructure:"driver"`
	Latency time.Duration `mapstructure:"latency"`
}

type auth struct {
	Latency time.Duration `mapstructure:"latency"`
}

type consumers struct {
	OrderHistoryGroup string `mapstructure:"order_history_group"`
}

type topics struct {
	Orders string `mapstructure:"orders"`
}

type tlsPaths struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

func (t tlsPaths) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
	TLS                tlsPaths  `mapstructure:"tls"`
}

type Config struct {
	LogLevel       slog.Level    `mapstructure:"log_level"`
	HTTPServerAddr string        `mapstructure:"http_server_addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ClientScope    string        `mapstructure:"client_scope"`
	Catalog        catalog       `mapstructure:"catalog"`
	Storage        storage       `mapstructure:"storage"`
	Orders         orders        `mapstructure:"orders"`
	Auth           auth          `mapstructure:"auth"`
	Broker         broker        `mapstructure:"broker"`
}

func setDefaults() {
	viper.SetDefault("http_server_addr", ":8080")
	viper.SetDefault("client_scope", "default")
	viper.SetDefault("catalog.latency", 500*time.Millisecond)
	viper.SetDefault("storage.driver", StorageMemory)
	viper.SetDefault("orders.driver", OrdersMock)
	viper.SetDefault("orders.latency", time.Second)
	viper.SetDefault("auth.latency", time.Second)
}

func Load() Config {
	setDefaults()
	viper.SetConfigFile(getConfigFilepath())

	err := viper.ReadInConfig()
	if err != nil {
		die(err)
	}

	var cfg Config
	err = viper.UnmarshalExact(&cfg)
	if err != nil {
		die(err)
	}

	if err := cfg.validate(); err != nil {
		die(err)
	}

	return cfg
}

func (c Config) validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.SQLDB == "" {
			return fmt.Errorf("storage.sql_db: required for %q driver", StoragePostgres)
		}
	default:
		return fmt.Errorf("storage.driver: unknown value %q", c.Storage.Driver)
	}

	switch c.Orders.Driver {
	case OrdersMock:
	case OrdersKafka:
		if len(c.Broker.SeedBrokers) == 0 {
			return fmt.Errorf("broker.seed_brokers: required for %q driver", OrdersKafka)
		}
		if c.Broker.Topics.Orders == "" {
			return fmt.Errorf("broker.topics.orders: required for %q driver", OrdersKafka)
		}
		if c.Broker.Consumers.OrderHistoryGroup == "" {
			return fmt.Errorf(
				"broker.consumers.order_history_group: required for %q driver",
				OrdersKafka,
			)
		}
	default:
		return fmt.Errorf("orders.driver: unknown value %q", c.Orders.Driver)
	}
	return nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	RequestTimeout=%q
	ClientScope=%q

	Catalog:
	Latency=%q
	File=%q

	Storage:
	Driver=%q
	SQLDB=%q

	Orders:
	Driver=%q
	Latency=%q
	AuthLatency=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		Orders=%q
	Consumers:
		OrderHistoryGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.RequestTimeout,
		c.ClientScope,
		c.Catalog.Latency,
		c.Catalog.File,
		c.Storage.Driver,
		maskDSN(c.Storage.SQLDB),
		c.Orders.Driver,
		c.Orders.Latency,
		c.Auth.Latency,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.Orders,
		c.Broker.Consumers.OrderHistoryGroup,
	)
}

// maskDSN hides the password of a postgres URL.
func maskDSN(dsn string) string {
	user, rest, ok := strings.Cut(dsn, "@")
	if !ok {
		return dsn
	}
	if i := strings.LastIndex(user, ":"); i > strings.Index(user, "//") {
		user = user[:i] + ":***"
	}
	return user + "@" + rest
}
