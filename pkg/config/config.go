package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		BodyLimit       string        `yaml:"body_limit" default:"64K"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Logging struct {
		Level     string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format    string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled        bool          `yaml:"enabled"`
			Topic          string        `yaml:"topic" default:"smartcvd.logs"`
			Interval       time.Duration `yaml:"interval" default:"30s"`
			CountThreshold int           `yaml:"count_threshold" default:"100"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	RateLimit struct {
		Enabled  bool          `yaml:"enabled" default:"true"`
		Capacity float64       `yaml:"capacity" default:"20" validate:"gt=0"`
		Refill   float64       `yaml:"refill_per_sec" default:"5" validate:"gt=0"`
		Sweep    time.Duration `yaml:"sweep_idle" default:"10m"`
	} `yaml:"rate_limit"`
	Cache struct {
		Backend string        `yaml:"backend" default:"memory" validate:"oneof=none memory redis"`
		TTL     time.Duration `yaml:"ttl" default:"5m"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		RequiredAcks int      `yaml:"required_acks" default:"-1" validate:"oneof=-1 0 1"`
		EventTopic   string   `yaml:"event_topic" default:"smartcvd.assessments"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"100ms"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async" default:"true"`
			AutoCreate   bool          `yaml:"auto_create_topics"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Calculator struct {
		CatalogPath    string  `yaml:"catalog_path"`
		ProjectionMode string  `yaml:"projection_mode" default:"summed" validate:"oneof=summed flat"`
		FlatReduction  float64 `yaml:"flat_reduction" default:"10" validate:"gte=0,lte=100"`
	} `yaml:"calculator"`
	Live struct {
		MaxRPS     int           `yaml:"max_rps" default:"10" validate:"gte=0"`
		ReadLimit  int64         `yaml:"read_limit" default:"65536" validate:"gt=0"`
		PingPeriod time.Duration `yaml:"ping_period" default:"30s"`
	} `yaml:"live"`
}

var validate = validator.New()

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with SMARTCVD_* environment variables.
// An empty path starts from the defaults.
func LoadWithEnv(path string) (*Config, error) {
	c := Default()
	if path != "" {
		var err error
		if c, err = Load(path); err != nil {
			return nil, err
		}
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strings.Split(v, ",")
		}
	}

	str("SMARTCVD_ENV", &c.Environment)
	str("SMARTCVD_LOG_LEVEL", &c.Logging.Level)
	str("SMARTCVD_CACHE_BACKEND", &c.Cache.Backend)
	str("SMARTCVD_REDIS_ADDR", &c.Cache.Redis.Addr)
	str("SMARTCVD_REDIS_PASSWORD", &c.Cache.Redis.Password)
	str("SMARTCVD_CATALOG_PATH", &c.Calculator.CatalogPath)
	str("SMARTCVD_PROJECTION_MODE", &c.Calculator.ProjectionMode)
	str("SMARTCVD_EVENT_TOPIC", &c.Kafka.EventTopic)
	list("SMARTCVD_KAFKA_BROKERS", &c.Kafka.Brokers)
	list("SMARTCVD_CORS_ORIGINS", &c.Server.CORSOrigins)

	if v, ok := lookup("SMARTCVD_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMARTCVD_PORT: %w", err)
		}
		c.Server.Port = port
	}
	// brokers from the environment switch the producer on unless told otherwise
	if v, ok := lookup("SMARTCVD_KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Enabled = true
	}
	if v, ok := lookup("SMARTCVD_KAFKA_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SMARTCVD_KAFKA_ENABLED: %w", err)
		}
		c.Kafka.Enabled = enabled
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Logging.Collector.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("logging.collector requires kafka")
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for the redis backend")
	}
	return nil
}
