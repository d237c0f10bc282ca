package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"coinhub/internal/auth"
)

// Config holds application level configuration.
// Precedence, lowest first: defaults, environment (.env included), YAML file, flags.
type Config struct {
	Environment    string        `koanf:"environment"`
	ServerPort     string        `koanf:"server_port"`
	DBDriver       string        `koanf:"db_driver"`
	DatabaseDSN    string        `koanf:"database_dsn"`
	RedisAddr      string        `koanf:"redis_addr"`
	RedisDB        int           `koanf:"redis_db"`
	RedisPass      string        `koanf:"redis_password"`
	JWTSecret      string        `koanf:"jwt_secret"`
	JWTTTL         time.Duration `koanf:"jwt_ttl"`
	FrontendURL    string        `koanf:"frontend_url"`
	BodyLimit      string        `koanf:"body_limit"`
	LogLevel       string        `koanf:"log_level"`
	LogFormat      string        `koanf:"log_format"`
	SwaggerHost    string        `koanf:"swagger_host"`
	ResetDB        bool          `koanf:"reset_db"`
	SeedCategories bool          `koanf:"seed_default_categories"`
}

const defaultMySQLDSN = "user:password@tcp(localhost:3306)/coinhub?charset=utf8mb4&parseTime=True&loc=UTC"

// Load builds Config from a .env file, the environment, an optional YAML
// file at path and the changed flags of fs. Either of path and fs may be empty.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := fromEnv()

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// BindFlags registers the command-line overrides understood by Load.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("server-port", "", "HTTP listen port")
	fs.String("db-driver", "", "database driver: mysql or postgres")
	fs.String("database-dsn", "", "database connection string")
	fs.String("redis-addr", "", "redis address, empty disables caching")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-format", "", "log format: json or text")
	fs.Bool("reset-db", false, "drop all tables before migrating")
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < auth.MinSecretLength {
		errs = append(errs, auth.ErrWeakSecret)
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("jwt_ttl must be positive, got %s", c.JWTTTL))
	}
	switch c.DBDriver {
	case "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported db_driver %q", c.DBDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database_dsn is required"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func fromEnv() *Config {
	return &Config{
		Environment:    getEnv("APP_ENV", "development"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		DBDriver:       getEnv("DB_DRIVER", "mysql"),
		DatabaseDSN:    getEnv("DATABASE_DSN", getEnv("MYSQL_DSN", defaultMySQLDSN)),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisPass:      os.Getenv("REDIS_PASSWORD"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTTTL:         getEnvDuration("JWT_TTL", auth.DefaultTokenTTL),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		BodyLimit:      getEnv("BODY_LIMIT", "10K"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		SwaggerHost:    os.Getenv("SWAGGER_HOST"),
		ResetDB:        getEnvBool("RESET_DB", false),
		SeedCategories: getEnvBool("SEED_DEFAULT_CATEGORIES", true),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
