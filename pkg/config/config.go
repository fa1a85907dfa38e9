package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Catalog  CatalogConfig
	Snapshot SnapshotConfig
	Session  SessionConfig
	Features FeatureFlagsConfig

	AuthRateLimit AuthRateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VELORA_APP_ENV" required:"true"`
	Port         string `envconfig:"VELORA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VELORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VELORA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VELORA_DB_DSN"`
	Driver string `envconfig:"VELORA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"VELORA_DB_HOST"`
	Port     int    `envconfig:"VELORA_DB_PORT" default:"5432"`
	User     string `envconfig:"VELORA_DB_USER"`
	Password string `envconfig:"VELORA_DB_PASSWORD"`
	Name     string `envconfig:"VELORA_DB_NAME"`
	SSLMode  string `envconfig:"VELORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VELORA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VELORA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VELORA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VELORA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VELORA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VELORA_REDIS_ADDR"`
	Password     string        `envconfig:"VELORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"VELORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VELORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VELORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VELORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VELORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VELORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"VELORA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"VELORA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"VELORA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"VELORA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VELORA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VELORA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VELORA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VELORA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VELORA_ARGON_KEY_LEN" default:"32"`
}

type CatalogConfig struct {
	DefaultPageSize int `envconfig:"VELORA_CATALOG_DEFAULT_PAGE_SIZE" default:"50"`
	MaxPageSize     int `envconfig:"VELORA_CATALOG_MAX_PAGE_SIZE" default:"200"`
}

// SnapshotConfig controls where the sealed auth snapshot lives on disk.
type SnapshotConfig struct {
	Dir string `envconfig:"VELORA_SNAPSHOT_DIR" default:".velora"`
	Key string `envconfig:"VELORA_SNAPSHOT_KEY"`
}

// SessionConfig tunes the client-session auto refresh loop.
type SessionConfig struct {
	RefreshMargin   time.Duration `envconfig:"VELORA_SESSION_REFRESH_MARGIN" default:"1m"`
	RefreshAttempts int           `envconfig:"VELORA_SESSION_REFRESH_ATTEMPTS" default:"3"`
}

// AuthRateLimitConfig bounds login and signup attempts per IP and per email
// hash within a fixed window.
type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"VELORA_AUTH_RL_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit     int           `envconfig:"VELORA_AUTH_RL_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit  int           `envconfig:"VELORA_AUTH_RL_LOGIN_EMAIL_LIMIT" default:"5"`
	SignupWindow     time.Duration `envconfig:"VELORA_AUTH_RL_SIGNUP_WINDOW" default:"10m"`
	SignupIPLimit    int           `envconfig:"VELORA_AUTH_RL_SIGNUP_IP_LIMIT" default:"10"`
	SignupEmailLimit int           `envconfig:"VELORA_AUTH_RL_SIGNUP_EMAIL_LIMIT" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VELORA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
