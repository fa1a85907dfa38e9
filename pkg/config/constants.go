package config

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "velora"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv                 = "VELORA_APP_ENV"
	EnvPort                   = "VELORA_APP_PORT"
	EnvDBDSN                  = "VELORA_DB_DSN"
	EnvDBHost                 = "VELORA_DB_HOST"
	EnvDBUser                 = "VELORA_DB_USER"
	EnvDBName                 = "VELORA_DB_NAME"
	EnvRedisURL               = "VELORA_REDIS_URL"
	EnvJWTSecret              = "VELORA_JWT_SECRET"
	EnvJWTIssuer              = "VELORA_JWT_ISSUER"
	EnvJWTExpMins             = "VELORA_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "VELORA_REFRESH_TOKEN_TTL_MINUTES"
	EnvSnapshotDir            = "VELORA_SNAPSHOT_DIR"
	EnvSnapshotKey            = "VELORA_SNAPSHOT_KEY"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
