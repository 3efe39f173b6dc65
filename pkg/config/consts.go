package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "EYEWANTIT"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "EYEWANTIT_APP_ENV"
	EnvPort       = "EYEWANTIT_APP_PORT"
	EnvDBDSN      = "EYEWANTIT_DB_DSN"
	EnvDBHost     = "EYEWANTIT_DB_HOST"
	EnvDBUser     = "EYEWANTIT_DB_USER"
	EnvDBName     = "EYEWANTIT_DB_NAME"
	EnvRedisURL   = "EYEWANTIT_REDIS_URL"
	EnvJWTSecret  = "EYEWANTIT_JWT_SECRET"
	EnvJWTIssuer  = "EYEWANTIT_JWT_ISSUER"
	EnvJWTExpMins = "EYEWANTIT_JWT_EXPIRATION_MINUTES"

	EnvRefreshTokenTTLMinutes = "EYEWANTIT_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
