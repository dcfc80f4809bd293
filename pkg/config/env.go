package config

// EnvPrefix is handed to envconfig; tags carry the full variable names.
const EnvPrefix = "POS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "POS_APP_ENV"
	EnvPort         = "POS_APP_PORT"
	EnvLogLevel     = "POS_LOG_LEVEL"
	EnvLogWarnStack = "POS_LOG_WARN_STACK"

	EnvDBDSN      = "POS_DB_DSN"
	EnvDBHost     = "POS_DB_HOST"
	EnvDBPort     = "POS_DB_PORT"
	EnvDBUser     = "POS_DB_USER"
	EnvDBPassword = "POS_DB_PASSWORD"
	EnvDBName     = "POS_DB_NAME"
	EnvDBSSLMode  = "POS_DB_SSLMODE"

	EnvRedisURL  = "POS_REDIS_URL"
	EnvRedisAddr = "POS_REDIS_ADDR"

	EnvJWTSecret  = "POS_JWT_SECRET"
	EnvJWTIssuer  = "POS_JWT_ISSUER"
	EnvJWTExpMins = "POS_JWT_EXPIRATION_MINUTES"

	EnvLowStockThreshold  = "POS_SALES_LOW_STOCK_THRESHOLD"
	EnvDuplicateWindow    = "POS_SALES_DUPLICATE_WINDOW"
	EnvSubmissionLockTTL  = "POS_SALES_SUBMISSION_LOCK_TTL"
	EnvAdminEmailDomain   = "POS_ADMIN_EMAIL_DOMAIN"
	EnvTempPasswordTTL    = "POS_TEMP_PASSWORD_TTL"
	EnvCORSOrigins        = "POS_CORS_ALLOWED_ORIGINS"
	EnvCronInterval       = "POS_CRON_INTERVAL"
	EnvSaleEventRetention = "POS_SALE_EVENT_RETENTION_DAYS"
	EnvAutoMigrate        = "POS_AUTO_MIGRATE"
)

// legacyDBEnvVars must all be set when POS_DB_DSN is absent.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
