package config

// EnvPrefix is passed to envconfig; individual fields carry fully prefixed
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, docs).
const (
	EnvAppEnv   = "FOODEXPRESS_APP_ENV"
	EnvPort     = "FOODEXPRESS_APP_PORT"
	EnvDBDSN    = "FOODEXPRESS_DB_DSN"
	EnvDBHost   = "FOODEXPRESS_DB_HOST"
	EnvDBUser   = "FOODEXPRESS_DB_USER"
	EnvDBName   = "FOODEXPRESS_DB_NAME"
	EnvRedisURL = "FOODEXPRESS_REDIS_URL"
	EnvGCPProjectID = "FOODEXPRESS_GCP_PROJECT_ID"
	EnvRoutingBaseURL = "FOODEXPRESS_ROUTING_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
