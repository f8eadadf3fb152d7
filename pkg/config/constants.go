package config

// EnvPrefix scopes envconfig processing; every variable is fully tagged so the
// prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SKYHAVEN_DB_DSN"
	EnvDBHost = "SKYHAVEN_DB_HOST"
	EnvDBUser = "SKYHAVEN_DB_USER"
	EnvDBName = "SKYHAVEN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
