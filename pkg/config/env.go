package config

// EnvPrefix is the envconfig prefix shared by every service binary.
const EnvPrefix = "LMS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "LMS_DB_DSN"
	EnvDBHost = "LMS_DB_HOST"
	EnvDBUser = "LMS_DB_USER"
	EnvDBName = "LMS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
