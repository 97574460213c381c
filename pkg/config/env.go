package config

// EnvPrefix is applied by envconfig to every variable below.
const EnvPrefix = "clinicore"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "CLINICORE_DB_DSN"
	EnvDBHost = "CLINICORE_DB_HOST"
	EnvDBUser = "CLINICORE_DB_USER"
	EnvDBName = "CLINICORE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
