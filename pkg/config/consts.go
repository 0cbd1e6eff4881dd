package config

// EnvPrefix namespaces every environment variable this service reads.
const EnvPrefix = "REVSHARE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	PaymentsModeSimulated = "simulated"
	PaymentsModeLive      = "live"
)

const (
	EnvDBDSN  = "REVSHARE_DB_DSN"
	EnvDBHost = "REVSHARE_DB_HOST"
	EnvDBUser = "REVSHARE_DB_USER"
	EnvDBName = "REVSHARE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
