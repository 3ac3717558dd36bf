package config

const EnvPrefix = "ORDERSPLIT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Env var names used outside envconfig struct tags.
const (
	EnvAppEnv            = "ORDERSPLIT_APP_ENV"
	EnvPort              = "ORDERSPLIT_APP_PORT"
	EnvDBDSN             = "ORDERSPLIT_DB_DSN"
	EnvDBHost            = "ORDERSPLIT_DB_HOST"
	EnvDBUser            = "ORDERSPLIT_DB_USER"
	EnvDBName            = "ORDERSPLIT_DB_NAME"
	EnvRedisURL          = "ORDERSPLIT_REDIS_URL"
	EnvGCPProjectID      = "ORDERSPLIT_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic = "ORDERSPLIT_PUBSUB_ORDERS_TOPIC"
	EnvPubSubOrdersSub   = "ORDERSPLIT_PUBSUB_ORDERS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
