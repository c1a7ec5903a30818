package cnst

const (
	// ApiServerYaml is the default configuration file name of the api server
	ApiServerYaml = "apiserver.yaml"
)

// Token store types
const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

// Database types
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMySQL    = "mysql"
)
