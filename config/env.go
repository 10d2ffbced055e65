package config

// 部署时通过环境变量注入的配置项的键名。仅 main 包读取这些环境变量。
const (
	EnvKeyBrendaMySQLUser     = "BACREF_BRENDA_MYSQL_USER"
	EnvKeyBrendaMySQLPassword = "BACREF_BRENDA_MYSQL_PWD"
	EnvKeyBrendaMySQLHost     = "BACREF_BRENDA_MYSQL_HOST"
	EnvKeyBrendaMySQLDatabase = "BACREF_BRENDA_MYSQL_DB"

	EnvKeyDocstoreMySQLUser     = "BACREF_DOCSTORE_MYSQL_USER"
	EnvKeyDocstoreMySQLPassword = "BACREF_DOCSTORE_MYSQL_PWD"
	EnvKeyDocstoreMySQLHost     = "BACREF_DOCSTORE_MYSQL_HOST"
	EnvKeyDocstoreMySQLDatabase = "BACREF_DOCSTORE_MYSQL_DB"

	EnvKeyRabbitMQUser = "BACREF_RABBITMQ_USER"
	EnvKeyRabbitMQPwd  = "BACREF_RABBITMQ_PWD"
	EnvKeyRabbitMQHost = "BACREF_RABBITMQ_HOST"
	EnvKeyRabbitMQPort = "BACREF_RABBITMQ_PORT"

	EnvKeyNeo4jHost = "BACREF_NEO4J_HOST"
	EnvKeyNeo4jPort = "BACREF_NEO4J_PORT"
	EnvKeyNeo4jUser = "BACREF_NEO4J_USER"
	EnvKeyNeo4jPwd  = "BACREF_NEO4J_PWD"

	EnvKeyEmailSMTPIdentity = "BACREF_SMTP_IDENTITY"
	EnvKeyEmailSMTPHost     = "BACREF_SMTP_HOST"
	EnvKeyEmailSMTPPort     = "BACREF_SMTP_PORT"
	EnvKeyEmailSMTPUserName = "BACREF_SMTP_USERNAME"
	EnvKeyEmailSMTPPassword = "BACREF_SMTP_PWD"

	// LPSN 本地快照（csv）与细菌参考名单（txt，每行一个名字）的路径
	EnvKeyLPSNCSVPath      = "BACREF_LPSN_CSV"
	EnvKeyBacteriaListPath = "BACREF_BACTERIA_LIST"
)
