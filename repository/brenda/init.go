package brenda

import (
	"bacref-backend-controller/logging"
	"bacref-backend-controller/utils"
	"fmt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type MySQLConfig struct {
	User     string
	Password string
	Host     string
	Database string
}

func (c *MySQLConfig) dsn() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Database)
}

type Config struct {
	MySQL MySQLConfig
}

func GenerateTestConfig() *Config {
	return &Config{
		MySQL: MySQLConfig{
			User:     "brenda_test",
			Password: "brenda_test",
			Host:     "localhost",
			Database: "brenda_test",
		},
	}
}

var db *gorm.DB

/*
CreateDatabase 连接 BRENDA 源库。源库只读，不做任何迁移。
*/
func CreateDatabase(config *Config) (*gorm.DB, error) {
	database, err := gorm.Open(mysql.Open(config.MySQL.dsn()), &gorm.Config{
		Logger: logger.New(&sqlLogger{logger: logging.NewLogger()}, logger.Config{LogLevel: logger.Info}),
	})
	if err != nil {
		return nil, utils.WrapError(err, "db connection fail")
	}

	return database, nil
}

func Init(config *Config) {
	database, err := CreateDatabase(config)
	if err != nil {
		panic(err)
	}

	db = database
}

func DatabaseRaw() *gorm.DB {
	return db
}
