package neograph

import (
	"bacref-backend-controller/utils"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v4/neo4j"
)

type Neo4jConfig struct {
	Host string
	Port int
	User string
	Pwd  string
}

func (c *Neo4jConfig) target() string {
	return fmt.Sprintf("neo4j://%s:%d", c.Host, c.Port)
}

type Config struct {
	Neo4j Neo4jConfig
}

func GenerateTestConfig() *Config {
	return &Config{Neo4j: Neo4jConfig{
		Host: "localhost",
		Port: 7687,
		User: "neo4j",
		Pwd:  "neo4j_test",
	}}
}

var driver neo4j.Driver

func CreateDriver(config *Config) (neo4j.Driver, error) {
	d, err := neo4j.NewDriver(
		config.Neo4j.target(),
		neo4j.BasicAuth(config.Neo4j.User, config.Neo4j.Pwd, ""),
	)
	if err != nil {
		return nil, utils.WrapError(err, "neo4j connection fail")
	}

	return d, nil
}

func Init(config *Config) {
	d, err := CreateDriver(config)
	if err != nil {
		panic(err)
	}

	driver = d
}

func Close() {
	if driver != nil {
		_ = driver.Close()
	}
}

/*
Execute 在写事务中执行一条 cypher，返回全部结果记录。
*/
func Execute(cypher string, params map[string]interface{}) ([]*neo4j.Record, error) {
	session := driver.NewSession(neo4j.SessionConfig{})
	defer session.Close()

	records, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(cypher, params)
		if err != nil {
			return nil, err
		}

		return result.Collect()
	})
	if err != nil {
		return nil, utils.WrapErrorf(err, "execute cypher [%s] fail", cypher)
	}

	return records.([]*neo4j.Record), nil
}
