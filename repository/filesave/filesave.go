package filesave

import (
	"bacref-backend-controller/logging"
	"bacref-backend-controller/utils"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

/*
文件落盘与静态托管。导出的 CSV 要通过 HTTP 提供给 neo4j 的 LOAD CSV，
因此这里附带起一个只读的静态文件服务。
*/

type Config struct {
	Host    string
	Port    string
	Dir     string
	TimeOut time.Duration
}

func (c *Config) FullHost() string {
	return c.Host + ":" + c.Port
}

func GenerateTestConfig() *Config {
	return &Config{
		Host:    "localhost",
		Port:    "8004",
		Dir:     filepath.Join(os.TempDir(), "bacref_filesave"),
		TimeOut: 10 * time.Second,
	}
}

var globalConfig Config

func GetConfig() *Config {
	return &globalConfig
}

type FileInfo struct {
	Name string
	URL  string
}

func Init(config *Config) {
	globalConfig = *config

	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		panic(utils.WrapError(err, "create filesave dir fail"))
	}

	go func() {
		eng := gin.Default()
		eng.Static("/raw", config.Dir)

		if err := eng.Run(config.FullHost()); err != nil {
			logging.Default().WithError(err).Error("file server stopped")
		}
	}()
}

/*
SaveFile 把数据落盘，文件名取内容摘要，重复保存同一份内容是幂等的。
返回的 URL 为相对路径，拼在 "http://<FullHost>/raw/" 之后即可访问。
*/
func SaveFile(data []byte) (*FileInfo, error) {
	name := fmt.Sprintf("%x.csv", md5.Sum(data))
	path := filepath.Join(globalConfig.Dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, utils.WrapErrorf(err, "write file [%s] fail", path)
	}

	return &FileInfo{Name: name, URL: name}, nil
}
