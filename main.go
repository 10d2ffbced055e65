package main

import (
	"bacref-backend-controller/config"
	"bacref-backend-controller/domain/annotate"
	"bacref-backend-controller/domain/export"
	"bacref-backend-controller/domain/pipeline"
	"bacref-backend-controller/domain/reclassify"
	"bacref-backend-controller/logging"
	"bacref-backend-controller/repository/brenda"
	"bacref-backend-controller/repository/docstore"
	"bacref-backend-controller/repository/filesave"
	"bacref-backend-controller/repository/lpsn"
	"bacref-backend-controller/repository/ncbi"
	"bacref-backend-controller/repository/neograph"
	"bacref-backend-controller/repository/straininfo"
	"bacref-backend-controller/server"
	"bacref-backend-controller/utils"
	"bacref-backend-controller/utils/email"
	"os"

	"github.com/sirupsen/logrus"
)

const DEBUG = true

func loggingConf() *logging.Config {
	return &logging.Config{
		FileLevel:      logrus.DebugLevel,
		ConsoleLevel:   logrus.InfoLevel,
		FileDir:        "logs",
		DisableConsole: false,
	}
}

func emailConf() *email.Config {
	if DEBUG {
		return email.GenerateTestConfig()
	}

	return &email.Config{SMTP: email.SMTPConfig{
		Identity: os.Getenv(config.EnvKeyEmailSMTPIdentity),
		Host:     os.Getenv(config.EnvKeyEmailSMTPHost),
		Port:     utils.MustAtoi(os.Getenv(config.EnvKeyEmailSMTPPort)),
		UserName: os.Getenv(config.EnvKeyEmailSMTPUserName),
		Password: os.Getenv(config.EnvKeyEmailSMTPPassword),
	}}
}

func brendaConf() *brenda.Config {
	if DEBUG {
		return brenda.GenerateTestConfig()
	}

	return &brenda.Config{MySQL: brenda.MySQLConfig{
		User:     os.Getenv(config.EnvKeyBrendaMySQLUser),
		Password: os.Getenv(config.EnvKeyBrendaMySQLPassword),
		Host:     os.Getenv(config.EnvKeyBrendaMySQLHost),
		Database: os.Getenv(config.EnvKeyBrendaMySQLDatabase),
	}}
}

func docstoreConf() *docstore.Config {
	if DEBUG {
		return docstore.GenerateTestConfig()
	}

	return &docstore.Config{
		MySQL: docstore.MySQLConfig{
			User:     os.Getenv(config.EnvKeyDocstoreMySQLUser),
			Password: os.Getenv(config.EnvKeyDocstoreMySQLPassword),
			Host:     os.Getenv(config.EnvKeyDocstoreMySQLHost),
			Database: os.Getenv(config.EnvKeyDocstoreMySQLDatabase),
		},
		CheckMigration: true,
	}
}

func lpsnConf() *lpsn.Config {
	return &lpsn.Config{
		CSVPath: os.Getenv(config.EnvKeyLPSNCSVPath),
	}
}

func filesaveConf() *filesave.Config {
	return filesave.GenerateTestConfig()
}

func neographConf() *neograph.Config {
	if DEBUG {
		return neograph.GenerateTestConfig()
	}

	return &neograph.Config{Neo4j: neograph.Neo4jConfig{
		Host: os.Getenv(config.EnvKeyNeo4jHost),
		Port: utils.MustAtoi(os.Getenv(config.EnvKeyNeo4jPort)),
		User: os.Getenv(config.EnvKeyNeo4jUser),
		Pwd:  os.Getenv(config.EnvKeyNeo4jPwd),
	}}
}

func pipelineConf(resolver *lpsn.Resolver, adapter *straininfo.Adapter, articles *ncbi.Adapter) *pipeline.Config {
	if DEBUG {
		return &pipeline.Config{
			RabbitMQConfig: pipeline.GenerateTestMQConnectionConfig(),
			NCBI:           articles,
			StrainInfo:     adapter,
			LPSN:           resolver,
		}
	}

	return &pipeline.Config{
		RabbitMQConfig: pipeline.MQConnectionConfig{
			User: os.Getenv(config.EnvKeyRabbitMQUser),
			Pwd:  os.Getenv(config.EnvKeyRabbitMQPwd),
			Host: os.Getenv(config.EnvKeyRabbitMQHost),
			Port: os.Getenv(config.EnvKeyRabbitMQPort),
		},
		NCBI:       articles,
		StrainInfo: adapter,
		LPSN:       resolver,
	}
}

func main() {
	logging.SetDefaultConfig(loggingConf())
	logger := logging.NewLogger()

	email.Init(emailConf())

	brenda.Init(brendaConf())
	docstore.Init(docstoreConf())

	resolver, err := lpsn.New(lpsnConf(), logging.NewLogger())
	if err != nil {
		logger.WithError(err).Errorf("load lpsn snapshot error=\n%v", err)
		return
	}

	adapter := straininfo.New(straininfo.DefaultConfig(), logging.NewLogger())
	articles := ncbi.New(ncbi.DefaultConfig(), logging.NewLogger())

	filesave.Init(filesaveConf())

	neograph.Init(neographConf())
	defer neograph.Close()

	reclassify.Init(&reclassify.Setting{
		Logger:           logging.NewLogger(),
		LPSN:             resolver,
		StrainInfo:       adapter,
		BacteriaListPath: os.Getenv(config.EnvKeyBacteriaListPath),
	})

	annotate.Init(&annotate.Setting{
		Logger: logging.NewLogger(),
	})

	export.Init(&export.Setting{
		Logger: logging.NewLogger(),
	})

	pipeline.Init(pipelineConf(resolver, adapter, articles))
	defer pipeline.Close()

	s := server.New(&server.Config{
		Host:      "",
		Port:      8003,
		DebugMode: DEBUG,
	})
	err = s.RunServer()
	if err != nil {
		logger.WithError(err).Errorf("run server error=\n%v", err)
	}
}
