package pipeline

import (
	"bacref-backend-controller/repository/lpsn"
	"bacref-backend-controller/repository/ncbi"
	"bacref-backend-controller/repository/straininfo"
)

type Config struct {
	RabbitMQConfig MQConnectionConfig
	NCBI           *ncbi.Adapter
	StrainInfo     *straininfo.Adapter
	LPSN           *lpsn.Resolver
}

var globalConfig Config
var globalMQManager *rabbitMQManager

const (
	QueuePreannotateInput  = "preannotate_input"
	QueuePreannotateOutput = "preannotate_output"
)

// 同时消费标注队列的 worker 数量
const annotateFanOut = 3

// 一个任务批次包含的文献数量
const batchSize = 250

func Init(config *Config) {
	globalConfig = *config

	var err error
	globalMQManager, err = newRabbitMQManager(config.RabbitMQConfig.ToURL(), []string{
		QueuePreannotateInput,
		QueuePreannotateOutput,
	})
	if err != nil {
		panic(err)
	}

	err = globalMQManager.ListenOn(QueuePreannotateInput, annotateFanOut, buildWork(config))
	if err != nil {
		panic(err)
	}

	err = globalMQManager.ListenOn(QueuePreannotateOutput, 1, buildReceive())
	if err != nil {
		panic(err)
	}
}

func Close() {
	if globalMQManager != nil {
		err := globalMQManager.Close()
		if err != nil {
			globalMQManager.logger.WithError(err).Errorf("globalMQManager close fail with err:\n%v", err)
		}
	}
}
