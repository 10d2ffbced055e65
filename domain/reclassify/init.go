package reclassify

import (
	"bacref-backend-controller/repository/brenda"
	"bacref-backend-controller/repository/lpsn"
	"bacref-backend-controller/repository/straininfo"
	"bacref-backend-controller/utils"
	"context"
	"github.com/sirupsen/logrus"
	"os"
)

/*
Setting 重分类模块的依赖。

	BacteriaListPath 细菌参考名单文件，每行一个物种名；
	为空时名单取自源库 organism 表的全部物种名。
*/
type Setting struct {
	Logger           *logrus.Logger
	LPSN             *lpsn.Resolver
	StrainInfo       *straininfo.Adapter
	BacteriaListPath string
}

var globalSetting Setting

func Init(setting *Setting) {
	globalSetting = *setting

	if len(setting.BacteriaListPath) == 0 {
		names, err := brenda.OrganismNames()
		if err != nil {
			panic(utils.WrapError(err, "load bacteria list from source database fail"))
		}
		bacteriaNames = names
		return
	}

	file, err := os.Open(setting.BacteriaListPath)
	if err != nil {
		panic(utils.WrapError(err, "open bacteria list fail"))
	}
	defer file.Close()

	if err := loadBacteriaNames(file); err != nil {
		panic(utils.WrapError(err, "load bacteria list fail"))
	}
}

// Run 对文献库做一轮完整的重分类。
func Run(ctx context.Context) error {
	return run(&globalSetting, ctx)
}
