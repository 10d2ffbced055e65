package export

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Setting struct {
	Logger *logrus.Logger
}

var globalSetting Setting

func Init(setting *Setting) {
	globalSetting = *setting
}

/*
Result 为一次导出的统计结果。
*/
type Result struct {
	EntityCount   int
	RelationCount int
}

func Export(ctx context.Context) (*Result, error) {
	return export(&globalSetting, ctx)
}
