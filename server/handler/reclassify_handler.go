package handler

import (
	"bacref-backend-controller/domain/reclassify"
	"bacref-backend-controller/logging"
	"bacref-backend-controller/server/common"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReclassifyOrganisms 触发一次未归类物种的重新归类，异步执行。
func ReclassifyOrganisms(ctx *gin.Context) {
	go func() {
		if err := reclassify.Run(context.Background()); err != nil {
			logging.Default().WithError(err).Errorf("reclassify organisms fail: %s", err.Error())
			return
		}

		logging.Default().Info("reclassify organisms finished")
	}()

	ctx.JSON(http.StatusOK, common.MakeSuccessResp(nil))
}
