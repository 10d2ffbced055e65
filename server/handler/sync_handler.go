package handler

import (
	"bacref-backend-controller/domain/pipeline"
	"bacref-backend-controller/logging"
	"bacref-backend-controller/server/common"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

/*
SyncDocuments 触发一次源库同步。同步要遍历整个源库并反复请求外部
接口，耗时很长，这里只负责启动并立即返回。
*/
func SyncDocuments(ctx *gin.Context) {
	go func() {
		if err := pipeline.Sync(context.Background()); err != nil {
			logging.Default().WithError(err).Errorf("sync documents fail: %s", err.Error())
			return
		}

		logging.Default().Info("sync documents finished")
	}()

	ctx.JSON(http.StatusOK, common.MakeSuccessResp(nil))
}
